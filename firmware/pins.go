//go:build tinygo

package main

import "machine"

const (
	// Identification response for the host handshake
	IDENT_STRING = "ADC1 1.0"

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Analog input pins, inputs 0..3
	PIN_INPUT0 = machine.A0
	PIN_INPUT1 = machine.A1
	PIN_INPUT2 = machine.A2
	PIN_INPUT3 = machine.A3

	// Serial configuration
	// Command lines are short ("S 3 5\n" = 6 bytes); at 1 kHz polling with
	// four reads per pass the link carries well under 1 kB/s in each
	// direction, so 115200 8N1 leaves ample headroom.
	UART_BAUD_RATE = 115200
)
