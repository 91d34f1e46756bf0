//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	uart = machine.UART0

	// ADC inputs A0..A3
	adcInputs [4]machine.ADC

	// Full-scale millivolts per gain index, matching the host's gain table
	fullScaleMv = [6]int32{6144, 4096, 2048, 1024, 512, 256}

	// Supported conversion rates in samples per second
	supportedRates = [7]int32{128, 250, 490, 920, 1600, 2400, 3300}

	// Current conversion rate (settable via the R command)
	dataRate int32 = 1600

	// Serial buffer for reading command lines
	serialBuffer [32]byte
	serialPos    int
)

func main() {
	// Configure ADC pins and set up ADCs with highest resolution
	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	pins := [4]machine.Pin{PIN_INPUT0, PIN_INPUT1, PIN_INPUT2, PIN_INPUT3}
	for i, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		adcInputs[i] = machine.ADC{Pin: pin}
		adcInputs[i].Configure(adcConfig)
	}

	// Configure UART for the command protocol
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Main loop: one command line in, one response line out
	for {
		processSerial()
		time.Sleep(100 * time.Microsecond)
	}
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Check for newline (end of line)
		if data == '\n' || data == '\r' {
			if serialPos > 0 {
				handleCommand(string(serialBuffer[:serialPos]))
			}
			serialPos = 0
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		}
		// Overlong lines are truncated; the remainder is dropped at newline
	}
}

// handleCommand parses and answers one command line:
//
//	ID            -> identification string
//	S <input> <g> -> signed conversion code
//	D <pair> <g>  -> signed conversion code
//	R <sps>       -> "OK"
//
// Anything else answers "ERR <reason>".
func handleCommand(line string) {
	fields := splitFields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "ID":
		print(IDENT_STRING)
		print("\n")

	case "S":
		input, gain, ok := parseReadArgs(fields)
		if !ok || input < 0 || input > 3 {
			printErr("bad read command")
			return
		}
		settle()
		code := convert(input, gain)
		printCode(code)

	case "D":
		pair, gain, ok := parseReadArgs(fields)
		if !ok || pair < 0 || pair > 1 {
			printErr("bad read command")
			return
		}
		settle()
		// Pair 0 is inputs 0-1, pair 1 is inputs 2-3
		a := convert(pair*2, gain)
		b := convert(pair*2+1, gain)
		printCode(clampCode(int32(a) - int32(b)))

	case "R":
		if len(fields) != 2 {
			printErr("bad rate command")
			return
		}
		sps, ok := parseInt(fields[1])
		if !ok || !rateSupported(sps) {
			printErr("unsupported rate")
			return
		}
		dataRate = sps
		print("OK\n")

	default:
		printErr("unknown command")
	}
}

// convert reads one input and scales it to the 12-bit signed code space of
// the selected gain. The board has no analog PGA; the reading is taken at the
// fixed reference and rescaled digitally.
func convert(input int, gain int32) int16 {
	raw := adcInputs[input].Get()

	// machine.ADC.Get is left-justified 16-bit; drop to the native resolution
	mv := int32(raw>>4) * ADC_REFERENCE_MV / 4095
	code := mv * 2048 / fullScaleMv[gain]
	return clampCode(code)
}

// settle waits one conversion period at the configured rate.
func settle() {
	time.Sleep(time.Duration(1000000/dataRate) * time.Microsecond)
}

func clampCode(code int32) int16 {
	if code > 2047 {
		return 2047
	}
	if code < -2048 {
		return -2048
	}
	return int16(code)
}

func rateSupported(sps int32) bool {
	for _, r := range supportedRates {
		if r == sps {
			return true
		}
	}
	return false
}

func parseReadArgs(fields []string) (sel int, gain int32, ok bool) {
	if len(fields) != 3 {
		return 0, 0, false
	}
	s, ok1 := parseInt(fields[1])
	g, ok2 := parseInt(fields[2])
	if !ok1 || !ok2 || g < 0 || g >= int32(len(fullScaleMv)) {
		return 0, 0, false
	}
	return int(s), g, true
}

func parseInt(s string) (int32, bool) {
	if s == "" {
		return 0, false
	}
	var v int32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int32(c-'0')
	}
	return v, true
}

func splitFields(line string) []string {
	var fields []string
	start := -1
	for i := 0; i <= len(line); i++ {
		if i == len(line) || line[i] == ' ' || line[i] == '\t' {
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	return fields
}

func printCode(code int16) {
	print(code)
	print("\n")
}

func printErr(reason string) {
	print("ERR ")
	print(reason)
	print("\n")
}
