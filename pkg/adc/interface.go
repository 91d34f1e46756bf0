package adc

import "errors"

// ErrNotDetected is returned when the converter front-end does not answer the
// identification handshake. It is fatal at startup: nothing downstream can
// operate without the device.
var ErrNotDetected = errors.New("adc: converter not detected")

// Device defines the interface for converter front-ends (real or mocked).
// Reads are blocking one-shot conversions; gain travels with each read
// because the hardware applies it per conversion.
type Device interface {
	// ReadSingleEnded converts input (0-3) against ground.
	ReadSingleEnded(input int, g Gain) (int16, error)
	// ReadDifferential converts pair 0 (inputs 0/1) or pair 1 (inputs 2/3).
	ReadDifferential(pair int, g Gain) (int16, error)
	// SetDataRate pushes the hardware conversion rate to the device.
	SetDataRate(r DataRate) error
	Close() error
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
