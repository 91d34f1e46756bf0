package adc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the converter front-end.
	DefaultBaudRate = 115200

	// helloPrefix is the expected identification response.
	helloPrefix = "ADC"
)

// Serial talks to the converter front-end MCU over a serial link using a
// line-oriented command protocol:
//
//	ID              -> "ADC<n> <version>"
//	S <input> <g>   -> signed conversion code
//	D <pair> <g>    -> signed conversion code
//	R <sps>         -> "OK"
//
// Any command may answer "ERR <reason>".
type Serial struct {
	port io.ReadWriteCloser
	rd   *bufio.Reader
	mu   sync.Mutex
}

// Open opens the serial port, performs the identification handshake and
// returns a connected device. A missing or unresponsive front-end yields
// ErrNotDetected.
func Open(portName string, baudRate int) (*Serial, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	d := newSerial(port)
	if err := d.handshake(); err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

// newSerial wraps an already-open transport. Split out so tests can supply an
// in-memory pipe instead of a real port.
func newSerial(rw io.ReadWriteCloser) *Serial {
	return &Serial{
		port: rw,
		rd:   bufio.NewReader(rw),
	}
}

// Ports returns the names of available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

func (d *Serial) handshake() error {
	resp, err := d.roundTrip("ID")
	if err != nil {
		return ErrNotDetected
	}
	if !strings.HasPrefix(resp, helloPrefix) {
		return ErrNotDetected
	}
	return nil
}

// ReadSingleEnded converts one input against ground.
func (d *Serial) ReadSingleEnded(input int, g Gain) (int16, error) {
	resp, err := d.roundTrip(fmt.Sprintf("S %d %d", input, int(g)))
	if err != nil {
		return 0, err
	}
	return parseCode(resp)
}

// ReadDifferential converts one input pair.
func (d *Serial) ReadDifferential(pair int, g Gain) (int16, error) {
	resp, err := d.roundTrip(fmt.Sprintf("D %d %d", pair, int(g)))
	if err != nil {
		return 0, err
	}
	return parseCode(resp)
}

// SetDataRate pushes the hardware conversion rate to the front-end.
func (d *Serial) SetDataRate(r DataRate) error {
	resp, err := d.roundTrip(fmt.Sprintf("R %d", int(r)))
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("unexpected data rate response %q", resp)
	}
	return nil
}

// Close closes the underlying port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.port.Close()
}

// roundTrip writes one command line and reads one response line.
func (d *Serial) roundTrip(cmd string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.port.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	line, err := d.rd.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read response to %q: %w", cmd, err)
	}

	resp := strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(resp, "ERR "); ok {
		return "", fmt.Errorf("device error for %q: %s", cmd, rest)
	}
	return resp, nil
}

// parseCode parses a response line into a 12-bit signed conversion code.
func parseCode(resp string) (int16, error) {
	code, err := strconv.ParseInt(resp, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid conversion code %q: %w", resp, err)
	}
	if code < CodeMin || code > CodeMax {
		return 0, fmt.Errorf("conversion code out of range: %d", code)
	}
	return int16(code), nil
}
