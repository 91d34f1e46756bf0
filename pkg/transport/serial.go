package transport

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"github.com/hybridecologies/adcbridge/internal/logging"
)

// LineEmitter writes one self-terminated telemetry line per sampling pass.
// There is no inbound serial command surface; the stream is output-only and
// gated by the enabled flag.
type LineEmitter struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	log     logging.Logger
}

// NewLineEmitter wraps an arbitrary writer (stdout, a test buffer).
func NewLineEmitter(w io.Writer, enabled bool, log logging.Logger) *LineEmitter {
	if log == nil {
		log = logging.Noop()
	}
	return &LineEmitter{w: w, enabled: enabled, log: log}
}

// OpenLineEmitter opens a serial port for telemetry output.
func OpenLineEmitter(portName string, baudRate int, enabled bool, log logging.Logger) (*LineEmitter, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial output port %s: %w", portName, err)
	}
	return NewLineEmitter(port, enabled, log), nil
}

// SetEnabled toggles output without closing the port.
func (e *LineEmitter) SetEnabled(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = on
}

// Emit writes one telemetry line. Write failures are logged and dropped; the
// stream has no error surface of its own.
func (e *LineEmitter) Emit(line []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled || e.w == nil {
		return
	}
	if _, err := e.w.Write(append(line, '\n')); err != nil {
		e.log.Warn("serial telemetry write failed", logging.Err(err))
	}
}

// Close closes the underlying writer when it is closable.
func (e *LineEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
