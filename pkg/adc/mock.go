package adc

import (
	"fmt"
	"math"
	"sync"
)

// Mock simulates a converter front-end for testing and development.
// Conversion codes are fully deterministic: tests pin them with SetCode, and
// the optional waveform mode generates repeatable sines for the -mock daemon
// flag.
type Mock struct {
	mu       sync.Mutex
	codes    [4]int16
	rate     DataRate
	readErr  error
	waveform bool
	step     int
}

// NewMock creates a mocked device with all inputs at code 0 and the default
// data rate.
func NewMock() *Mock {
	return &Mock{rate: DefaultDataRate}
}

// SetCode pins the conversion code returned for one input.
func (m *Mock) SetCode(input int, code int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if input >= 0 && input < len(m.codes) {
		m.codes[input] = code
	}
}

// SetReadError makes every subsequent read fail with err. Pass nil to clear.
func (m *Mock) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// EnableWaveform switches the mock to generated sine codes, one quarter
// period apart per input.
func (m *Mock) EnableWaveform() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waveform = true
}

// ReadSingleEnded returns the code for one input.
func (m *Mock) ReadSingleEnded(input int, g Gain) (int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return 0, m.readErr
	}
	if input < 0 || input >= len(m.codes) {
		return 0, fmt.Errorf("input out of range: %d", input)
	}
	if m.waveform {
		m.advance()
	}
	return m.codes[input], nil
}

// ReadDifferential returns the clamped difference of the pair's inputs.
func (m *Mock) ReadDifferential(pair int, g Gain) (int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return 0, m.readErr
	}
	if pair != 0 && pair != 1 {
		return 0, fmt.Errorf("pair out of range: %d", pair)
	}
	if m.waveform {
		m.advance()
	}
	diff := int(m.codes[2*pair]) - int(m.codes[2*pair+1])
	if diff > CodeMax {
		diff = CodeMax
	} else if diff < CodeMin {
		diff = CodeMin
	}
	return int16(diff), nil
}

// SetDataRate records the applied rate.
func (m *Mock) SetDataRate(r DataRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = r
	return nil
}

// DataRate returns the last rate pushed via SetDataRate.
func (m *Mock) DataRate() DataRate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// Close is a no-op for the mock.
func (m *Mock) Close() error {
	return nil
}

// advance regenerates the input codes from the step counter.
func (m *Mock) advance() {
	m.step++
	for i := range m.codes {
		phase := 2*math.Pi*float64(m.step)/100.0 + float64(i)*math.Pi/2
		m.codes[i] = int16(1023 * math.Sin(phase))
	}
}
