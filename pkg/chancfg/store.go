package chancfg

import (
	"github.com/hybridecologies/adcbridge/pkg/adc"
)

const (
	// DefaultSampleRateHz is the reporting rate restored by Reset.
	DefaultSampleRateHz = 100
	// MaxSampleRateHz keeps the sampling interval from truncating to zero.
	MaxSampleRateHz = 1000
)

// Sampler holds the global sampling cadence and hardware conversion rate.
// IntervalMs is always 1000/RateHz, floored.
type Sampler struct {
	RateHz       int
	IntervalMs   int
	DataRate     adc.DataRate
	LastSampleMs int64
}

// Store is the single source of truth for channel configuration. Slots at or
// beyond the active count keep their previous contents rather than being
// cleared; the sampling engine simply ignores them.
//
// The store is not safe for concurrent use. All access happens from the
// acquisition loop goroutine.
type Store struct {
	active   int
	channels [MaxChannels]Channel
	sampler  Sampler
}

// New creates a store holding the documented defaults.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset restores the startup defaults: four single-ended channels on inputs
// 0-3, mid gain, default conversion rate, 100 Hz reporting.
func (s *Store) Reset() {
	for i := range s.channels {
		s.channels[i] = Channel{Mux: SingleEnded{Input: i}, Gain: adc.DefaultGain}
	}
	s.active = MaxChannels
	s.sampler = Sampler{
		RateHz:     DefaultSampleRateHz,
		IntervalMs: 1000 / DefaultSampleRateHz,
		DataRate:   adc.DefaultDataRate,
	}
}

// ActiveCount returns the number of channels the sampling engine reads.
func (s *Store) ActiveCount() int {
	return s.active
}

// Channel returns the configuration of slot i.
func (s *Store) Channel(i int) Channel {
	return s.channels[i]
}

// Sampler returns the current sampling parameters.
func (s *Store) Sampler() Sampler {
	return s.sampler
}

// MarkSampled records the timestamp of the latest completed sampling pass.
func (s *Store) MarkSampled(ms int64) {
	s.sampler.LastSampleMs = ms
}

// View is a read-only snapshot of the store for encoding and inspection.
// Channels holds the active slots only, in order.
type View struct {
	SampleRateHz   int
	IntervalMs     int
	DataRate       adc.DataRate
	ActiveChannels int
	Channels       []Channel
}

// View produces a read snapshot. It never fails.
func (s *Store) View() View {
	chans := make([]Channel, s.active)
	copy(chans, s.channels[:s.active])
	return View{
		SampleRateHz:   s.sampler.RateHz,
		IntervalMs:     s.sampler.IntervalMs,
		DataRate:       s.sampler.DataRate,
		ActiveChannels: s.active,
		Channels:       chans,
	}
}

// ApplySimple sets a uniform configuration: single-ended activates all four
// inputs in order, differential activates the two pairs. A nil gain leaves
// each slot's existing gain untouched.
func (s *Store) ApplySimple(mode Mode, gain *adc.Gain) error {
	if gain != nil && !gain.Valid() {
		return invalidf("gain", "unknown gain level %d", int(*gain))
	}

	switch mode {
	case ModeSingleEnded:
		for i := 0; i < MaxChannels; i++ {
			s.channels[i].Mux = SingleEnded{Input: i}
		}
		s.active = MaxChannels
	case ModeDifferential:
		s.channels[0].Mux = Differential{Pair: 0}
		s.channels[1].Mux = Differential{Pair: 1}
		s.active = 2
	default:
		return invalidf("mode", "unsupported mode %d", int(mode))
	}

	if gain != nil {
		for i := 0; i < s.active; i++ {
			s.channels[i].Gain = *gain
		}
	}
	return nil
}

// ApplyAdvanced replaces the channel list with the provided entries, in
// order. Entries beyond the fourth are silently discarded.
func (s *Store) ApplyAdvanced(descs []Channel) error {
	if len(descs) == 0 {
		return invalidf("channels", "at least one channel required")
	}

	n := len(descs)
	if n > MaxChannels {
		n = MaxChannels
	}
	for i := 0; i < n; i++ {
		if err := descs[i].Validate(); err != nil {
			return err
		}
	}

	copy(s.channels[:n], descs[:n])
	s.active = n
	return nil
}

// ApplyGain sets one gain level uniformly across the active channels.
func (s *Store) ApplyGain(gain adc.Gain) error {
	if !gain.Valid() {
		return invalidf("gain", "unknown gain level %d", int(gain))
	}
	for i := 0; i < s.active; i++ {
		s.channels[i].Gain = gain
	}
	return nil
}

// ApplySampleRate sets the reporting rate and recomputes the interval.
func (s *Store) ApplySampleRate(hz int) error {
	if hz <= 0 {
		return invalidf("sample_rate", "must be positive, got %d", hz)
	}
	if hz > MaxSampleRateHz {
		return invalidf("sample_rate", "must be at most %d, got %d", MaxSampleRateHz, hz)
	}
	s.sampler.RateHz = hz
	s.sampler.IntervalMs = 1000 / hz
	return nil
}

// ApplyDataRate sets the hardware conversion rate. Unsupported values fall
// back to the default rate instead of erroring; fellBack reports when that
// happened so callers can log and count it.
func (s *Store) ApplyDataRate(sps int) (fellBack bool) {
	rate, ok := adc.NormalizeDataRate(sps)
	s.sampler.DataRate = rate
	return !ok
}
