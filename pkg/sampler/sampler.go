package sampler

import (
	"time"

	"github.com/hybridecologies/adcbridge/internal/logging"
	"github.com/hybridecologies/adcbridge/pkg/adc"
	"github.com/hybridecologies/adcbridge/pkg/chancfg"
)

// Reading is the result of one channel within a sampling pass.
type Reading struct {
	Raw    int16
	Volts  float64
	Active bool
}

// Snapshot is one timestamped set of per-channel readings produced by a
// single sampling pass. All entries share exactly one timestamp.
type Snapshot struct {
	TimestampMs int64
	Channels    [chancfg.MaxChannels]Reading
}

// Engine drives periodic acquisition against elapsed wall-clock time. It is
// either idle (waiting for the interval to elapse) or mid-pass; the
// single-goroutine acquisition loop guarantees passes never overlap.
type Engine struct {
	store *chancfg.Store
	dev   adc.Device
	log   logging.Logger

	// last retains the most recent pass so that slots deactivated by a
	// config change keep reporting their last known values.
	last Snapshot
}

// New creates a sampling engine over the given store and device.
func New(store *chancfg.Store, dev adc.Device, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Noop()
	}
	return &Engine{store: store, dev: dev, log: log}
}

// Due reports whether the configured interval has elapsed since the last
// completed pass.
func (e *Engine) Due(now time.Time) bool {
	s := e.store.Sampler()
	return now.UnixMilli()-s.LastSampleMs >= int64(s.IntervalMs)
}

// Last returns the most recent snapshot.
func (e *Engine) Last() Snapshot {
	return e.last
}

// Pass runs one full sampling pass: the timestamp is captured once, active
// channels are read sequentially in slot order, and inactive slots retain
// their last known values with Active cleared. A hardware read failure is not
// recoverable mid-pass; the value the device returned (error sentinel
// included) is published as-is and the next pass happens at the next
// interval.
func (e *Engine) Pass(now time.Time) Snapshot {
	snap := e.last
	snap.TimestampMs = now.UnixMilli()

	active := e.store.ActiveCount()
	for i := 0; i < chancfg.MaxChannels; i++ {
		if i >= active {
			snap.Channels[i].Active = false
			continue
		}

		ch := e.store.Channel(i)
		var (
			code int16
			err  error
		)
		switch m := ch.Mux.(type) {
		case chancfg.SingleEnded:
			code, err = e.dev.ReadSingleEnded(m.Input, ch.Gain)
		case chancfg.Differential:
			code, err = e.dev.ReadDifferential(m.Pair, ch.Gain)
		}
		if err != nil {
			e.log.Warn("channel read failed", logging.Int("slot", i), logging.Err(err))
		}

		snap.Channels[i] = Reading{
			Raw:    code,
			Volts:  adc.Volts(code, ch.Gain),
			Active: true,
		}
	}

	e.store.MarkSampled(snap.TimestampMs)
	e.last = snap
	return snap
}
