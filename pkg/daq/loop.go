// Package daq runs the cooperative acquisition loop. One goroutine owns the
// configuration store, the sampling engine and the device; transports submit
// work into it, so a config apply fully precedes or fully follows a sampling
// pass and never interleaves with one.
package daq

import (
	"context"
	"errors"
	"time"

	"github.com/hybridecologies/adcbridge/internal/logging"
	"github.com/hybridecologies/adcbridge/internal/observability"
	"github.com/hybridecologies/adcbridge/pkg/adc"
	"github.com/hybridecologies/adcbridge/pkg/chancfg"
	"github.com/hybridecologies/adcbridge/pkg/sampler"
	"github.com/hybridecologies/adcbridge/pkg/telemetry"
)

// tickInterval is how often the loop re-checks whether the sampling interval
// has elapsed. It bounds the achievable reporting rate at 1 kHz, matching the
// store's sample rate ceiling.
const tickInterval = time.Millisecond

// Emitter receives one encoded telemetry line per completed sampling pass.
type Emitter interface {
	Emit(line []byte)
}

// Options configures the optional collaborators of a Loop.
type Options struct {
	Emitter Emitter
	Log     logging.Logger
	Metrics *observability.Collector
}

// Loop is the acquisition control loop.
type Loop struct {
	store   *chancfg.Store
	dev     adc.Device
	engine  *sampler.Engine
	emitter Emitter
	log     logging.Logger
	metrics *observability.Collector

	reqs chan func()

	// lastTelemetry caches the bytes of the most recent pass so the HTTP
	// data read and the serial line serve identical output.
	lastTelemetry []byte
}

// New creates a loop over the given store and device.
func New(store *chancfg.Store, dev adc.Device, opts Options) *Loop {
	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}
	return &Loop{
		store:   store,
		dev:     dev,
		engine:  sampler.New(store, dev, log),
		emitter: opts.Emitter,
		log:     log,
		metrics: opts.Metrics,
		reqs:    make(chan func()),
	}
}

// Run services transport requests and the sampling clock until ctx is
// cancelled. Neither a pass nor an apply is ever interrupted once started.
func (l *Loop) Run(ctx context.Context) {
	l.metrics.SetSampleRate(l.store.Sampler().RateHz)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.reqs:
			fn()
		case now := <-ticker.C:
			if !l.engine.Due(now) {
				continue
			}
			l.pass(now)
		}
	}
}

// pass runs one sampling pass and publishes its telemetry.
func (l *Loop) pass(now time.Time) {
	start := time.Now()
	snap := l.engine.Pass(now)
	view := l.store.View()

	line, err := telemetry.EncodeSnapshot(snap, view)
	if err != nil {
		l.log.Error("failed to encode snapshot", logging.Err(err))
		return
	}

	l.lastTelemetry = line
	l.metrics.PassCompleted(time.Since(start), view.ActiveChannels)

	if l.emitter != nil {
		l.emitter.Emit(line)
	}
}

// do executes fn inside the loop goroutine and waits for it to finish.
// Run must be active.
func (l *Loop) do(fn func()) {
	done := make(chan struct{})
	l.reqs <- func() {
		fn()
		close(done)
	}
	<-done
}

// ConfigView returns a read snapshot of the configuration store.
func (l *Loop) ConfigView() chancfg.View {
	var view chancfg.View
	l.do(func() {
		view = l.store.View()
	})
	return view
}

// ApplyConfig parses and applies one config write body. The request either
// takes effect completely or leaves the store untouched.
func (l *Loop) ApplyConfig(body []byte) error {
	req, err := chancfg.ParseRequest(body)
	if err != nil {
		l.metrics.ConfigRejected()
		return err
	}

	var (
		applyErr error
		active   int
		rateHz   int
	)
	l.do(func() {
		outcome, err := l.store.Apply(req, l.dev)
		if err != nil {
			applyErr = err
			return
		}
		if outcome.DataRateFellBack {
			l.metrics.DataRateFellBack()
			l.log.Warn("unsupported data rate, using default",
				logging.Int("requested", *req.DataRate),
				logging.Int("applied", int(l.store.Sampler().DataRate)))
		}
		active = l.store.ActiveCount()
		rateHz = l.store.Sampler().RateHz
		l.metrics.SetSampleRate(rateHz)
	})

	if applyErr != nil {
		l.metrics.ConfigRejected()
		var invalid *chancfg.InvalidConfigError
		if errors.As(applyErr, &invalid) || errors.Is(applyErr, chancfg.ErrInvalidJSON) {
			l.log.Info("config write rejected", logging.Err(applyErr))
		} else {
			l.log.Error("config apply failed", logging.Err(applyErr))
		}
		return applyErr
	}

	l.metrics.ConfigApplied()
	l.log.Info("config applied",
		logging.Int("active_channels", active),
		logging.Int("sample_rate_hz", rateHz))
	return nil
}

// Telemetry returns the encoded telemetry of the latest sampling pass. Before
// the first pass it renders the empty snapshot instead.
func (l *Loop) Telemetry() []byte {
	var out []byte
	l.do(func() {
		if l.lastTelemetry == nil {
			line, err := telemetry.EncodeSnapshot(l.engine.Last(), l.store.View())
			if err != nil {
				l.log.Error("failed to encode snapshot", logging.Err(err))
				return
			}
			l.lastTelemetry = line
		}
		out = l.lastTelemetry
	})
	return out
}
