package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus instruments for the acquisition daemon.
// All methods are nil-safe so metrics can be disabled in tests.
type Collector struct {
	passes            prometheus.Counter
	samples           prometheus.Counter
	configApplies     prometheus.Counter
	configErrors      prometheus.Counter
	dataRateFallbacks prometheus.Counter
	passDuration      prometheus.Histogram
	sampleRate        prometheus.Gauge
}

// NewCollector registers the daemon's instruments with reg (the default
// registerer when nil).
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adcbridge_passes_total",
			Help: "Completed sampling passes.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adcbridge_samples_total",
			Help: "Individual channel conversions taken.",
		}),
		configApplies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adcbridge_config_applies_total",
			Help: "Successful configuration writes.",
		}),
		configErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adcbridge_config_errors_total",
			Help: "Rejected configuration writes.",
		}),
		dataRateFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adcbridge_data_rate_fallback_total",
			Help: "Unsupported data rate requests that fell back to the default.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "adcbridge_pass_duration_seconds",
			Help:    "Wall-clock duration of one sampling pass.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		sampleRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adcbridge_sample_rate_hz",
			Help: "Currently configured reporting rate.",
		}),
	}

	reg.MustRegister(
		c.passes, c.samples, c.configApplies, c.configErrors,
		c.dataRateFallbacks, c.passDuration, c.sampleRate,
	)
	return c
}

// PassCompleted records one finished sampling pass.
func (c *Collector) PassCompleted(d time.Duration, channels int) {
	if c == nil {
		return
	}
	c.passes.Inc()
	c.samples.Add(float64(channels))
	c.passDuration.Observe(d.Seconds())
}

// ConfigApplied records a successful configuration write.
func (c *Collector) ConfigApplied() {
	if c == nil {
		return
	}
	c.configApplies.Inc()
}

// ConfigRejected records a rejected configuration write.
func (c *Collector) ConfigRejected() {
	if c == nil {
		return
	}
	c.configErrors.Inc()
}

// DataRateFellBack records one silent fallback to the default data rate.
func (c *Collector) DataRateFellBack() {
	if c == nil {
		return
	}
	c.dataRateFallbacks.Inc()
}

// SetSampleRate mirrors the configured reporting rate.
func (c *Collector) SetSampleRate(hz int) {
	if c == nil {
		return
	}
	c.sampleRate.Set(float64(hz))
}
