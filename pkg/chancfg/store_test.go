package chancfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybridecologies/adcbridge/pkg/adc"
)

func TestNew_Defaults(t *testing.T) {
	s := New()

	assert.Equal(t, MaxChannels, s.ActiveCount())
	for i := 0; i < MaxChannels; i++ {
		ch := s.Channel(i)
		assert.Equal(t, SingleEnded{Input: i}, ch.Mux)
		assert.Equal(t, adc.DefaultGain, ch.Gain)
	}

	sampler := s.Sampler()
	assert.Equal(t, DefaultSampleRateHz, sampler.RateHz)
	assert.Equal(t, 10, sampler.IntervalMs)
	assert.Equal(t, adc.DefaultDataRate, sampler.DataRate)
	assert.Equal(t, int64(0), sampler.LastSampleMs)
}

func TestReset(t *testing.T) {
	s := New()
	require.NoError(t, s.ApplySimple(ModeDifferential, nil))
	require.NoError(t, s.ApplySampleRate(3))
	s.ApplyDataRate(128)

	s.Reset()

	assert.Equal(t, MaxChannels, s.ActiveCount())
	assert.Equal(t, DefaultSampleRateHz, s.Sampler().RateHz)
	assert.Equal(t, adc.DefaultDataRate, s.Sampler().DataRate)
	assert.Equal(t, SingleEnded{Input: 2}, s.Channel(2).Mux)
}

func TestApplySimple_SingleEnded(t *testing.T) {
	s := New()

	require.NoError(t, s.ApplySimple(ModeSingleEnded, nil))

	assert.Equal(t, 4, s.ActiveCount())
	for i := 0; i < 4; i++ {
		assert.Equal(t, SingleEnded{Input: i}, s.Channel(i).Mux)
	}
}

func TestApplySimple_Differential(t *testing.T) {
	s := New()

	require.NoError(t, s.ApplySimple(ModeDifferential, nil))

	assert.Equal(t, 2, s.ActiveCount())
	assert.Equal(t, Differential{Pair: 0}, s.Channel(0).Mux)
	assert.Equal(t, Differential{Pair: 1}, s.Channel(1).Mux)
}

func TestApplySimple_GainOmittedPreservesExisting(t *testing.T) {
	s := New()
	gain := adc.GainEight
	require.NoError(t, s.ApplySimple(ModeSingleEnded, &gain))

	// Re-apply without gain: the per-slot gains must survive.
	require.NoError(t, s.ApplySimple(ModeSingleEnded, nil))

	for i := 0; i < 4; i++ {
		assert.Equal(t, adc.GainEight, s.Channel(i).Gain)
	}
}

func TestApplySimple_UniformGain(t *testing.T) {
	s := New()
	gain := adc.GainSixteen

	require.NoError(t, s.ApplySimple(ModeDifferential, &gain))

	assert.Equal(t, adc.GainSixteen, s.Channel(0).Gain)
	assert.Equal(t, adc.GainSixteen, s.Channel(1).Gain)
}

func TestApplyAdvanced_ReplacesList(t *testing.T) {
	s := New()

	descs := []Channel{
		{Mux: Differential{Pair: 1}, Gain: adc.GainTwo},
		{Mux: SingleEnded{Input: 3}, Gain: adc.GainFour},
	}
	require.NoError(t, s.ApplyAdvanced(descs))

	assert.Equal(t, 2, s.ActiveCount())
	assert.Equal(t, Differential{Pair: 1}, s.Channel(0).Mux)
	assert.Equal(t, adc.GainTwo, s.Channel(0).Gain)
	assert.Equal(t, SingleEnded{Input: 3}, s.Channel(1).Mux)
	assert.Equal(t, adc.GainFour, s.Channel(1).Gain)
}

func TestApplyAdvanced_TruncatesBeyondFour(t *testing.T) {
	s := New()

	descs := []Channel{
		{Mux: SingleEnded{Input: 0}, Gain: adc.GainOne},
		{Mux: SingleEnded{Input: 1}, Gain: adc.GainOne},
		{Mux: SingleEnded{Input: 2}, Gain: adc.GainOne},
		{Mux: SingleEnded{Input: 3}, Gain: adc.GainOne},
		{Mux: SingleEnded{Input: 0}, Gain: adc.GainSixteen}, // silently dropped
	}
	require.NoError(t, s.ApplyAdvanced(descs))

	// min(5, 4) = 4, not an error.
	assert.Equal(t, 4, s.ActiveCount())
	assert.Equal(t, adc.GainOne, s.Channel(3).Gain)
}

func TestApplyAdvanced_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		descs []Channel
	}{
		{
			name:  "empty list",
			descs: nil,
		},
		{
			name:  "input out of range",
			descs: []Channel{{Mux: SingleEnded{Input: 4}, Gain: adc.GainOne}},
		},
		{
			name:  "pair out of range",
			descs: []Channel{{Mux: Differential{Pair: 2}, Gain: adc.GainOne}},
		},
		{
			name:  "missing mux",
			descs: []Channel{{Gain: adc.GainOne}},
		},
		{
			name:  "bad gain",
			descs: []Channel{{Mux: SingleEnded{Input: 0}, Gain: adc.Gain(99)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			before := s.View()

			err := s.ApplyAdvanced(tt.descs)

			var invalid *InvalidConfigError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, before, s.View(), "store must be unchanged after rejection")
		})
	}
}

func TestApplySampleRate(t *testing.T) {
	tests := []struct {
		name         string
		hz           int
		wantInterval int
		wantErr      bool
	}{
		{name: "100 Hz", hz: 100, wantInterval: 10},
		{name: "3 Hz floors", hz: 3, wantInterval: 333},
		{name: "1 Hz", hz: 1, wantInterval: 1000},
		{name: "1000 Hz", hz: 1000, wantInterval: 1},
		{name: "zero rejected", hz: 0, wantErr: true},
		{name: "negative rejected", hz: -10, wantErr: true},
		{name: "above ceiling rejected", hz: 1001, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			before := s.Sampler()

			err := s.ApplySampleRate(tt.hz)

			if tt.wantErr {
				var invalid *InvalidConfigError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, before, s.Sampler(), "sampler must be unchanged after rejection")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hz, s.Sampler().RateHz)
			assert.Equal(t, tt.wantInterval, s.Sampler().IntervalMs)
		})
	}
}

func TestApplyDataRate(t *testing.T) {
	s := New()

	fellBack := s.ApplyDataRate(250)
	assert.False(t, fellBack)
	assert.Equal(t, adc.DataRate(250), s.Sampler().DataRate)

	// Unsupported rates fall back to the default instead of erroring.
	fellBack = s.ApplyDataRate(12345)
	assert.True(t, fellBack)
	assert.Equal(t, adc.DefaultDataRate, s.Sampler().DataRate)
}

func TestInactiveSlotsRetainConfig(t *testing.T) {
	s := New()
	gain := adc.GainFour
	require.NoError(t, s.ApplySimple(ModeSingleEnded, &gain))

	// Shrinking to two differential channels leaves slots 2 and 3 as they
	// were; the engine ignores them but they are not cleared.
	require.NoError(t, s.ApplySimple(ModeDifferential, nil))

	assert.Equal(t, 2, s.ActiveCount())
	assert.Equal(t, SingleEnded{Input: 2}, s.Channel(2).Mux)
	assert.Equal(t, adc.GainFour, s.Channel(2).Gain)
	assert.Equal(t, SingleEnded{Input: 3}, s.Channel(3).Mux)
}

func TestView(t *testing.T) {
	s := New()
	require.NoError(t, s.ApplySimple(ModeDifferential, nil))

	view := s.View()

	assert.Equal(t, 2, view.ActiveChannels)
	assert.Len(t, view.Channels, 2)
	assert.Equal(t, DefaultSampleRateHz, view.SampleRateHz)
	assert.Equal(t, adc.DefaultDataRate, view.DataRate)

	// Mutating the view copy must not touch the store.
	view.Channels[0].Gain = adc.GainSixteen
	assert.Equal(t, adc.DefaultGain, s.Channel(0).Gain)
}
