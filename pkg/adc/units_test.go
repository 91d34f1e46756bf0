package adc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGainRoundTrip(t *testing.T) {
	for _, g := range Gains() {
		parsed, err := ParseGain(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
		assert.True(t, g.Valid())
	}
}

func TestParseGain_Unknown(t *testing.T) {
	_, err := ParseGain("THIRTYTWO")
	assert.Error(t, err)

	_, err = ParseGain("one")
	assert.Error(t, err, "gain names are case sensitive")
}

func TestVolts(t *testing.T) {
	tests := []struct {
		name string
		code int16
		gain Gain
		want float64
	}{
		{
			name: "zero code",
			code: 0,
			gain: GainOne,
			want: 0.0,
		},
		{
			name: "full scale positive at gain ONE",
			code: 2047,
			gain: GainOne,
			want: 4.094, // 2047/2048 * 4.096
		},
		{
			name: "full scale negative at gain ONE",
			code: -2048,
			gain: GainOne,
			want: -4.096,
		},
		{
			name: "half scale at gain TWO",
			code: 1024,
			gain: GainTwo,
			want: 1.024,
		},
		{
			name: "small signal at gain SIXTEEN",
			code: 256,
			gain: GainSixteen,
			want: 0.032,
		},
		{
			name: "wide range at gain TWOTHIRDS",
			code: 1000,
			gain: GainTwoThirds,
			want: 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Volts(tt.code, tt.gain), 0.001)
		})
	}
}

func TestNormalizeDataRate(t *testing.T) {
	tests := []struct {
		name     string
		sps      int
		wantRate DataRate
		wantOK   bool
	}{
		{name: "supported low", sps: 128, wantRate: 128, wantOK: true},
		{name: "supported default", sps: 1600, wantRate: 1600, wantOK: true},
		{name: "supported high", sps: 3300, wantRate: 3300, wantOK: true},
		{name: "unsupported falls back", sps: 1000, wantRate: DefaultDataRate, wantOK: false},
		{name: "zero falls back", sps: 0, wantRate: DefaultDataRate, wantOK: false},
		{name: "negative falls back", sps: -5, wantRate: DefaultDataRate, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := NormalizeDataRate(tt.sps)
			assert.Equal(t, tt.wantRate, rate)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFullScaleTable(t *testing.T) {
	assert.Equal(t, 6.144, GainTwoThirds.FullScale())
	assert.Equal(t, 4.096, GainOne.FullScale())
	assert.Equal(t, 2.048, GainTwo.FullScale())
	assert.Equal(t, 1.024, GainFour.FullScale())
	assert.Equal(t, 0.512, GainEight.FullScale())
	assert.Equal(t, 0.256, GainSixteen.FullScale())
}
