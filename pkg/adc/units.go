package adc

import "fmt"

// Gain selects the converter's programmable gain amplifier setting and
// therefore its full-scale voltage range.
type Gain int

const (
	GainTwoThirds Gain = iota // +/- 6.144V
	GainOne                   // +/- 4.096V
	GainTwo                   // +/- 2.048V
	GainFour                  // +/- 1.024V
	GainEight                 // +/- 0.512V
	GainSixteen               // +/- 0.256V
)

// DefaultGain is the mid-range setting used when a configuration omits gain.
const DefaultGain = GainOne

// fullScale maps each gain level to its full-scale range in volts.
var fullScale = map[Gain]float64{
	GainTwoThirds: 6.144,
	GainOne:       4.096,
	GainTwo:       2.048,
	GainFour:      1.024,
	GainEight:     0.512,
	GainSixteen:   0.256,
}

var gainNames = map[Gain]string{
	GainTwoThirds: "TWOTHIRDS",
	GainOne:       "ONE",
	GainTwo:       "TWO",
	GainFour:      "FOUR",
	GainEight:     "EIGHT",
	GainSixteen:   "SIXTEEN",
}

// String returns the wire name of the gain level (e.g. "TWOTHIRDS").
func (g Gain) String() string {
	if name, ok := gainNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Gain(%d)", int(g))
}

// Valid reports whether g is one of the six supported levels.
func (g Gain) Valid() bool {
	_, ok := gainNames[g]
	return ok
}

// FullScale returns the full-scale voltage range for the gain level.
func (g Gain) FullScale() float64 {
	return fullScale[g]
}

// ParseGain parses a wire gain name into a Gain level.
func ParseGain(s string) (Gain, error) {
	for g, name := range gainNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gain %q", s)
}

// Gains returns all supported gain levels in ascending order.
func Gains() []Gain {
	return []Gain{GainTwoThirds, GainOne, GainTwo, GainFour, GainEight, GainSixteen}
}

const (
	// CodeMin and CodeMax bound the 12-bit signed conversion result.
	CodeMin = -2048
	CodeMax = 2047
)

// Volts converts a 12-bit signed conversion code to volts using the
// full-scale range of the given gain level.
func Volts(code int16, g Gain) float64 {
	return float64(code) * g.FullScale() / 2048.0
}

// DataRate is the hardware conversion rate in samples per second. It is
// distinct from the firmware's reporting rate.
type DataRate int

// DefaultDataRate is used at startup and as the fallback for unsupported
// requested rates.
const DefaultDataRate DataRate = 1600

// supportedDataRates is the fixed set of device conversion rates.
var supportedDataRates = []DataRate{128, 250, 490, 920, 1600, 2400, 3300}

// DataRates returns the supported conversion rates in ascending order.
func DataRates() []DataRate {
	out := make([]DataRate, len(supportedDataRates))
	copy(out, supportedDataRates)
	return out
}

// NormalizeDataRate maps a requested rate onto the supported set. Unsupported
// values fall back to DefaultDataRate; ok reports whether the requested rate
// was supported as-is.
func NormalizeDataRate(sps int) (rate DataRate, ok bool) {
	for _, r := range supportedDataRates {
		if int(r) == sps {
			return r, true
		}
	}
	return DefaultDataRate, false
}
