package chancfg

import (
	"fmt"

	"github.com/hybridecologies/adcbridge/pkg/adc"
)

// MaxChannels is the number of converter channel slots.
const MaxChannels = 4

// Mux selects what the converter multiplexer measures for one channel. It is
// a sealed two-shape variant: the selector integer means an input index for
// single-ended channels and a pair index for differential ones, so the two
// meanings get distinct types instead of one overloaded field.
type Mux interface {
	muxSelection()
}

// SingleEnded measures one physical input (0-3) against ground.
type SingleEnded struct {
	Input int
}

// Differential measures the voltage difference across one input pair:
// pair 0 is inputs 0/1, pair 1 is inputs 2/3.
type Differential struct {
	Pair int
}

func (SingleEnded) muxSelection()  {}
func (Differential) muxSelection() {}

// Channel is the configuration of one converter channel slot.
type Channel struct {
	Mux  Mux
	Gain adc.Gain
}

// Validate checks a single channel configuration.
func (c Channel) Validate() error {
	switch m := c.Mux.(type) {
	case SingleEnded:
		if m.Input < 0 || m.Input >= MaxChannels {
			return &InvalidConfigError{Field: "channel", Reason: fmt.Sprintf("input %d out of range [0,%d]", m.Input, MaxChannels-1)}
		}
	case Differential:
		if m.Pair != 0 && m.Pair != 1 {
			return &InvalidConfigError{Field: "pair", Reason: fmt.Sprintf("pair %d out of range {0,1}", m.Pair)}
		}
	default:
		return &InvalidConfigError{Field: "mode", Reason: "missing mux selection"}
	}
	if !c.Gain.Valid() {
		return &InvalidConfigError{Field: "gain", Reason: fmt.Sprintf("unknown gain level %d", int(c.Gain))}
	}
	return nil
}

// Mode is the write-grammar channel mode.
type Mode int

const (
	ModeSingleEnded Mode = iota
	ModeDifferential
)

// String returns the write-grammar name of the mode.
func (m Mode) String() string {
	if m == ModeDifferential {
		return "differential"
	}
	return "single_ended"
}

// ParseMode parses a write-grammar mode string.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "single_ended":
		return ModeSingleEnded, nil
	case "differential":
		return ModeDifferential, nil
	}
	return 0, &InvalidConfigError{Field: "mode", Reason: fmt.Sprintf("unsupported mode %q", s)}
}
