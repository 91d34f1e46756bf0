package chancfg

import (
	"encoding/json"
	"fmt"

	"github.com/hybridecologies/adcbridge/pkg/adc"
)

// Request is the transport-agnostic config write grammar. Every field is
// optional; absent fields leave the corresponding store state untouched.
// "mode"+"gain" form a simple write, "channels" an advanced one.
type Request struct {
	SampleRate *int          `json:"sample_rate,omitempty"`
	DataRate   *int          `json:"data_rate,omitempty"`
	Mode       *string       `json:"mode,omitempty"`
	Gain       *string       `json:"gain,omitempty"`
	Channels   []ChannelDesc `json:"channels,omitempty"`
}

// ChannelDesc is one advanced-mode channel descriptor.
type ChannelDesc struct {
	Mode    string  `json:"mode"`
	Channel *int    `json:"channel,omitempty"`
	Pair    *int    `json:"pair,omitempty"`
	Gain    *string `json:"gain,omitempty"`
}

// ParseRequest decodes a config write body. A body that cannot be parsed at
// all yields ErrInvalidJSON; semantic validation happens in Apply.
func ParseRequest(body []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return req, nil
}

// ApplyOutcome reports side notes of a successful apply.
type ApplyOutcome struct {
	// DataRateFellBack is set when the requested conversion rate was
	// unsupported and the default was used instead.
	DataRateFellBack bool
}

// Apply validates and applies a request, all-or-nothing relative to the
// fields present: if any present field is invalid, the store is left exactly
// as before. On success the new conversion rate is pushed to the hardware
// before the method returns, so no sampling pass runs under a half-applied
// configuration.
func (s *Store) Apply(req Request, dev adc.Device) (ApplyOutcome, error) {
	var out ApplyOutcome

	if req.Mode != nil && len(req.Channels) > 0 {
		return out, invalidf("mode", "mode and channels are mutually exclusive")
	}

	// Stage everything against a scratch copy; commit only if all of it
	// validated.
	scratch := *s

	if req.DataRate != nil {
		out.DataRateFellBack = scratch.ApplyDataRate(*req.DataRate)
	}
	if req.SampleRate != nil {
		if err := scratch.ApplySampleRate(*req.SampleRate); err != nil {
			return ApplyOutcome{}, err
		}
	}

	var gain *adc.Gain
	if req.Gain != nil {
		g, err := adc.ParseGain(*req.Gain)
		if err != nil {
			return ApplyOutcome{}, invalidf("gain", "%v", err)
		}
		gain = &g
	}

	switch {
	case req.Mode != nil:
		mode, err := ParseMode(*req.Mode)
		if err != nil {
			return ApplyOutcome{}, err
		}
		if err := scratch.ApplySimple(mode, gain); err != nil {
			return ApplyOutcome{}, err
		}
	case len(req.Channels) > 0:
		descs, err := channelDescs(req.Channels)
		if err != nil {
			return ApplyOutcome{}, err
		}
		if err := scratch.ApplyAdvanced(descs); err != nil {
			return ApplyOutcome{}, err
		}
	case gain != nil:
		if err := scratch.ApplyGain(*gain); err != nil {
			return ApplyOutcome{}, err
		}
	}

	*s = scratch

	if dev != nil {
		if err := dev.SetDataRate(s.sampler.DataRate); err != nil {
			return out, fmt.Errorf("failed to push data rate to device: %w", err)
		}
	}
	return out, nil
}

// channelDescs converts wire descriptors to channel configurations. Entries
// beyond MaxChannels are dropped before validation; the truncation is silent
// and intentional.
func channelDescs(descs []ChannelDesc) ([]Channel, error) {
	if len(descs) > MaxChannels {
		descs = descs[:MaxChannels]
	}

	out := make([]Channel, 0, len(descs))
	for i, d := range descs {
		mode, err := ParseMode(d.Mode)
		if err != nil {
			return nil, err
		}

		var mux Mux
		switch mode {
		case ModeSingleEnded:
			if d.Channel == nil {
				return nil, invalidf("channel", "descriptor %d: single_ended requires a channel", i)
			}
			mux = SingleEnded{Input: *d.Channel}
		case ModeDifferential:
			if d.Pair == nil {
				return nil, invalidf("pair", "descriptor %d: differential requires a pair", i)
			}
			mux = Differential{Pair: *d.Pair}
		}

		gain := adc.DefaultGain
		if d.Gain != nil {
			g, err := adc.ParseGain(*d.Gain)
			if err != nil {
				return nil, invalidf("gain", "descriptor %d: %v", i, err)
			}
			gain = g
		}

		out = append(out, Channel{Mux: mux, Gain: gain})
	}
	return out, nil
}
