// Package telemetry renders snapshots and configuration views into the
// canonical JSON schema shared verbatim by the HTTP and serial surfaces.
package telemetry

import (
	"encoding/json"
	"strconv"

	"github.com/hybridecologies/adcbridge/pkg/chancfg"
	"github.com/hybridecologies/adcbridge/pkg/sampler"
)

// Telemetry mode strings. The write grammar uses "single_ended"; the
// telemetry stream historically abbreviates it.
const (
	modeSingle       = "single"
	modeDifferential = "differential"
)

var pairNames = [2]string{"0-1", "2-3"}

type channelEntry struct {
	Raw     int     `json:"raw"`
	Voltage float64 `json:"voltage"`
	Mode    string  `json:"mode"`
	// Exactly one of Channel and Pair is present, depending on Mode.
	Channel *int   `json:"channel,omitempty"`
	Pair    string `json:"pair,omitempty"`
}

type snapshotPayload struct {
	Timestamp int64                   `json:"timestamp"`
	Channels  map[string]channelEntry `json:"channels"`
}

// EncodeSnapshot renders one sampling pass. Only active entries are included.
// Map keys are the decimal slot indexes; encoding/json emits them sorted, so
// the byte output is deterministic and identical across transports.
func EncodeSnapshot(snap sampler.Snapshot, view chancfg.View) ([]byte, error) {
	payload := snapshotPayload{
		Timestamp: snap.TimestampMs,
		Channels:  make(map[string]channelEntry),
	}

	for i, r := range snap.Channels {
		if !r.Active || i >= len(view.Channels) {
			continue
		}

		entry := channelEntry{
			Raw:     int(r.Raw),
			Voltage: r.Volts,
		}
		switch m := view.Channels[i].Mux.(type) {
		case chancfg.SingleEnded:
			input := m.Input
			entry.Mode = modeSingle
			entry.Channel = &input
		case chancfg.Differential:
			entry.Mode = modeDifferential
			entry.Pair = pairNames[m.Pair]
		}
		payload.Channels[strconv.Itoa(i)] = entry
	}

	return json.Marshal(payload)
}

type configChannel struct {
	Index   int    `json:"index"`
	Mode    string `json:"mode"`
	Channel int    `json:"channel"`
	Gain    string `json:"gain"`
}

type configPayload struct {
	SampleRate     int             `json:"sample_rate"`
	DataRate       int             `json:"data_rate"`
	ActiveChannels int             `json:"active_channels"`
	Channels       []configChannel `json:"channels"`
}

// EncodeConfig renders a configuration read view.
func EncodeConfig(view chancfg.View) ([]byte, error) {
	payload := configPayload{
		SampleRate:     view.SampleRateHz,
		DataRate:       int(view.DataRate),
		ActiveChannels: view.ActiveChannels,
		Channels:       make([]configChannel, 0, len(view.Channels)),
	}

	for i, ch := range view.Channels {
		entry := configChannel{
			Index: i,
			Gain:  ch.Gain.String(),
		}
		switch m := ch.Mux.(type) {
		case chancfg.SingleEnded:
			entry.Mode = chancfg.ModeSingleEnded.String()
			entry.Channel = m.Input
		case chancfg.Differential:
			entry.Mode = chancfg.ModeDifferential.String()
			entry.Channel = m.Pair
		}
		payload.Channels = append(payload.Channels, entry)
	}

	return json.Marshal(payload)
}

type streamInfoPayload struct {
	Name       string `json:"name"`
	Transport  string `json:"transport"`
	Endpoint   string `json:"endpoint"`
	SampleRate int    `json:"sample_rate"`
}

// EncodeStreamInfo renders the static stream description advertising the
// polling endpoint and the current sample rate.
func EncodeStreamInfo(view chancfg.View) ([]byte, error) {
	return json.Marshal(streamInfoPayload{
		Name:       "adcbridge",
		Transport:  "http-poll",
		Endpoint:   "/data",
		SampleRate: view.SampleRateHz,
	})
}

// StatusOK is the fixed success body for config writes.
func StatusOK() []byte {
	return []byte(`{"status":"ok"}`)
}

// EncodeError renders a structured error body.
func EncodeError(msg string) []byte {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return body
}
