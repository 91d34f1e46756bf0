package adc

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort scripts the front-end side of the command protocol: every command
// line written to it queues the scripted response for the next read.
type fakePort struct {
	responses map[string]string
	buf       bytes.Buffer
	closed    bool
	commands  []string
}

func newFakePort(responses map[string]string) *fakePort {
	return &fakePort{responses: responses}
}

func (f *fakePort) Write(p []byte) (int, error) {
	cmd := strings.TrimSpace(string(p))
	f.commands = append(f.commands, cmd)
	if resp, ok := f.responses[cmd]; ok {
		f.buf.WriteString(resp + "\n")
	}
	return len(p), nil
}

func (f *fakePort) Read(p []byte) (int, error) {
	return f.buf.Read(p)
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func TestHandshake(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		wantErr error
	}{
		{name: "identifies", resp: "ADC4 v1.2"},
		{name: "wrong device", resp: "GPS v3", wantErr: ErrNotDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newSerial(newFakePort(map[string]string{"ID": tt.resp}))
			err := d.handshake()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHandshake_NoResponse(t *testing.T) {
	d := newSerial(newFakePort(nil))
	assert.ErrorIs(t, d.handshake(), ErrNotDetected)
}

func TestReadSingleEnded(t *testing.T) {
	port := newFakePort(map[string]string{
		fmt.Sprintf("S 2 %d", int(GainFour)): "-513",
	})
	d := newSerial(port)

	code, err := d.ReadSingleEnded(2, GainFour)
	require.NoError(t, err)
	assert.Equal(t, int16(-513), code)
	assert.Equal(t, []string{"S 2 3"}, port.commands)
}

func TestReadDifferential(t *testing.T) {
	port := newFakePort(map[string]string{
		fmt.Sprintf("D 1 %d", int(GainOne)): "2047",
	})
	d := newSerial(port)

	code, err := d.ReadDifferential(1, GainOne)
	require.NoError(t, err)
	assert.Equal(t, int16(2047), code)
}

func TestRead_DeviceError(t *testing.T) {
	port := newFakePort(map[string]string{
		"S 0 1": "ERR saturated",
	})
	d := newSerial(port)

	_, err := d.ReadSingleEnded(0, GainOne)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saturated")
}

func TestSetDataRate(t *testing.T) {
	port := newFakePort(map[string]string{
		"R 920": "OK",
		"R 250": "nope",
	})
	d := newSerial(port)

	assert.NoError(t, d.SetDataRate(920))
	assert.Error(t, d.SetDataRate(250))
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		want    int16
		wantErr bool
	}{
		{name: "zero", resp: "0", want: 0},
		{name: "max", resp: "2047", want: 2047},
		{name: "min", resp: "-2048", want: -2048},
		{name: "above range", resp: "2048", wantErr: true},
		{name: "below range", resp: "-2049", wantErr: true},
		{name: "not a number", resp: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := parseCode(tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestClose(t *testing.T) {
	port := newFakePort(nil)
	d := newSerial(port)
	require.NoError(t, d.Close())
	assert.True(t, port.closed)
}
