package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuC6280Tracker_SelectThenWriteAppliesToSelectedChannel(t *testing.T) {
	tr := NewHuC6280Tracker(3579545)
	tr.OnRegisterWrite(0x00, 2) // select channel 2
	tr.OnRegisterWrite(0x02, 0x50)
	tr.OnRegisterWrite(0x03, 0x01)
	events := tr.OnRegisterWrite(0x04, 0x9F) // enable + amplitude

	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	assert.Equal(t, 2, events[0].Channel)

	period := uint16(0x150)
	want := 3579545.0 / (32 * float64(period))
	require.NotNil(t, events[0].Tone.FreqHz)
	assert.InDelta(t, want, *events[0].Tone.FreqHz, 0.01)
}

func TestHuC6280Tracker_SelectClampsToSixChannels(t *testing.T) {
	tr := NewHuC6280Tracker(3579545)
	tr.OnRegisterWrite(0x00, 0xFF)
	assert.Equal(t, uint8(5), tr.selected)
}

func TestHuC6280Tracker_ZeroAmplitudeKeysOff(t *testing.T) {
	tr := NewHuC6280Tracker(3579545)
	tr.OnRegisterWrite(0x02, 0x50)
	tr.OnRegisterWrite(0x03, 0x01)
	tr.OnRegisterWrite(0x04, 0x9F)
	events := tr.OnRegisterWrite(0x04, 0x80) // amplitude 0
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOff, events[0].Kind)
}
