package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSN76489Tracker_LatchThenDataKeysOn(t *testing.T) {
	tr := NewSN76489Tracker(3579545)

	// Latch channel 0, period-type, low 4 bits = 0x5.
	events := tr.OnRegisterWrite(0, 0x85)
	assert.Empty(t, events, "period still inaudible: full attenuation")

	// Data byte: high 6 bits of period = 0x3F -> period = 0x3F5.
	events = tr.OnRegisterWrite(0, 0x3F)
	assert.Empty(t, events, "still muted: volume latch never sent")

	// Latch channel 0 volume = loudest (0).
	events = tr.OnRegisterWrite(0, 0x90)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)

	period := uint16(0x3F5)
	want := 3579545.0 / (32 * float64(period))
	require.NotNil(t, events[0].Tone.FreqHz)
	assert.InDelta(t, want, *events[0].Tone.FreqHz, 0.001)
}

func TestSN76489Tracker_FullAttenuationKeysOff(t *testing.T) {
	tr := NewSN76489Tracker(3579545)
	tr.OnRegisterWrite(0, 0x85)
	tr.OnRegisterWrite(0, 0x3F)
	tr.OnRegisterWrite(0, 0x90)

	events := tr.OnRegisterWrite(0, 0x9F) // attenuation 0x0F = silent
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOff, events[0].Kind)
}

func TestSN76489Tracker_NoiseChannelHasNoFrequency(t *testing.T) {
	tr := NewSN76489Tracker(3579545)
	// Latch channel 3 (noise), volume type, loudest.
	events := tr.OnRegisterWrite(0, 0xF0)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	assert.Nil(t, events[0].Tone.FreqHz)
}

func TestSN76489Tracker_Reset(t *testing.T) {
	tr := NewSN76489Tracker(3579545)
	tr.OnRegisterWrite(0, 0x90)
	tr.Reset()
	v, ok := tr.ReadRegister(0)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0F)<<12, v)
}
