package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAY8910Tracker_KeyOnFromToneAndVolume(t *testing.T) {
	tr := NewAY8910Tracker(1773400)

	events := tr.OnRegisterWrite(0, 0xFD) // period fine = 0xFD
	assert.Empty(t, events)

	events = tr.OnRegisterWrite(1, 0x00) // period coarse = 0
	assert.Empty(t, events)

	// Mixer: enable tone on channel A (bit 0 clear), everything else disabled.
	events = tr.OnRegisterWrite(7, 0b0011_1110)
	assert.Empty(t, events, "volume still zero, channel should not key on yet")

	events = tr.OnRegisterWrite(8, 0x0F) // channel A volume
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	assert.Equal(t, 0, events[0].Channel)
	require.NotNil(t, events[0].Tone.FreqHz)

	period := uint16(0xFD)
	want := 1773400.0 / (16 * float64(period))
	assert.InDelta(t, want, *events[0].Tone.FreqHz, 0.001)
}

func TestAY8910Tracker_KeyOffOnZeroVolume(t *testing.T) {
	tr := NewAY8910Tracker(1773400)
	tr.OnRegisterWrite(0, 0x64)
	tr.OnRegisterWrite(1, 0x00)
	tr.OnRegisterWrite(7, 0b0011_1110)
	tr.OnRegisterWrite(8, 0x0F)

	events := tr.OnRegisterWrite(8, 0x00)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOff, events[0].Kind)
}

func TestAY8910Tracker_ToneChangeWhileKeyedOn(t *testing.T) {
	tr := NewAY8910Tracker(1773400)
	tr.OnRegisterWrite(0, 0x64)
	tr.OnRegisterWrite(1, 0x00)
	tr.OnRegisterWrite(7, 0b0011_1110)
	tr.OnRegisterWrite(8, 0x0F)

	events := tr.OnRegisterWrite(0, 0x65)
	require.Len(t, events, 1)
	assert.Equal(t, EventToneChange, events[0].Kind)
}

func TestAY8910Tracker_ZeroPeriodHasNoFrequency(t *testing.T) {
	tr := NewAY8910Tracker(1773400)
	tr.OnRegisterWrite(7, 0b0011_1110)
	events := tr.OnRegisterWrite(8, 0x0F)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Tone.FreqHz)
}

func TestAY8910Tracker_Reset(t *testing.T) {
	tr := NewAY8910Tracker(1773400)
	tr.OnRegisterWrite(0, 0x64)
	tr.OnRegisterWrite(1, 0x00)
	tr.OnRegisterWrite(7, 0b0011_1110)
	tr.OnRegisterWrite(8, 0x0F)

	tr.Reset()
	_, ok := tr.ReadRegister(8)
	assert.False(t, ok)
	assert.Equal(t, 3, tr.ChannelCount())
}
