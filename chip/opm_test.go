package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOPMTracker_KeyOnUsesKeyCodeAndFraction(t *testing.T) {
	tr := NewOPMTracker(3579545)
	assert.Equal(t, 8, tr.ChannelCount())

	tr.OnRegisterWrite(0x28, 0x4A) // key code: octave 4, note index 10 (noteCodeToIndex[10]=8)
	tr.OnRegisterWrite(0x30, 0x00) // key fraction 0

	events := tr.OnRegisterWrite(0x08, 0x78) // key on all operators, channel 0
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	require.NotNil(t, events[0].Tone.FreqHz)
	assert.Greater(t, *events[0].Tone.FreqHz, 0.0)
}

func TestOPMTracker_InvalidNoteCodeHasNoFrequency(t *testing.T) {
	tr := NewOPMTracker(3579545)
	tr.OnRegisterWrite(0x28, 0x43) // note nibble 3 -> invalid
	tr.OnRegisterWrite(0x30, 0x00)
	events := tr.OnRegisterWrite(0x08, 0x78)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Tone.FreqHz)
}

func TestOPMTracker_KeyOffWhenAllOperatorsOff(t *testing.T) {
	tr := NewOPMTracker(3579545)
	tr.OnRegisterWrite(0x28, 0x4A)
	tr.OnRegisterWrite(0x30, 0x00)
	tr.OnRegisterWrite(0x08, 0x78)
	events := tr.OnRegisterWrite(0x08, 0x00)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOff, events[0].Kind)
}
