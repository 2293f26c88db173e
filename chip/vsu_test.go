package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVSUTracker_ChannelForAddressing(t *testing.T) {
	tr := NewVSUTracker(5000000)
	// Channel 2 volume register.
	events := tr.OnRegisterWrite(0x100+2*0x100+0x01, 0x0F)
	assert.Empty(t, events, "not yet enabled")

	events = tr.OnRegisterWrite(0x100+2*0x100+0x00, 0x80)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	assert.Equal(t, 2, events[0].Channel)
}

func TestVSUTracker_WaveformMemoryIsNoOp(t *testing.T) {
	tr := NewVSUTracker(5000000)
	events := tr.OnRegisterWrite(0x50, 0xFF)
	assert.Nil(t, events)
}

func TestVSUTracker_MaxPeriodStillHasFrequency(t *testing.T) {
	tr := NewVSUTracker(5000000)
	tr.OnRegisterWrite(0x100+0x01, 0x0F)
	tr.OnRegisterWrite(0x100+0x02, 0xFF)
	tr.OnRegisterWrite(0x100+0x03, 0x07) // freq = 0x7FF = 2047, still below 2048
	events := tr.OnRegisterWrite(0x100+0x00, 0x80)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Tone.FreqHz)
}
