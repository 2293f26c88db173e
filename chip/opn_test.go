package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOPNTracker_KeyOnWithFnumAndBlock(t *testing.T) {
	tr := NewOPNTracker(7670453, DefaultOPNConfig(2))
	assert.Equal(t, 6, tr.ChannelCount())

	tr.OnRegisterWrite(0xA0, 0x34) // port0 ch0 fnum low
	tr.OnRegisterWrite(0xA4, 0x22) // port0 ch0 fnum high + block

	// Key on: slot=0, part=0, all 4 operators on -> opBits=0xF0>>4=0xF
	events := tr.OnRegisterWrite(0x28, 0xF0)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	assert.Equal(t, 0, events[0].Channel)

	fnum := uint16(0x22&0x07)<<8 | 0x34
	block := uint8((0x22 >> 3) & 0x07)
	require.NotNil(t, events[0].Tone.FreqHz)
	want := float64(fnum) * 7670453.0 / (6 * float64(uint32(1)<<(20-block)))
	assert.InDelta(t, want, *events[0].Tone.FreqHz, 0.01)
}

func TestOPNTracker_SecondPortAddressedIndependently(t *testing.T) {
	tr := NewOPNTracker(7670453, DefaultOPNConfig(2))
	tr.OnRegisterWrite(uint16(1)<<8|0xA0, 0x10)
	tr.OnRegisterWrite(uint16(1)<<8|0xA4, 0x21)
	// part=1 (bit2 set), slot=1
	events := tr.OnRegisterWrite(0x28, 0b0001_0101)
	require.Len(t, events, 1)
	assert.Equal(t, 3+1, events[0].Channel) // port1 base (3) + slot 1
}

func TestOPNTracker_ToneChangeWhileKeyedOn(t *testing.T) {
	tr := NewOPNTracker(7670453, DefaultOPNConfig(1))
	tr.OnRegisterWrite(0xA0, 0x34)
	tr.OnRegisterWrite(0xA4, 0x22)
	tr.OnRegisterWrite(0x28, 0xF0)

	events := tr.OnRegisterWrite(0xA0, 0x35)
	require.Len(t, events, 1)
	assert.Equal(t, EventToneChange, events[0].Kind)
}
