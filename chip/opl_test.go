package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOPLTracker_KeyOnBitFromBRegister(t *testing.T) {
	tr := NewOPLTracker(3579545, DefaultOPLConfig(1, false))
	assert.Equal(t, 9, tr.ChannelCount())

	tr.OnRegisterWrite(0xA0, 0x50) // fnum low, channel 0
	events := tr.OnRegisterWrite(0xB0, 0x3A)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)

	fnum := uint16(0x3A&0x03)<<8 | 0x50
	block := uint8((0x3A >> 2) & 0x07)
	divisor := 72.0 * float64(uint32(1)<<(20-block))
	want := float64(fnum) * 3579545.0 / divisor
	require.NotNil(t, events[0].Tone.FreqHz)
	assert.InDelta(t, want, *events[0].Tone.FreqHz, 0.01)
}

func TestOPLTracker_4OpHalvesDivisorForLowSlots(t *testing.T) {
	trNormal := NewOPLTracker(14318180, DefaultOPLConfig(2, false))
	tr4op := NewOPLTracker(14318180, DefaultOPLConfig(2, true))

	for _, tr := range []*OPLTracker{trNormal, tr4op} {
		tr.OnRegisterWrite(0xA0, 0x50)
		tr.OnRegisterWrite(0xB0, 0x3A)
	}

	toneNormal := trNormal.computeTone(0, 0, 0x3A)
	tone4op := tr4op.computeTone(0, 0, 0x3A)
	require.NotNil(t, toneNormal.FreqHz)
	require.NotNil(t, tone4op.FreqHz)
	assert.InDelta(t, *toneNormal.FreqHz*2, *tone4op.FreqHz, 0.01)
}

func TestOPLTracker_KeyOffClearsChannel(t *testing.T) {
	tr := NewOPLTracker(3579545, DefaultOPLConfig(1, false))
	tr.OnRegisterWrite(0xA0, 0x50)
	tr.OnRegisterWrite(0xB0, 0x3A)
	events := tr.OnRegisterWrite(0xB0, 0x1A) // keyon bit cleared
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOff, events[0].Kind)
}
