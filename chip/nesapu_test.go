package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNESAPUTracker_StatusBitKeysOnPulse1(t *testing.T) {
	tr := NewNESAPUTracker(1789773)
	tr.OnRegisterWrite(0x02, 0x40)
	tr.OnRegisterWrite(0x03, 0x02)

	events := tr.OnRegisterWrite(nesStatusReg, 0x01)
	var ch0 *StateEvent
	for i := range events {
		if events[i].Channel == 0 {
			ch0 = &events[i]
		}
	}
	require.NotNil(t, ch0)
	assert.Equal(t, EventKeyOn, ch0.Kind)

	timer := uint16(0x240)
	want := 111860.78 / (float64(timer) + 1)
	require.NotNil(t, ch0.Tone.FreqHz)
	assert.InDelta(t, want, *ch0.Tone.FreqHz, 0.01)
}

func TestNESAPUTracker_NoiseChannelHasNoTone(t *testing.T) {
	tr := NewNESAPUTracker(1789773)
	events := tr.OnRegisterWrite(nesStatusReg, 0x08) // enable noise channel (bit3)
	var noiseEv *StateEvent
	for i := range events {
		if events[i].Channel == 3 {
			noiseEv = &events[i]
		}
	}
	require.NotNil(t, noiseEv)
	assert.Nil(t, noiseEv.Tone.FreqHz)
}

func TestNESAPUTracker_DisableKeysOff(t *testing.T) {
	tr := NewNESAPUTracker(1789773)
	tr.OnRegisterWrite(nesStatusReg, 0x01)
	events := tr.OnRegisterWrite(nesStatusReg, 0x00)
	var ch0 *StateEvent
	for i := range events {
		if events[i].Channel == 0 {
			ch0 = &events[i]
		}
	}
	require.NotNil(t, ch0)
	assert.Equal(t, EventKeyOff, ch0.Kind)
}
