package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameBoyDMGTracker_Pulse1TriggersOnNR14(t *testing.T) {
	tr := NewGameBoyDMGTracker(4194304)
	tr.OnRegisterWrite(gbNR12, 0xF0) // volume/envelope: DAC on
	tr.OnRegisterWrite(gbNR13, 0x00)
	events := tr.OnRegisterWrite(gbNR14, 0x87) // trigger + high timer bits

	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	require.NotNil(t, events[0].Tone.FreqHz)
}

func TestGameBoyDMGTracker_TriggerWithoutDACKeepsOff(t *testing.T) {
	tr := NewGameBoyDMGTracker(4194304)
	tr.OnRegisterWrite(gbNR12, 0x00) // DAC off
	events := tr.OnRegisterWrite(gbNR14, 0x80)
	assert.Empty(t, events)
}

func TestGameBoyDMGTracker_WaveChannelUsesNR30DAC(t *testing.T) {
	tr := NewGameBoyDMGTracker(4194304)
	tr.OnRegisterWrite(gbNR30, 0x80) // DAC enabled
	tr.OnRegisterWrite(gbNR33, 0x00)
	events := tr.OnRegisterWrite(gbNR34, 0x80)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	assert.Equal(t, 2, events[0].Channel)
}

func TestGameBoyDMGTracker_NoiseChannelHasNoTone(t *testing.T) {
	tr := NewGameBoyDMGTracker(4194304)
	tr.OnRegisterWrite(gbNR42, 0xF0) // DAC on
	events := tr.OnRegisterWrite(gbNR44, 0x80)
	require.Len(t, events, 1)
	assert.Equal(t, EventKeyOn, events[0].Kind)
	assert.Nil(t, events[0].Tone.FreqHz)
}

func TestGameBoyDMGTracker_MaxTimerStillHasFrequency(t *testing.T) {
	tr := NewGameBoyDMGTracker(4194304)
	tr.OnRegisterWrite(gbNR12, 0xF0)
	tr.OnRegisterWrite(gbNR13, 0xFF)
	events := tr.OnRegisterWrite(gbNR14, 0x87) // timer = 0x7FF < 2048, should have freq
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Tone.FreqHz)
}
