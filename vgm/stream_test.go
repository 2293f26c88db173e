package vgm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intuitionamiga/soundlog/chip"
)

func TestCallbackStream_DispatchesRegisterWritesAndAdvancesSample(t *testing.T) {
	doc := NewBuilder(0x171).
		SetClock(ChipAY8910, 1773400).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x00, Value: 0x64}).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x01, Value: 0x00}).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x07, Value: 0b0011_1110}).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x08, Value: 0x0F}).
		Append(WaitNTSC{}).
		Finish()

	var samples []uint64
	stream := NewCallbackStream(doc)
	stream.OnWrite(ChipAY8910, func(ev WriteEvent) {
		samples = append(samples, ev.Sample)
	})
	tracker := chip.NewAY8910Tracker(1773400)
	stream.TrackState(ChipAY8910, InstancePrimary, tracker)

	var keyOnSeen bool
	stream.OnWrite(ChipAY8910, func(ev WriteEvent) {
		for _, e := range ev.Events {
			if e.Kind == chip.EventKeyOn {
				keyOnSeen = true
			}
		}
	})

	stream.Run()

	require.Len(t, samples, 4)
	assert.Equal(t, []uint64{0, 0, 0, 0}, samples)
	assert.True(t, keyOnSeen)

	got, ok := stream.Tracker(ChipAY8910, InstancePrimary)
	require.True(t, ok)
	assert.Equal(t, 3, got.ChannelCount())
}

func TestCallbackStream_SampleAdvancesAcrossWaits(t *testing.T) {
	doc := NewBuilder(0x171).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x00, Value: 1}).
		Append(WaitNTSC{}).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x00, Value: 2}).
		Append(WaitShort{N: 9}).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x00, Value: 3}).
		Finish()

	var samples []uint64
	stream := NewCallbackStream(doc)
	stream.OnWrite(ChipAY8910, func(ev WriteEvent) {
		samples = append(samples, ev.Sample)
	})
	stream.Run()

	require.Len(t, samples, 3)
	assert.Equal(t, uint64(0), samples[0])
	assert.Equal(t, uint64(735), samples[1])
	assert.Equal(t, uint64(735+10), samples[2])
}

func TestCallbackStream_PSGWriteDecomposesToSN76489(t *testing.T) {
	doc := NewBuilder(0x171).
		SetClock(ChipSN76489, 3579545).
		Append(PSGWrite{Value: 0x85}).
		Append(PSGWrite{Value: 0x3F}).
		Append(PSGWrite{Value: 0x90}).
		Finish()

	tracker := chip.NewSN76489Tracker(3579545)
	stream := NewCallbackStream(doc)
	stream.TrackState(ChipSN76489, InstancePrimary, tracker)

	var keyOns int
	stream.OnWrite(ChipSN76489, func(ev WriteEvent) {
		for _, e := range ev.Events {
			if e.Kind == chip.EventKeyOn {
				keyOns++
			}
		}
	})
	stream.Run()
	assert.Equal(t, 1, keyOns)
}

func TestCallbackStream_NoCallbackRegisteredStillFeedsTracker(t *testing.T) {
	doc := NewBuilder(0x171).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x07, Value: 0b0011_1110}).
		Append(RegisterWrite{Chip: ChipAY8910, Register: 0x08, Value: 0x0F}).
		Finish()

	tracker := chip.NewAY8910Tracker(1773400)
	stream := NewCallbackStream(doc)
	stream.TrackState(ChipAY8910, InstancePrimary, tracker)
	stream.Run()

	v, ok := tracker.ReadRegister(8)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x0F), v)
}
