package vgm

import (
	"github.com/intuitionamiga/soundlog/binutil"
	"github.com/intuitionamiga/soundlog/vgmerr"
)

// decodeCommands reads the command stream starting at offset until an
// EndOfSoundData command is produced or the buffer is exhausted. It
// returns the position just past the terminator, and the starting
// byte offset of each decoded command (used to resolve the header's
// loop-point offset to a command index).
func decodeCommands(data []byte, offset int) ([]Command, []int, int, error) {
	var cmds []Command
	var starts []int
	pos := offset
	for pos < len(data) {
		op := data[pos]
		cmd, w, err := decodeOne(data, pos, op)
		if err != nil {
			return cmds, starts, pos, err
		}
		cmds = append(cmds, cmd)
		starts = append(starts, pos)
		pos += w
		if _, ok := cmd.(EndOfSoundData); ok {
			return cmds, starts, pos, nil
		}
	}
	return cmds, starts, pos, nil
}

func decodeOne(data []byte, pos int, op byte) (Command, int, error) {
	switch {
	case op == opcodePSGWrite || op == opcodePSGWrite2:
		v, err := binutil.ReadU8(data, pos+1)
		if err != nil {
			return nil, 0, err
		}
		inst := InstancePrimary
		if op == opcodePSGWrite2 {
			inst = InstanceSecondary
		}
		return PSGWrite{Instance: inst, Value: v}, 2, nil

	case op == opcodeWait16:
		v, err := binutil.ReadU16LE(data, pos+1)
		if err != nil {
			return nil, 0, err
		}
		return WaitSamples{Samples: v}, 3, nil

	case op == opcodeWaitNTSC:
		return WaitNTSC{}, 1, nil

	case op == opcodeWaitPAL:
		return WaitPAL{}, 1, nil

	case op == opcodeEndOfData:
		return EndOfSoundData{}, 1, nil

	case op == opcodeDataBlock:
		return decodeDataBlock(data, pos)

	case op == opcodePCMRAMWrite:
		return decodePCMRAMWrite(data, pos)

	case op == opcodeSeek:
		v, err := binutil.ReadU32LE(data, pos+1)
		if err != nil {
			return nil, 0, err
		}
		return Seek{Offset: v}, 5, nil

	case op >= waitShortBase && op <= waitShortEnd:
		return WaitShort{N: op - waitShortBase}, 1, nil

	case op >= dacStreamBase && op <= dacStreamEnd:
		return DACStreamWrite{N: op - dacStreamBase}, 1, nil

	case op == streamSetupOp:
		return decodeStreamSetup(data, pos)
	case op == streamSetDataOp:
		return decodeStreamSetData(data, pos)
	case op == streamSetFreqOp:
		return decodeStreamSetFreq(data, pos)
	case op == streamStartOp:
		return decodeStreamStart(data, pos)
	case op == streamStopOp:
		id, err := binutil.ReadU8(data, pos+1)
		if err != nil {
			return nil, 0, err
		}
		return StreamControl{Op: StreamStop, StreamID: id}, 2, nil
	case op == streamStartFastOp:
		return decodeStreamStartFast(data, pos)

	case op == opcodePortRegWrite:
		port, err := binutil.ReadU8(data, pos+1)
		if err != nil {
			return nil, 0, err
		}
		reg, err := binutil.ReadU8(data, pos+2)
		if err != nil {
			return nil, 0, err
		}
		val, err := binutil.ReadU8(data, pos+3)
		if err != nil {
			return nil, 0, err
		}
		inst := InstancePrimary
		if reg&0x80 != 0 {
			inst = InstanceSecondary
		}
		return PortRegisterWrite{Chip: ChipK051649, Instance: inst, Port: port, Register: reg &^ 0x80, Value: val}, 4, nil
	}

	if chip, ok := chipForOffsetWriteOpcode(op); ok {
		off, err := binutil.ReadU16LE(data, pos+1)
		if err != nil {
			return nil, 0, err
		}
		val, err := binutil.ReadU8(data, pos+3)
		if err != nil {
			return nil, 0, err
		}
		inst := InstancePrimary
		if off&0x8000 != 0 {
			inst = InstanceSecondary
		}
		return OffsetWrite{Chip: chip, Instance: inst, Offset: off &^ 0x8000, Value: val}, 4, nil
	}

	if entry, ok := regWriteEntryFor(op); ok {
		reg, err := binutil.ReadU8(data, pos+1)
		if err != nil {
			return nil, 0, err
		}
		val, err := binutil.ReadU8(data, pos+2)
		if err != nil {
			return nil, 0, err
		}
		inst := InstancePrimary
		if reg&0x80 != 0 {
			inst = InstanceSecondary
		}
		return RegisterWrite{Chip: entry.chip, Instance: inst, Port: entry.port, Register: reg &^ 0x80, Value: val}, 3, nil
	}

	return nil, 0, &vgmerr.UnknownOpcode{Opcode: op, Position: pos}
}

func decodeDataBlock(data []byte, pos int) (Command, int, error) {
	if pos+7 > len(data) {
		return nil, 0, &vgmerr.MalformedDataBlock{Reason: "truncated data block header"}
	}
	if data[pos+1] != 0x66 {
		return nil, 0, &vgmerr.MalformedDataBlock{Reason: "missing 0x66 sub-marker"}
	}
	blockType := data[pos+2]
	size, err := binutil.ReadU32LE(data, pos+3)
	if err != nil {
		return nil, 0, err
	}
	payload, err := binutil.Slice(data, pos+7, int(size))
	if err != nil {
		return nil, 0, &vgmerr.MalformedDataBlock{Reason: "declared size exceeds buffer"}
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return DataBlock{Type: blockType, Payload: cp}, 7 + int(size), nil
}

func decodePCMRAMWrite(data []byte, pos int) (Command, int, error) {
	if pos+12 > len(data) {
		return nil, 0, &vgmerr.MalformedDataBlock{Reason: "truncated pcm ram write"}
	}
	if data[pos+1] != 0x66 {
		return nil, 0, &vgmerr.MalformedDataBlock{Reason: "missing 0x66 sub-marker"}
	}
	typ := data[pos+2]
	srcOff, err := read24LE(data, pos+3)
	if err != nil {
		return nil, 0, err
	}
	dstOff, err := read24LE(data, pos+6)
	if err != nil {
		return nil, 0, err
	}
	size, err := read24LE(data, pos+9)
	if err != nil {
		return nil, 0, err
	}
	return PCMRAMWrite{Type: typ, SrcOffset: srcOff, DstOffset: dstOff, Size: size}, 12, nil
}

func read24LE(data []byte, pos int) (uint32, error) {
	b, err := binutil.Slice(data, pos, 3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

func put24LE(dst []byte, pos int, v uint32) {
	dst[pos] = byte(v)
	dst[pos+1] = byte(v >> 8)
	dst[pos+2] = byte(v >> 16)
}

func decodeStreamSetup(data []byte, pos int) (Command, int, error) {
	b, err := binutil.Slice(data, pos+1, 4)
	if err != nil {
		return nil, 0, err
	}
	return StreamControl{Op: StreamSetup, StreamID: b[0], ChipKind: ChipKind(b[1]), Port: b[2], Register: b[3]}, 5, nil
}

func decodeStreamSetData(data []byte, pos int) (Command, int, error) {
	b, err := binutil.Slice(data, pos+1, 4)
	if err != nil {
		return nil, 0, err
	}
	return StreamControl{Op: StreamSetData, StreamID: b[0], DataBankID: b[1], StepSize: b[2], StepBase: b[3]}, 5, nil
}

func decodeStreamSetFreq(data []byte, pos int) (Command, int, error) {
	id, err := binutil.ReadU8(data, pos+1)
	if err != nil {
		return nil, 0, err
	}
	freq, err := binutil.ReadU32LE(data, pos+2)
	if err != nil {
		return nil, 0, err
	}
	return StreamControl{Op: StreamSetFrequency, StreamID: id, Frequency: freq}, 6, nil
}

func decodeStreamStart(data []byte, pos int) (Command, int, error) {
	id, err := binutil.ReadU8(data, pos+1)
	if err != nil {
		return nil, 0, err
	}
	offset, err := binutil.ReadU32LE(data, pos+2)
	if err != nil {
		return nil, 0, err
	}
	lengthMode, err := binutil.ReadU8(data, pos+6)
	if err != nil {
		return nil, 0, err
	}
	length, err := binutil.ReadU32LE(data, pos+7)
	if err != nil {
		return nil, 0, err
	}
	return StreamControl{Op: StreamStart, StreamID: id, DataOffset: offset, LengthMode: lengthMode, Length: length}, 11, nil
}

func decodeStreamStartFast(data []byte, pos int) (Command, int, error) {
	id, err := binutil.ReadU8(data, pos+1)
	if err != nil {
		return nil, 0, err
	}
	blockID, err := binutil.ReadU16LE(data, pos+2)
	if err != nil {
		return nil, 0, err
	}
	flags, err := binutil.ReadU8(data, pos+4)
	if err != nil {
		return nil, 0, err
	}
	return StreamControl{Op: StreamStartFast, StreamID: id, BlockID: uint8(blockID), FlagBits: flags}, 5, nil
}

// encodeOne appends cmd's on-wire bytes to dst and returns the result.
func encodeOne(dst []byte, cmd Command) []byte {
	switch c := cmd.(type) {
	case PSGWrite:
		op := byte(opcodePSGWrite)
		if c.Instance == InstanceSecondary {
			op = opcodePSGWrite2
		}
		return append(dst, op, c.Value)

	case WaitSamples:
		b := make([]byte, 2)
		binutil.PutU16LE(b, 0, c.Samples)
		return append(append(dst, opcodeWait16), b...)

	case WaitNTSC:
		return append(dst, opcodeWaitNTSC)
	case WaitPAL:
		return append(dst, opcodeWaitPAL)
	case WaitShort:
		return append(dst, waitShortBase+c.N)
	case EndOfSoundData:
		return append(dst, opcodeEndOfData)
	case DACStreamWrite:
		return append(dst, dacStreamBase+c.N)
	case Seek:
		b := make([]byte, 4)
		binutil.PutU32LE(b, 0, c.Offset)
		return append(append(dst, opcodeSeek), b...)

	case DataBlock:
		b := make([]byte, 5)
		b[0] = c.Type
		binutil.PutU32LE(b, 1, uint32(len(c.Payload)))
		dst = append(dst, opcodeDataBlock, 0x66)
		dst = append(dst, b...)
		return append(dst, c.Payload...)

	case PCMRAMWrite:
		b := make([]byte, 10)
		b[0] = c.Type
		put24LE(b, 1, c.SrcOffset)
		put24LE(b, 4, c.DstOffset)
		put24LE(b, 7, c.Size)
		dst = append(dst, opcodePCMRAMWrite, 0x66)
		return append(dst, b...)

	case RegisterWrite:
		op, ok := regWriteOpcodeFor(c.Chip, c.Port)
		if !ok {
			return dst
		}
		reg := c.Register
		if c.Instance == InstanceSecondary {
			reg |= 0x80
		}
		return append(dst, op, reg, c.Value)

	case PortRegisterWrite:
		reg := c.Register
		if c.Instance == InstanceSecondary {
			reg |= 0x80
		}
		return append(dst, opcodePortRegWrite, c.Port, reg, c.Value)

	case OffsetWrite:
		op, ok := offsetWriteOpcodeFor(c.Chip)
		if !ok {
			return dst
		}
		off := c.Offset
		if c.Instance == InstanceSecondary {
			off |= 0x8000
		}
		b := make([]byte, 2)
		binutil.PutU16LE(b, 0, off)
		return append(append(dst, op), b[0], b[1], c.Value)

	case StreamControl:
		return encodeStreamControl(dst, c)
	}
	return dst
}

func encodeStreamControl(dst []byte, c StreamControl) []byte {
	switch c.Op {
	case StreamSetup:
		return append(dst, streamSetupOp, c.StreamID, byte(c.ChipKind), c.Port, c.Register)
	case StreamSetData:
		return append(dst, streamSetDataOp, c.StreamID, c.DataBankID, c.StepSize, c.StepBase)
	case StreamSetFrequency:
		b := make([]byte, 4)
		binutil.PutU32LE(b, 0, c.Frequency)
		return append(append(dst, streamSetFreqOp, c.StreamID), b...)
	case StreamStart:
		b := make([]byte, 4)
		binutil.PutU32LE(b, 0, c.DataOffset)
		l := make([]byte, 4)
		binutil.PutU32LE(l, 0, c.Length)
		dst = append(dst, streamStartOp, c.StreamID)
		dst = append(dst, b...)
		dst = append(dst, c.LengthMode)
		return append(dst, l...)
	case StreamStop:
		return append(dst, streamStopOp, c.StreamID)
	case StreamStartFast:
		b := make([]byte, 2)
		binutil.PutU16LE(b, 0, uint16(c.BlockID))
		return append(append(dst, streamStartFastOp, c.StreamID), b[0], b[1], c.FlagBits)
	}
	return dst
}

// width reports the on-wire byte length of cmd, used by the layout
// pass to compute section sizes without re-encoding.
func width(cmd Command) int {
	switch c := cmd.(type) {
	case PSGWrite:
		return 2
	case WaitSamples:
		return 3
	case WaitNTSC, WaitPAL, EndOfSoundData, DACStreamWrite:
		return 1
	case WaitShort:
		return 1
	case Seek:
		return 5
	case DataBlock:
		return 7 + len(c.Payload)
	case PCMRAMWrite:
		return 12
	case RegisterWrite, PortRegisterWrite:
		return 3 + extraWidthForThreeOperand(cmd)
	case OffsetWrite:
		return 4
	case StreamControl:
		return streamControlWidth(c)
	}
	return 0
}

func extraWidthForThreeOperand(cmd Command) int {
	if _, ok := cmd.(PortRegisterWrite); ok {
		return 1
	}
	return 0
}

func streamControlWidth(c StreamControl) int {
	switch c.Op {
	case StreamSetup:
		return 5
	case StreamSetData:
		return 5
	case StreamSetFrequency:
		return 6
	case StreamStart:
		return 11
	case StreamStop:
		return 2
	case StreamStartFast:
		return 5
	}
	return 0
}
