package vgm

// Bytes serializes doc back into a log file. Layout proceeds in two
// passes: first the command stream and GD3/extra-header blocks are
// encoded in isolation to learn their sizes, then the header's offset
// fields are patched to the absolute positions those sections land at
// once concatenated after the fixed-size header.
func (doc *Document) Bytes() []byte {
	var ehBytes []byte
	hasExtraHeader := doc.ExtraHeader != nil && (len(doc.ExtraHeader.ClockOverrides) > 0 || len(doc.ExtraHeader.VolumeOverrides) > 0)
	if hasExtraHeader {
		ehBytes = doc.ExtraHeader.Bytes()
	}

	// Layout order: header, extra header, command stream, gd3.
	extraHeaderAbs := uint32(0)
	pos := headerFullSize
	if hasExtraHeader {
		extraHeaderAbs = uint32(pos)
		pos += len(ehBytes)
	}
	dataAbs := uint32(pos)

	var cmdBytes []byte
	loopAbsolute := uint32(0)
	for i, c := range doc.Commands {
		before := len(cmdBytes)
		cmdBytes = encodeOne(cmdBytes, c)
		if doc.Header.HasLoop && i == doc.LoopStartIndex {
			loopAbsolute = dataAbs + uint32(before)
		}
	}
	pos += len(cmdBytes)

	var gd3Bytes []byte
	if doc.GD3 != nil {
		gd3Bytes = doc.GD3.Bytes()
	}
	gd3Abs := uint32(0)
	if doc.GD3 != nil {
		gd3Abs = uint32(pos)
		pos += len(gd3Bytes)
	}
	eofOffset := uint32(pos)

	out := make([]byte, pos)
	doc.Header.writeInto(out, gd3Abs, dataAbs, loopAbsolute, extraHeaderAbs, hasExtraHeader)
	// EoF offset field at 0x04 is self-relative to its own position.
	putU32LE(out, 0x04, eofOffset-0x04)

	if hasExtraHeader {
		copy(out[extraHeaderAbs:], ehBytes)
	}
	copy(out[dataAbs:], cmdBytes)
	if doc.GD3 != nil {
		copy(out[gd3Abs:], gd3Bytes)
	}
	return out
}

func putU32LE(dst []byte, offset int, v uint32) {
	dst[offset] = byte(v)
	dst[offset+1] = byte(v >> 8)
	dst[offset+2] = byte(v >> 16)
	dst[offset+3] = byte(v >> 24)
}
