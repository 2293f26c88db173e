package vgm

import "github.com/intuitionamiga/soundlog/gd3"

// Builder assembles a Document command by command. It exists so
// callers writing a log from scratch (tests, synthetic fixtures) don't
// have to construct Header and Commands by hand.
type Builder struct {
	doc *Document
}

// NewBuilder starts a builder for format version version (e.g.
// 0x171 for 1.71).
func NewBuilder(version uint32) *Builder {
	h := NewHeader()
	h.Version = version
	return &Builder{doc: &Document{Header: h, LoopStartIndex: -1}}
}

// SetClock registers kind's master clock in Hz.
func (b *Builder) SetClock(kind ChipKind, hz uint32) *Builder {
	b.doc.Header.SetClock(kind, hz)
	return b
}

// SetClockValue registers a full ClockValue, including the dual-chip
// and chip-variant flag bits.
func (b *Builder) SetClockValue(kind ChipKind, v ClockValue) *Builder {
	b.doc.Header.SetClock(kind, v.Encode())
	return b
}

// SetGD3 attaches metadata to the document under construction.
func (b *Builder) SetGD3(m *gd3.Metadata) *Builder {
	b.doc.GD3 = m
	return b
}

// Append adds one command to the end of the stream.
func (b *Builder) Append(cmd Command) *Builder {
	b.doc.Commands = append(b.doc.Commands, cmd)
	return b
}

// MarkLoopStart records that playback resumes at the command about to
// be appended next, and sets LoopSamples to samplesRemaining.
func (b *Builder) MarkLoopStart(samplesRemaining uint32) *Builder {
	b.doc.Header.HasLoop = true
	b.doc.Header.LoopSamples = samplesRemaining
	b.doc.LoopStartIndex = len(b.doc.Commands)
	return b
}

// SetTotalSamples sets the header's total sample count, normally
// computed by summing every wait command's duration.
func (b *Builder) SetTotalSamples(n uint32) *Builder {
	b.doc.Header.TotalSamples = n
	return b
}

// Finish appends a terminating EndOfSoundData if the stream doesn't
// already end with one, and returns the assembled Document.
func (b *Builder) Finish() *Document {
	if n := len(b.doc.Commands); n == 0 {
		b.doc.Commands = append(b.doc.Commands, EndOfSoundData{})
	} else if _, ok := b.doc.Commands[n-1].(EndOfSoundData); !ok {
		b.doc.Commands = append(b.doc.Commands, EndOfSoundData{})
	}
	return b.doc
}

// TotalSamplesFromWaits computes the sample count a document's
// command stream implies, summing every wait variant. Useful to
// cross-check a parsed header's declared TotalSamples, or to fill in
// SetTotalSamples when building from scratch.
func TotalSamplesFromWaits(cmds []Command) uint32 {
	var total uint32
	for _, c := range cmds {
		switch w := c.(type) {
		case WaitSamples:
			total += uint32(w.Samples)
		case WaitNTSC:
			total += 735
		case WaitPAL:
			total += 882
		case WaitShort:
			total += uint32(w.N) + 1
		case DACStreamWrite:
			total += uint32(w.N)
		}
	}
	return total
}
