// Package vgm implements a lossless codec for video game music logs:
// byte buffer in, a structured Document out, and back again. Two
// documents produced from the same musical content compare equal
// under Document.Equal even if their on-disk layouts differ, since
// placement (where GD3 or the command stream happen to sit) is not
// part of the document's meaning.
package vgm

import (
	"github.com/intuitionamiga/soundlog/gd3"
	"github.com/intuitionamiga/soundlog/vgmerr"
)

// Document is a fully decoded log: its fixed header, optional extra
// header, optional GD3 metadata, and its command stream.
type Document struct {
	Header      *Header
	ExtraHeader *ExtraHeader
	GD3         *gd3.Metadata
	Commands    []Command

	// LoopStartIndex is the index into Commands where playback resumes
	// on loop, or -1 if the document does not loop. It is the decoded
	// form of the header's self-relative loop offset field.
	LoopStartIndex int
}

// Parse decodes data into a Document. It does not attempt gzip
// decompression of .vgz inputs; callers handle that at the file-I/O
// boundary before calling Parse, the same way the CLI in cmd/vgmtool
// does.
func Parse(data []byte) (*Document, error) {
	header, dataStart, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Header: header, LoopStartIndex: -1}

	if header.extraHeaderOffsetField != 0 {
		ehStart := 0xBC + int(header.extraHeaderOffsetField)
		if ehStart < len(data) {
			eh, err := parseExtraHeader(data[ehStart:])
			if err != nil {
				return nil, err
			}
			doc.ExtraHeader = eh
		}
	}

	if header.gd3OffsetField != 0 {
		gd3Start := 0x14 + int(header.gd3OffsetField)
		if gd3Start < len(data) {
			meta, err := gd3.Parse(data[gd3Start:])
			if err != nil {
				return nil, err
			}
			doc.GD3 = meta
		}
	}

	if dataStart > len(data) {
		return nil, &vgmerr.OffsetOutOfRange{Offset: dataStart, Needed: 1, Available: len(data), Context: "command stream start"}
	}
	cmds, starts, _, err := decodeCommands(data, dataStart)
	if err != nil {
		return nil, err
	}
	doc.Commands = cmds

	if header.HasLoop {
		loopAbs := int(header.loopOffsetField) + 0x1C
		for i, s := range starts {
			if s == loopAbs {
				doc.LoopStartIndex = i
				break
			}
		}
	}
	return doc, nil
}

// Equal reports whether doc and other are semantically equal: same
// header content excluding placement fields, same extra header, same
// GD3 metadata, and the same command sequence.
func (doc *Document) Equal(other *Document) bool {
	if doc == nil || other == nil {
		return doc == other
	}
	if !doc.Header.EqualIgnoringPlacement(other.Header) {
		return false
	}
	if !extraHeaderEqual(doc.ExtraHeader, other.ExtraHeader) {
		return false
	}
	if !doc.GD3.Equal(other.GD3) {
		return false
	}
	if doc.Header.HasLoop && doc.LoopStartIndex != other.LoopStartIndex {
		return false
	}
	if len(doc.Commands) != len(other.Commands) {
		return false
	}
	for i := range doc.Commands {
		if !commandsEqual(doc.Commands[i], other.Commands[i]) {
			return false
		}
	}
	return true
}

func extraHeaderEqual(a, b *ExtraHeader) bool {
	if a == nil || b == nil {
		return a == nil && b == nil || (a != nil && len(a.ClockOverrides) == 0 && len(a.VolumeOverrides) == 0 && b == nil) || (b != nil && len(b.ClockOverrides) == 0 && len(b.VolumeOverrides) == 0 && a == nil)
	}
	if len(a.ClockOverrides) != len(b.ClockOverrides) || len(a.VolumeOverrides) != len(b.VolumeOverrides) {
		return false
	}
	for k, v := range a.ClockOverrides {
		if bv, ok := b.ClockOverrides[k]; !ok || bv != v {
			return false
		}
	}
	for k, v := range a.VolumeOverrides {
		if bv, ok := b.VolumeOverrides[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func commandsEqual(a, b Command) bool {
	switch av := a.(type) {
	case DataBlock:
		bv, ok := b.(DataBlock)
		if !ok || av.Type != bv.Type || len(av.Payload) != len(bv.Payload) {
			return false
		}
		for i := range av.Payload {
			if av.Payload[i] != bv.Payload[i] {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// TotalDataBlockBytes sums the payload size of every DataBlock command
// in the document, a convenience used by the CLI's info subcommand.
func (doc *Document) TotalDataBlockBytes() int {
	n := 0
	for _, c := range doc.Commands {
		if db, ok := c.(DataBlock); ok {
			n += len(db.Payload)
		}
	}
	return n
}
