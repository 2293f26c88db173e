package vgm

import (
	"github.com/intuitionamiga/soundlog/binutil"
	"github.com/intuitionamiga/soundlog/vgmerr"
)

const identVgm = "Vgm "

// headerFieldOffset gives the byte offset of each chip's clock field
// within the fixed-layout header, mirroring the log format's own
// growth-by-appending-fields history: newer chips sit at higher
// offsets, and a file written by an older encoder simply never
// reaches them.
var headerFieldOffset = [chipKindCount]int{
	ChipSN76489:    0x0C,
	ChipYM2413:     0x10,
	ChipYM2612:     0x2C,
	ChipYM2151:     0x30,
	ChipSegaPCM:    0x38,
	ChipRF5C68:     0x40,
	ChipYM2203:     0x44,
	ChipYM2608:     0x48,
	ChipYM2610:     0x4C,
	ChipYM3812:     0x50,
	ChipYM3526:     0x54,
	ChipY8950:      0x58,
	ChipYMF262:     0x5C,
	ChipYMF278B:    0x60,
	ChipYMF271:     0x64,
	ChipYMZ280B:    0x68,
	ChipRF5C164:    0x6C,
	ChipPWM:        0x70,
	ChipAY8910:     0x74,
	ChipGameBoyDMG: 0x80,
	ChipNESAPU:     0x84,
	ChipMultiPCM:   0x88,
	ChipUPD7759:    0x8C,
	ChipOKIM6258:   0x90,
	ChipOKIM6295:   0x98,
	ChipK051649:    0x9C,
	ChipK054539:    0xA0,
	ChipHuC6280:    0xA4,
	ChipC140:       0xA8,
	ChipK053260:    0xAC,
	ChipPokey:      0xB0,
	ChipQSound:     0xB4,
	ChipSCSP:       0xB8,
	ChipWonderSwan: 0xC0,
	ChipVSU:        0xC4,
	ChipSAA1099:    0xC8,
	ChipES5503:     0xCC,
	ChipES5506:     0xD0,
	ChipX1010:      0xD8,
	ChipC352:       0xDC,
	ChipGA20:       0xE0,
}

// headerMinSize is the size of the oldest (1.00) header: up through
// the loop sample count, with no data offset field at all.
const headerMinSize = 0x20

// headerLegacyDataStart is where the command stream begins when the
// header has no data offset field, or the field reads zero.
const headerLegacyDataStart = 0x40

// headerFullSize is the size this package lays out for newly built
// documents: every field above is within range.
const headerFullSize = 0xE4

// Header is the fixed-layout portion of a log preceding the command
// stream: format version, sample counts, loop point, and the table of
// per-chip master clocks. Fields beyond what the declared data offset
// reaches are absent (Clock returns ok=false) rather than zero, since
// a zero clock and an omitted one mean different things.
type Header struct {
	Version uint32

	TotalSamples uint32
	LoopSamples  uint32
	HasLoop      bool

	Rate uint32

	VolumeModifier  int8
	HasVolumeModifier bool
	LoopBase        int8
	LoopModifier    uint8

	// gd3OffsetField and dataOffsetField are placement pointers,
	// excluded from semantic equality and recomputed by the serializer
	// on every write.
	gd3OffsetField  uint32
	dataOffsetField uint32
	loopOffsetField uint32
	extraHeaderOffsetField uint32

	clocks map[ChipKind]uint32 // raw (packed) clock, present fields only
}

// NewHeader returns a Header with the current format version and no
// chip clocks registered.
func NewHeader() *Header {
	return &Header{
		Version: 0x171,
		clocks:  make(map[ChipKind]uint32),
	}
}

// Clock returns the raw packed clock field for kind and whether it was
// present at all (either parsed from a file whose header reached that
// offset, or explicitly set on a document under construction).
func (h *Header) Clock(kind ChipKind) (uint32, bool) {
	v, ok := h.clocks[kind]
	return v, ok
}

// SetClock registers a raw packed clock field for kind. Passing 0 for
// Hz in DecodeClock/Encode still counts as present; to remove a chip
// entirely use ClearClock.
func (h *Header) SetClock(kind ChipKind, raw uint32) {
	if h.clocks == nil {
		h.clocks = make(map[ChipKind]uint32)
	}
	h.clocks[kind] = raw
}

// ClearClock removes kind's clock field, marking it absent.
func (h *Header) ClearClock(kind ChipKind) {
	delete(h.clocks, kind)
}

// Chips returns the set of chip kinds with a present clock field, in
// ascending ChipKind order.
func (h *Header) Chips() []ChipKind {
	out := make([]ChipKind, 0, len(h.clocks))
	for k := ChipKind(0); k < chipKindCount; k++ {
		if _, ok := h.clocks[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// parseHeader reads the fixed header starting at offset 0, tolerating
// truncation: any field whose offset+width falls beyond the earlier
// of len(data) and the self-declared data-start offset is left absent.
func parseHeader(data []byte) (*Header, int, error) {
	if len(data) < headerMinSize {
		return nil, 0, &vgmerr.HeaderTooShort{Section: "vgm header"}
	}
	var ident [4]byte
	copy(ident[:], data[0:4])
	if string(ident[:]) != identVgm {
		return nil, 0, &vgmerr.InvalidIdent{Want: identVgm, Got: ident}
	}

	version, err := binutil.ReadU32LE(data, 0x08)
	if err != nil {
		return nil, 0, err
	}

	dataOffsetField, _ := binutil.ReadU32LE(data, 0x34)
	dataStart := headerLegacyDataStart
	if len(data) >= 0x38 && dataOffsetField != 0 {
		dataStart = 0x34 + int(dataOffsetField)
	}
	headerLimit := dataStart
	if headerLimit > len(data) {
		headerLimit = len(data)
	}

	h := NewHeader()
	h.Version = version

	gd3Off, _ := binutil.ReadU32LE(data, 0x14)
	h.gd3OffsetField = gd3Off
	totalSamples, _ := binutil.ReadU32LE(data, 0x18)
	h.TotalSamples = totalSamples
	loopOff, _ := binutil.ReadU32LE(data, 0x1C)
	h.loopOffsetField = loopOff
	h.HasLoop = loopOff != 0
	loopSamples, _ := binutil.ReadU32LE(data, 0x20)
	h.LoopSamples = loopSamples
	h.dataOffsetField = dataOffsetField

	fieldPresent := func(offset, width int) bool {
		return offset+width <= headerLimit && offset+width <= len(data)
	}

	if fieldPresent(0x24, 4) {
		h.Rate, _ = binutil.ReadU32LE(data, 0x24)
	}
	if fieldPresent(0x7C, 4) {
		b, _ := binutil.Slice(data, 0x7C, 4)
		h.VolumeModifier = int8(b[0])
		h.HasVolumeModifier = true
		h.LoopBase = int8(b[2])
		h.LoopModifier = b[3]
	}
	if fieldPresent(0xBC, 4) {
		h.extraHeaderOffsetField, _ = binutil.ReadU32LE(data, 0xBC)
	}

	for kind := ChipKind(0); kind < chipKindCount; kind++ {
		off := headerFieldOffset[kind]
		if off == 0 {
			continue
		}
		if !fieldPresent(off, 4) {
			continue
		}
		raw, _ := binutil.ReadU32LE(data, off)
		h.clocks[kind] = raw
	}

	return h, dataStart, nil
}

// layoutSize computes the byte size this header serializes to: always the
// full current-version layout, so every chip clock this package knows
// about has a slot regardless of which fields the source file reached.
func (h *Header) layoutSize() int {
	return headerFullSize
}

// writeInto serializes the header into dst[0:headerFullSize]. gd3Offset,
// dataAbsoluteOffset, loopAbsoluteOffset and extraHeaderAbsoluteOffset
// are the absolute placements computed by the document layout pass, not
// carried over from a parsed value.
func (h *Header) writeInto(dst []byte, gd3Offset, dataAbsoluteOffset, loopAbsoluteOffset uint32, extraHeaderAbsoluteOffset uint32, hasExtraHeader bool) {
	copy(dst[0:4], identVgm)
	binutil.PutU32LE(dst, 0x08, h.Version)
	if gd3Offset != 0 {
		binutil.PutU32LE(dst, 0x14, gd3Offset-0x14)
	}
	binutil.PutU32LE(dst, 0x18, h.TotalSamples)
	if h.HasLoop {
		binutil.PutU32LE(dst, 0x1C, loopAbsoluteOffset-0x1C)
	}
	binutil.PutU32LE(dst, 0x20, h.LoopSamples)
	binutil.PutU32LE(dst, 0x24, h.Rate)
	binutil.PutU32LE(dst, 0x34, dataAbsoluteOffset-0x34)

	dst[0x7C] = byte(h.VolumeModifier)
	dst[0x7E] = byte(h.LoopBase)
	dst[0x7F] = h.LoopModifier

	if hasExtraHeader {
		binutil.PutU32LE(dst, 0xBC, extraHeaderAbsoluteOffset-0xBC)
	}

	for kind, raw := range h.clocks {
		off := headerFieldOffset[kind]
		if off == 0 {
			continue
		}
		binutil.PutU32LE(dst, off, raw)
	}
}

// EqualIgnoringPlacement reports whether h and other describe the same
// logical header, disregarding the GD3 and data offset fields which
// are placement artifacts of a particular serialization rather than
// content. An absent chip clock compares equal to a present zero one,
// since the serializer writes every clock slot and a re-parse reads the
// unset ones back as zero.
func (h *Header) EqualIgnoringPlacement(other *Header) bool {
	if h == nil || other == nil {
		return h == other
	}
	if h.Version != other.Version ||
		h.TotalSamples != other.TotalSamples ||
		h.LoopSamples != other.LoopSamples ||
		h.HasLoop != other.HasLoop ||
		h.Rate != other.Rate ||
		h.VolumeModifier != other.VolumeModifier ||
		h.LoopBase != other.LoopBase ||
		h.LoopModifier != other.LoopModifier {
		return false
	}
	for k := ChipKind(0); k < chipKindCount; k++ {
		if h.clocks[k] != other.clocks[k] {
			return false
		}
	}
	return true
}

// ExtraHeader carries the optional per-chip clock and volume overrides
// introduced in format version 1.70, used when a single log drives more
// chip instances than the fixed header's clock table allows, or needs
// a non-default channel volume balance.
type ExtraHeader struct {
	ClockOverrides  map[ChipKind]uint32
	VolumeOverrides map[ChipKind]uint16
}

// extraHeaderChipOrder is a second, independent numbering of chip kinds
// used only within the extra header's chip-clock and chip-volume
// entries, matching the format's own practice of not reusing the main
// header's field offsets as IDs.
var extraHeaderChipOrder = []ChipKind{
	ChipSN76489, ChipYM2413, ChipYM2612, ChipYM2151, ChipSegaPCM,
	ChipRF5C68, ChipYM2203, ChipYM2608, ChipYM2610, ChipYM3812,
	ChipYM3526, ChipY8950, ChipYMF262, ChipYMF278B, ChipYMF271,
	ChipYMZ280B, ChipRF5C164, ChipPWM, ChipAY8910, ChipGameBoyDMG,
	ChipNESAPU, ChipMultiPCM, ChipUPD7759, ChipOKIM6258, ChipOKIM6295,
	ChipK051649, ChipK054539, ChipHuC6280, ChipC140, ChipK053260,
	ChipPokey, ChipQSound, ChipSCSP, ChipWonderSwan, ChipVSU,
	ChipSAA1099, ChipES5503, ChipES5506, ChipX1010, ChipC352, ChipGA20,
}

func chipIDFromKind(kind ChipKind) (byte, bool) {
	for i, k := range extraHeaderChipOrder {
		if k == kind {
			return byte(i), true
		}
	}
	return 0, false
}

func chipKindFromID(id byte) (ChipKind, bool) {
	if int(id) >= len(extraHeaderChipOrder) {
		return 0, false
	}
	return extraHeaderChipOrder[id], true
}

func parseExtraHeader(data []byte) (*ExtraHeader, error) {
	if len(data) < 4 {
		return nil, &vgmerr.HeaderTooShort{Section: "extra header"}
	}
	headerSize, err := binutil.ReadU32LE(data, 0)
	if err != nil {
		return nil, err
	}
	eh := &ExtraHeader{
		ClockOverrides:  make(map[ChipKind]uint32),
		VolumeOverrides: make(map[ChipKind]uint16),
	}
	if headerSize < 8 {
		return eh, nil
	}
	clockOff, _ := binutil.ReadU32LE(data, 4)
	volOff, _ := binutil.ReadU32LE(data, 8)

	if clockOff != 0 {
		base := 4 + int(clockOff)
		if base < len(data) {
			count := int(data[base])
			pos := base + 1
			for i := 0; i < count && pos+5 <= len(data); i++ {
				id := data[pos]
				raw, _ := binutil.ReadU32LE(data, pos+1)
				if kind, ok := chipKindFromID(id); ok {
					eh.ClockOverrides[kind] = raw
				}
				pos += 5
			}
		}
	}
	if volOff != 0 {
		base := 8 + int(volOff)
		if base < len(data) {
			count := int(data[base])
			pos := base + 1
			for i := 0; i < count && pos+4 <= len(data); i++ {
				id := data[pos]
				flags := data[pos+1]
				_ = flags
				vol, _ := binutil.ReadU16LE(data, pos+2)
				if kind, ok := chipKindFromID(id); ok {
					eh.VolumeOverrides[kind] = vol
				}
				pos += 4
			}
		}
	}
	return eh, nil
}

// Bytes serializes the extra header into its own self-contained block,
// starting with its own length-prefixed size field.
func (eh *ExtraHeader) Bytes() []byte {
	if eh == nil || (len(eh.ClockOverrides) == 0 && len(eh.VolumeOverrides) == 0) {
		return nil
	}
	var clockEntries, volEntries []byte
	for _, kind := range extraHeaderChipOrder {
		if raw, ok := eh.ClockOverrides[kind]; ok {
			id, _ := chipIDFromKind(kind)
			var b [5]byte
			b[0] = id
			binutil.PutU32LE(b[:], 1, raw)
			clockEntries = append(clockEntries, b[:]...)
		}
	}
	for _, kind := range extraHeaderChipOrder {
		if vol, ok := eh.VolumeOverrides[kind]; ok {
			id, _ := chipIDFromKind(kind)
			var b [4]byte
			b[0] = id
			b[1] = 0
			binutil.PutU16LE(b[:], 2, vol)
			volEntries = append(volEntries, b[:]...)
		}
	}

	// Layout: [headerSize u32][clockOff u32][volOff u32][clock table][vol table]
	clockTableOff := 12
	clockOff := uint32(clockTableOff - 4) // relative to the clockOff field itself, i.e. offset 4
	volOff := uint32(clockTableOff + 1 + len(clockEntries) - 8)

	out := make([]byte, clockTableOff+1+len(clockEntries)+1+len(volEntries))
	binutil.PutU32LE(out, 4, clockOff)
	binutil.PutU32LE(out, 8, volOff)
	out[clockTableOff] = byte(len(clockEntries) / 5)
	copy(out[clockTableOff+1:], clockEntries)
	volTableOff := clockTableOff + 1 + len(clockEntries)
	out[volTableOff] = byte(len(volEntries) / 4)
	copy(out[volTableOff+1:], volEntries)
	binutil.PutU32LE(out, 0, uint32(len(out)))
	return out
}
