// Package gd3 implements the GD3 metadata block: eleven UTF-16LE,
// NUL-terminated text fields describing a log's track, game, system,
// author, release date, ripper/converter credit, and free-form notes.
//
// Parsing is tolerant of mid-stream truncation: a tag whose bytes run
// off the end of the buffer, and every field after it, decode as
// absent rather than failing the whole block.
package gd3

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/intuitionamiga/soundlog/vgmerr"
)

const ident = "Gd3 "

// Metadata holds the eleven GD3 text fields. A nil pointer means the
// field is absent (either never written, or truncated away), which is
// distinct from a present-but-empty string.
type Metadata struct {
	Version uint32

	TrackNameEN *string
	TrackNameJP *string
	GameNameEN  *string
	GameNameJP  *string
	SystemNameEN *string
	SystemNameJP *string
	AuthorEN    *string
	AuthorJP    *string
	ReleaseDate *string
	Converter   *string
	Notes       *string
}

// fieldPtrs returns pointers to the eleven fields in on-wire order.
func (m *Metadata) fieldPtrs() [11]**string {
	return [11]**string{
		&m.TrackNameEN, &m.TrackNameJP,
		&m.GameNameEN, &m.GameNameJP,
		&m.SystemNameEN, &m.SystemNameJP,
		&m.AuthorEN, &m.AuthorJP,
		&m.ReleaseDate, &m.Converter, &m.Notes,
	}
}

// Str returns a pointer to s, a convenience for populating Metadata
// fields with literals.
func Str(s string) *string { return &s }

// Parse decodes a GD3 block starting at the "Gd3 " identifier. data
// must begin exactly at the identifier; callers locate it via the VGM
// header's GD3 offset field.
func Parse(data []byte) (*Metadata, error) {
	if len(data) < 12 {
		return nil, &vgmerr.HeaderTooShort{Section: "gd3 header"}
	}
	var got [4]byte
	copy(got[:], data[0:4])
	if string(got[:]) != ident {
		return nil, &vgmerr.InvalidIdent{Want: ident, Got: got}
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	length := binary.LittleEndian.Uint32(data[8:12])

	body := data[12:]
	if uint64(length) < uint64(len(body)) {
		body = body[:length]
	}

	m := &Metadata{Version: version}
	ptrs := m.fieldPtrs()

	pos := 0
	for i := 0; i < len(ptrs); i++ {
		s, next, ok := readUTF16Field(body, pos)
		if !ok {
			// Truncated mid-field: this field and everything after it
			// stay absent rather than erroring the whole block.
			break
		}
		*ptrs[i] = s
		pos = next
	}
	return m, nil
}

// readUTF16Field reads one NUL-terminated UTF-16LE string starting at
// pos. ok is false if the terminator was never found before body ran
// out, meaning the field was truncated.
func readUTF16Field(body []byte, pos int) (s *string, next int, ok bool) {
	var units []uint16
	i := pos
	for {
		if i+2 > len(body) {
			return nil, 0, false
		}
		u := binary.LittleEndian.Uint16(body[i : i+2])
		i += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	if len(units) == 0 {
		return nil, i, true
	}
	decoded := string(utf16.Decode(units))
	return &decoded, i, true
}

// Bytes serializes m back into a "Gd3 " block, including the leading
// identifier, version, and length fields. The length field is computed
// from the encoded body, never carried over from a parsed value.
func (m *Metadata) Bytes() []byte {
	var body []byte
	for _, p := range m.fieldPtrs() {
		body = appendUTF16Field(body, *p)
	}

	out := make([]byte, 12+len(body))
	copy(out[0:4], ident)
	binary.LittleEndian.PutUint32(out[4:8], m.Version)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(body)))
	copy(out[12:], body)
	return out
}

func appendUTF16Field(dst []byte, s *string) []byte {
	if s == nil {
		dst = append(dst, 0, 0)
		return dst
	}
	units := utf16.Encode([]rune(*s))
	for _, u := range units {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], u)
		dst = append(dst, b[:]...)
	}
	dst = append(dst, 0, 0)
	return dst
}

// Equal reports whether m and other carry the same field values,
// independent of where either was laid out in a file.
func (m *Metadata) Equal(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Version != other.Version {
		return false
	}
	a, b := m.fieldPtrs(), other.fieldPtrs()
	for i := range a {
		if !strPtrEqual(*a[i], *b[i]) {
			return false
		}
	}
	return true
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// String implements a compact diagnostic form, used by the CLI's info
// subcommand.
func (m *Metadata) String() string {
	if m == nil {
		return "<no gd3>"
	}
	track := "?"
	if m.TrackNameEN != nil {
		track = *m.TrackNameEN
	}
	game := "?"
	if m.GameNameEN != nil {
		game = *m.GameNameEN
	}
	return fmt.Sprintf("%q from %q", track, game)
}
