// Package binutil provides bounds-checked primitives for reading and
// writing the little-endian binary layouts used throughout the log
// format: fixed-width integers, fixed and null-terminated byte strings,
// and raw slicing at an offset.
//
// Every reader here reports failure through the error taxonomy in
// package vgmerr rather than panicking, so that callers parsing
// attacker-controlled or truncated files can always recover a partial
// result instead of crashing.
package binutil

import (
	"encoding/binary"

	"github.com/intuitionamiga/soundlog/vgmerr"
)

// Slice returns data[offset : offset+length], failing with
// vgmerr.OffsetOutOfRange if the range does not fit within data.
func Slice(data []byte, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, &vgmerr.OffsetOutOfRange{Offset: offset, Needed: length, Available: len(data)}
	}
	end := offset + length
	if end > len(data) {
		return nil, &vgmerr.OffsetOutOfRange{Offset: offset, Needed: length, Available: len(data)}
	}
	return data[offset:end], nil
}

// ReadU8 reads a single byte at offset.
func ReadU8(data []byte, offset int) (uint8, error) {
	b, err := Slice(data, offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a 16-bit little-endian integer at offset.
func ReadU16LE(data []byte, offset int) (uint16, error) {
	b, err := Slice(data, offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32LE reads a 32-bit little-endian integer at offset.
func ReadU32LE(data []byte, offset int) (uint32, error) {
	b, err := Slice(data, offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFixedString reads length bytes at offset and trims trailing NUL
// and space padding, matching the teacher's parsePaddedString style of
// tolerant header string fields.
func ReadFixedString(data []byte, offset, length int) (string, error) {
	b, err := Slice(data, offset, length)
	if err != nil {
		return "", err
	}
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end]), nil
}

// PutU16LE writes a 16-bit little-endian integer into dst at offset.
// dst must already be large enough; callers pre-size buffers during
// the layout pass before patching offsets in.
func PutU16LE(dst []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(dst[offset:offset+2], v)
}

// PutU32LE writes a 32-bit little-endian integer into dst at offset.
func PutU32LE(dst []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(dst[offset:offset+4], v)
}
