// Package vgmerr defines the closed set of error conditions produced
// while decoding a log: a short, inspectable taxonomy rather than
// opaque strings, so callers can distinguish "file is truncated" from
// "file is actively malformed" with errors.As.
package vgmerr

import "fmt"

// HeaderTooShort means the buffer ended before a mandatory header
// section could be read.
type HeaderTooShort struct {
	Section string
}

func (e *HeaderTooShort) Error() string {
	return fmt.Sprintf("header too short: missing %s", e.Section)
}

// InvalidIdent means a fixed four-byte magic did not match what was
// expected at that position.
type InvalidIdent struct {
	Want string
	Got  [4]byte
}

func (e *InvalidIdent) Error() string {
	return fmt.Sprintf("invalid identifier: want %q, got %q", e.Want, string(e.Got[:]))
}

// OffsetOutOfRange means a computed offset plus the bytes needed there
// exceeds the bytes actually available.
type OffsetOutOfRange struct {
	Offset, Needed, Available int
	Context                   string
}

func (e *OffsetOutOfRange) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("offset out of range: need %d bytes at %d, have %d", e.Needed, e.Offset, e.Available)
	}
	return fmt.Sprintf("offset out of range (%s): need %d bytes at %d, have %d", e.Context, e.Needed, e.Offset, e.Available)
}

// UnknownOpcode means the command stream contained a byte not present
// in the opcode table at the position where a command was expected to
// begin.
type UnknownOpcode struct {
	Opcode   byte
	Position int
}

func (e *UnknownOpcode) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02X at position %d", e.Opcode, e.Position)
}

// MalformedDataBlock means a data block's declared length did not fit
// the remaining bytes, or its type/flag byte was inconsistent.
type MalformedDataBlock struct {
	Reason string
}

func (e *MalformedDataBlock) Error() string {
	return fmt.Sprintf("malformed data block: %s", e.Reason)
}

// InvalidUTF16 means a GD3 string field contained a UTF-16 code unit
// sequence that could not be decoded (an unpaired surrogate).
type InvalidUTF16 struct {
	Detail string
}

func (e *InvalidUTF16) Error() string {
	return fmt.Sprintf("invalid utf-16 in gd3 field: %s", e.Detail)
}

// Other carries a condition that does not fit the other variants.
// Used sparingly; prefer adding a specific variant over reaching for
// this one.
type Other struct {
	Message string
}

func (e *Other) Error() string {
	return e.Message
}
