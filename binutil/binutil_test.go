package binutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/intuitionamiga/soundlog/vgmerr"
)

func TestSlice_OutOfRange(t *testing.T) {
	_, err := Slice([]byte{1, 2, 3}, 2, 5)
	require.Error(t, err)
	var oor *vgmerr.OffsetOutOfRange
	require.ErrorAs(t, err, &oor)
}

func TestSlice_Exact(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	got, err := Slice(data, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, got)
}

func TestReadU16LE(t *testing.T) {
	v, err := ReadU16LE([]byte{0x34, 0x12}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

func TestReadU32LE(t *testing.T) {
	v, err := ReadU32LE([]byte{0x78, 0x56, 0x34, 0x12}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)
}

func TestReadFixedString_TrimsPaddingAndNUL(t *testing.T) {
	data := append([]byte("hello"), 0, 0, ' ', ' ')
	s, err := ReadFixedString(data, 0, len(data))
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestPutAndReadRoundTrip_U16(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint16().Draw(t, "v")
		buf := make([]byte, 2)
		PutU16LE(buf, 0, v)
		got, err := ReadU16LE(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	})
}

func TestPutAndReadRoundTrip_U32(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint32().Draw(t, "v")
		buf := make([]byte, 4)
		PutU32LE(buf, 0, v)
		got, err := ReadU32LE(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	})
}

func TestSlice_NegativeOffset(t *testing.T) {
	_, err := Slice([]byte{1, 2, 3}, -1, 1)
	require.Error(t, err)
}
