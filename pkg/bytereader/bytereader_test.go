package bytereader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInitialLengthDwarf32(t *testing.T) {
	r := New([]byte{0x21, 0x00, 0x00, 0x00, 0x04, 0x00}, 0)
	il, err := r.ReadInitialLength()
	require.NoError(t, err)
	assert.Equal(t, DWARF32, il.Format)
	assert.EqualValues(t, 0x21, il.Length)
	assert.Equal(t, 4, r.Pos())
}

func TestReadInitialLengthDwarf64(t *testing.T) {
	data := []byte{
		0xFF, 0xFF, 0xFF, 0xFF,
		0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x04, 0x00,
	}
	r := New(data, 0)
	il, err := r.ReadInitialLength()
	require.NoError(t, err)
	assert.Equal(t, DWARF64, il.Format)
	assert.EqualValues(t, 0x40, il.Length)
	assert.Equal(t, 12, r.Pos())
}

func TestOffsetSize(t *testing.T) {
	assert.Equal(t, 4, DWARF32.OffsetSize())
	assert.Equal(t, 8, DWARF64.OffsetSize())
}

func TestReadFixedWidthIntegers(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, 0)
	u8, err := r.ReadU8()
	require.NoError(t, err)
	assert.EqualValues(t, 0x01, u8)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	assert.EqualValues(t, 0x0302, u16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	assert.EqualValues(t, 0x07060504, u32)
}

func TestReadU64LittleEndian(t *testing.T) {
	r := New([]byte{1, 0, 0, 0, 0, 0, 0, 0}, 0)
	v, err := r.ReadU64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestReadSliceOutOfBounds(t *testing.T) {
	r := New([]byte{1, 2, 3}, 0)
	_, err := r.ReadSlice(4)
	assert.Error(t, err)
}

func TestSeekOutOfBounds(t *testing.T) {
	r := New([]byte{1, 2, 3}, 0)
	assert.Error(t, r.Seek(-1))
	assert.Error(t, r.Seek(4))
	assert.NoError(t, r.Seek(3))
}

func TestReadStrStopsAtNulAndConsumesTerminator(t *testing.T) {
	r := New([]byte{'h', 'i', 0, 'x'}, 0)
	s, err := r.ReadStr()
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Equal(t, 3, r.Pos())
}

func TestReadStrMissingTerminatorIsError(t *testing.T) {
	r := New([]byte{'h', 'i'}, 0)
	_, err := r.ReadStr()
	assert.Error(t, err)
	assert.Equal(t, 0, r.Pos(), "position must be restored on error")
}

func TestReadULEB128AdvancesReader(t *testing.T) {
	r := New([]byte{0xE5, 0x8E, 0x26, 0xFF}, 0)
	v, err := r.ReadULEB128()
	require.NoError(t, err)
	assert.EqualValues(t, 624485, v)
	assert.Equal(t, 3, r.Pos())
}

func TestAbsPosUsesBase(t *testing.T) {
	r := New([]byte{1, 2, 3}, 100)
	r.Seek(2)
	assert.Equal(t, 102, r.AbsPos())
}

func TestViewReadsWithoutAdvancingReader(t *testing.T) {
	r := New([]byte{1, 2, 3, 4}, 0)
	r.Seek(2)
	v, err := r.View(0)
	require.NoError(t, err)
	b, err := v.ReadU8At(3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, b)
	assert.Equal(t, 2, r.Pos(), "View must not mutate the originating Reader's cursor")
}
