package leb128

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUnsignedVector(t *testing.T) {
	// DWARF v4 spec appendix C example: 624485 encodes as E5 8E 26.
	v, n, err := DecodeUnsigned([]byte{0xE5, 0x8E, 0x26}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 624485, v)
	assert.Equal(t, 3, n)
}

func TestDecodeSignedVector(t *testing.T) {
	// -123456 encodes as C0 BB 78 per the same appendix.
	v, n, err := DecodeSigned([]byte{0xC0, 0xBB, 0x78}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, -123456, v)
	assert.Equal(t, 3, n)
}

func TestUnsignedRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 127, 128, 129, 624485, 1 << 20, 1<<63 - 1, 1 << 62}
	for _, v := range values {
		buf := EncodeUnsigned(nil, v)
		assert.LessOrEqual(t, len(buf), 10)
		got, n, err := DecodeUnsigned(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, 64, -64, -65, 123456, -123456, 1<<62 - 1, -(1 << 62)}
	for _, v := range values {
		buf := EncodeSigned(nil, v)
		assert.LessOrEqual(t, len(buf), 10)
		got, n, err := DecodeSigned(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestDecodeUnsignedTruncatedIsError(t *testing.T) {
	// Continuation bit set on the final byte with no following byte.
	_, _, err := DecodeUnsigned([]byte{0x80}, 5)
	assert.Error(t, err)
}

func TestDecodeSignedTruncatedIsError(t *testing.T) {
	_, _, err := DecodeSigned([]byte{0x80}, 5)
	assert.Error(t, err)
}

func TestDecodeUnsignedEmptyIsError(t *testing.T) {
	_, _, err := DecodeUnsigned(nil, 0)
	assert.Error(t, err)
}
