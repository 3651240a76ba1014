// Package leb128 implements the variable-length integer encoding used
// throughout DWARF (DWARF v4 §7.6): little-endian base-128, unsigned and
// signed.
package leb128

import "github.com/theIDinside/mdb/pkg/mdberr"

// maxShift bounds the number of 7-bit groups a 64-bit value can require;
// a stream that has not terminated by then is malformed.
const maxShift = 63

// DecodeUnsigned reads an unsigned LEB128 value from data starting at
// offset 0 and returns the value and the number of bytes consumed. pos is
// used only to annotate a returned error with an absolute byte offset.
func DecodeUnsigned(data []byte, pos int) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(data); i++ {
		b := data[i]
		if shift >= maxShift && (b&0x7f) > 1 {
			return 0, 0, mdberr.AtPos(mdberr.BadUnsignedLEB128Encoding, pos)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
		if shift > maxShift {
			return 0, 0, mdberr.AtPos(mdberr.BadUnsignedLEB128Encoding, pos)
		}
	}
	return 0, 0, mdberr.AtPos(mdberr.BadUnsignedLEB128Encoding, pos)
}

// DecodeSigned reads a signed LEB128 value from data starting at offset 0
// and returns the value and the number of bytes consumed.
func DecodeSigned(data []byte, pos int) (int64, int, error) {
	var result int64
	var shift uint
	var b byte
	i := 0
	for ; i < len(data); i++ {
		b = data[i]
		if shift > maxShift {
			return 0, 0, mdberr.AtPos(mdberr.BadSignedLEB128Encoding, pos)
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if i == len(data) {
		return 0, 0, mdberr.AtPos(mdberr.BadSignedLEB128Encoding, pos)
	}
	if shift < 64 && (b&0x40) != 0 {
		result |= -(int64(1) << shift)
	}
	return result, i + 1, nil
}

// EncodeUnsigned appends the ULEB128 encoding of v to dst and returns the
// extended slice. Used only by tests to exercise the round-trip property.
func EncodeUnsigned(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// EncodeSigned appends the SLEB128 encoding of v to dst and returns the
// extended slice. Used only by tests to exercise the round-trip property.
func EncodeSigned(dst []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
