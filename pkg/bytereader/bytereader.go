// Package bytereader provides a bounded, position-advancing view over a
// byte slice plus decoders for the fixed-width integers, LEB128 values,
// null-terminated strings, and the DWARF "initial length" field that every
// higher-level parser in mdb is built from.
//
// Everything here borrows into the slice it was constructed with; readers
// never copy section data. The byte order is always little-endian: mdb only
// ever targets ELF LSB images on x86-64.
package bytereader

import (
	"unicode/utf8"

	"github.com/theIDinside/mdb/pkg/leb128"
	"github.com/theIDinside/mdb/pkg/mdberr"
)

// Format distinguishes the two DWARF intra-section offset widths. It is a
// property of a reader's enclosing compilation unit, threaded explicitly
// through every call that needs it -- never held in a package-level
// variable (see SPEC_FULL.md §4.1 / §9 on the global-mutable-format
// anti-pattern).
type Format int

const (
	DWARF32 Format = iota
	DWARF64
)

// OffsetSize returns the number of bytes used to encode a section offset in
// this format: 4 for DWARF32, 8 for DWARF64.
func (f Format) OffsetSize() int {
	if f == DWARF64 {
		return 8
	}
	return 4
}

// InitialLength is the decoded value of a DWARF "initial length" field: a
// length plus the format it selects for the remainder of the unit.
type InitialLength struct {
	Format Format
	Length uint64
}

// Reader is a position-advancing cursor over a borrowed byte slice.
type Reader struct {
	data []byte
	pos  int
	// base is the absolute offset of data[0] within the enclosing section,
	// used so callers can record absolute positions (e.g. a compilation
	// unit's header offset) without threading an extra parameter through
	// every call.
	base int
}

// New constructs a Reader over data. base is the absolute byte offset of
// data[0] within whatever larger section this slice was sliced from; pass 0
// when data already starts at the section's beginning.
func New(data []byte, base int) *Reader {
	return &Reader{data: data, base: base}
}

// Pos returns the reader's current position relative to the start of data.
func (r *Reader) Pos() int { return r.pos }

// AbsPos returns the reader's current position as an absolute offset within
// the enclosing section (base + Pos()).
func (r *Reader) AbsPos() int { return r.base + r.pos }

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Remaining returns a view of the unread portion of the buffer.
func (r *Reader) Remaining() []byte { return r.data[r.pos:] }

// Seek repositions the cursor to an absolute offset relative to the start
// of data. Seeking past the end of data is an error; seeking to exactly
// len(data) (EOF) is allowed.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return mdberr.AtPos(mdberr.ReaderOutOfBounds, r.base+pos)
	}
	r.pos = pos
	return nil
}

// ReadSlice returns a borrowed view of the next n bytes and advances the
// cursor past them.
func (r *Reader) ReadSlice(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, mdberr.AtPos(mdberr.EOFNotExpected, r.AbsPos())
	}
	s := r.data[r.pos : r.pos+n]
	r.pos += n
	return s, nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadSlice(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian 16-bit unsigned integer.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadSlice(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadU32 reads a little-endian 32-bit unsigned integer.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadSlice(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadU64 reads a little-endian 64-bit unsigned integer.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadSlice(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadUint reads a little-endian unsigned integer of the given byte width
// (1, 2, 4, or 8), used for DW_FORM_data{1,2,4,8} and similar fixed-width
// forms.
func (r *Reader) ReadUint(width int) (uint64, error) {
	switch width {
	case 1:
		v, err := r.ReadU8()
		return uint64(v), err
	case 2:
		v, err := r.ReadU16()
		return uint64(v), err
	case 4:
		v, err := r.ReadU32()
		return uint64(v), err
	case 8:
		return r.ReadU64()
	default:
		return 0, mdberr.WithSize(mdberr.ErroneousAddressSize, width)
	}
}

// ReadULEB128 reads an unsigned LEB128 value and advances past it.
func (r *Reader) ReadULEB128() (uint64, error) {
	v, n, err := leb128.DecodeUnsigned(r.data[r.pos:], r.AbsPos())
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadILEB128 reads a signed LEB128 value and advances past it.
func (r *Reader) ReadILEB128() (int64, error) {
	v, n, err := leb128.DecodeSigned(r.data[r.pos:], r.AbsPos())
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadStr reads the longest UTF-8 prefix up to (but not including) a null
// terminator, advancing past the terminator.
func (r *Reader) ReadStr() (string, error) {
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != 0 {
		r.pos++
	}
	if r.pos >= len(r.data) {
		r.pos = start
		return "", mdberr.AtPos(mdberr.EOFNotExpected, r.AbsPos())
	}
	raw := r.data[start:r.pos]
	r.pos++ // consume the terminator
	if !utf8.Valid(raw) {
		validUpTo := 0
		for validUpTo < len(raw) {
			rn, size := utf8.DecodeRune(raw[validUpTo:])
			if rn == utf8.RuneError && size <= 1 {
				break
			}
			validUpTo += size
		}
		return "", mdberr.UTF8(validUpTo, len(raw)-validUpTo)
	}
	return string(raw), nil
}

// ReadInitialLength reads a DWARF "initial length" field: four bytes, and if
// those equal 0xFFFFFFFF, eight more bytes holding the true length in
// DWARF64 format.
func (r *Reader) ReadInitialLength() (InitialLength, error) {
	v, err := r.ReadU32()
	if err != nil {
		return InitialLength{}, err
	}
	if v != 0xFFFFFFFF {
		return InitialLength{Format: DWARF32, Length: uint64(v)}, nil
	}
	v64, err := r.ReadU64()
	if err != nil {
		return InitialLength{}, err
	}
	return InitialLength{Format: DWARF64, Length: v64}, nil
}

// ReadOffset reads a section offset sized per format (4 bytes for DWARF32,
// 8 for DWARF64). The format is supplied by the caller -- it is a property
// of the enclosing compilation unit's encoding, never of the reader itself.
func (r *Reader) ReadOffset(format Format) (uint64, error) {
	return r.ReadUint(format.OffsetSize())
}

// ReadAddress reads a target address of the given pointer width (4 or 8
// bytes on the architectures mdb supports).
func (r *Reader) ReadAddress(addressSize int) (uint64, error) {
	if addressSize != 4 && addressSize != 8 {
		return 0, mdberr.WithSize(mdberr.ErroneousAddressSize, addressSize)
	}
	return r.ReadUint(addressSize)
}

// View returns a non-consuming random-access reader over the same
// underlying data. pos (absolute to data, not to base) is only
// bounds-checked; the View's read offsets count from the start of data.
func (r *Reader) View(pos int) (*View, error) {
	if pos < 0 || pos > len(r.data) {
		return nil, mdberr.AtPos(mdberr.ReaderOutOfBounds, r.base+pos)
	}
	return &View{data: r.data, base: r.base}, nil
}

// View is a non-advancing random-access reader: every read takes an
// explicit offset and never mutates reader state. Used where callers need
// to peek without disturbing a Reader's cursor (e.g. pubnames header
// rescans).
type View struct {
	data []byte
	base int
}

// ReadU8At returns the byte at offset.
func (v *View) ReadU8At(offset int) (uint8, error) {
	if offset < 0 || offset >= len(v.data) {
		return 0, mdberr.AtPos(mdberr.ReaderOutOfBounds, v.base+offset)
	}
	return v.data[offset], nil
}

// SliceAt returns a borrowed view of n bytes starting at offset.
func (v *View) SliceAt(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > len(v.data) {
		return nil, mdberr.AtPos(mdberr.ReaderOutOfBounds, v.base+offset)
	}
	return v.data[offset : offset+n], nil
}

// ReaderAt returns an advancing Reader positioned at offset, sharing the
// same underlying data.
func (v *View) ReaderAt(offset int) (*Reader, error) {
	if offset < 0 || offset > len(v.data) {
		return nil, mdberr.AtPos(mdberr.ReaderOutOfBounds, v.base+offset)
	}
	return &Reader{data: v.data, pos: offset, base: v.base}, nil
}
