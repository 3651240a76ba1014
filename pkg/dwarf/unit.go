package dwarf

import (
	"github.com/theIDinside/mdb/pkg/bytereader"
	"github.com/theIDinside/mdb/pkg/mdberr"
)

// UnitHeader is a Compilation Unit header: initial-length, version,
// optional unit-type (v5 only), pointer width, abbreviation offset, plus
// the absolute byte offset this unit's header began at and its encoding.
type UnitHeader struct {
	// Offset is the absolute offset into .debug_info at which this
	// header begins -- the value pubnames header_offset entries refer to.
	Offset int
	// HeaderLen is the number of bytes the header itself occupies
	// (initial length field through abbreviation offset), so callers can
	// compute the offset of the first DIE as Offset + HeaderLen.
	HeaderLen int

	InitialLength   bytereader.InitialLength
	Version         uint16
	UnitType        uint8 // only meaningful when Version >= 5
	AddressSize     int
	AbbrevOffset    uint64
}

// Encoding derives the (pointer_width, format, version) triple used to
// interpret this unit's attribute forms.
func (u UnitHeader) Encoding() Encoding {
	return Encoding{AddressSize: u.AddressSize, Format: u.InitialLength.Format, Version: u.Version}
}

// Span returns the total byte span of this unit within .debug_info,
// including the initial-length field itself: initial_length_value +
// size_of(length_field) (4 for DWARF32, 12 for DWARF64).
func (u UnitHeader) Span() int {
	lengthFieldSize := 4
	if u.InitialLength.Format == bytereader.DWARF64 {
		lengthFieldSize = 12
	}
	return int(u.InitialLength.Length) + lengthFieldSize
}

// NextOffset returns the absolute offset in .debug_info the next unit
// begins at.
func (u UnitHeader) NextOffset() int { return u.Offset + u.Span() }

// ParseUnitHeader reads one Compilation Unit header from debugInfo starting
// at offset.
func ParseUnitHeader(debugInfo []byte, offset int) (UnitHeader, error) {
	r := bytereader.New(debugInfo, 0)
	if err := r.Seek(offset); err != nil {
		return UnitHeader{}, err
	}

	u := UnitHeader{Offset: offset}

	il, err := r.ReadInitialLength()
	if err != nil {
		return UnitHeader{}, err
	}
	u.InitialLength = il

	version, err := r.ReadU16()
	if err != nil {
		return UnitHeader{}, err
	}
	u.Version = version

	if version >= 5 {
		unitType, err := r.ReadU8()
		if err != nil {
			return UnitHeader{}, err
		}
		u.UnitType = unitType
		addrSize, err := r.ReadU8()
		if err != nil {
			return UnitHeader{}, err
		}
		u.AddressSize = int(addrSize)
		abbrevOff, err := r.ReadOffset(il.Format)
		if err != nil {
			return UnitHeader{}, err
		}
		u.AbbrevOffset = abbrevOff
	} else {
		abbrevOff, err := r.ReadOffset(il.Format)
		if err != nil {
			return UnitHeader{}, err
		}
		u.AbbrevOffset = abbrevOff
		addrSize, err := r.ReadU8()
		if err != nil {
			return UnitHeader{}, err
		}
		u.AddressSize = int(addrSize)
	}

	if u.AddressSize != 4 && u.AddressSize != 8 {
		return UnitHeader{}, mdberr.WithSize(mdberr.ErroneousAddressSize, u.AddressSize)
	}

	u.HeaderLen = r.Pos() - offset
	return u, nil
}

// UnitIterator lazily iterates every Compilation Unit header in debugInfo,
// stepping by each unit's Span() so every unit is visited exactly once and
// iteration terminates exactly at section end (spec.md §8 round-trip
// property).
type UnitIterator struct {
	debugInfo []byte
	offset    int
}

// NewUnitIterator constructs an iterator over the whole of debugInfo.
func NewUnitIterator(debugInfo []byte) *UnitIterator {
	return &UnitIterator{debugInfo: debugInfo}
}

// Next returns the next Compilation Unit header, or ok=false once the
// section is exhausted.
func (it *UnitIterator) Next() (UnitHeader, bool, error) {
	if it.offset >= len(it.debugInfo) {
		return UnitHeader{}, false, nil
	}
	u, err := ParseUnitHeader(it.debugInfo, it.offset)
	if err != nil {
		return UnitHeader{}, false, err
	}
	it.offset = u.NextOffset()
	return u, true, nil
}
