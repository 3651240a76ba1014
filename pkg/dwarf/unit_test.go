package dwarf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theIDinside/mdb/pkg/bytereader"
)

// dwarf32UnitHeader builds a minimal DWARF v4 32-bit format compilation unit
// header: initial_length(4) version(2) abbrev_offset(4) address_size(1).
// The stated length covers everything after the initial-length field, i.e.
// version through the unit's DIEs; here just the header fields that follow.
func dwarf32UnitHeader(length uint32, version uint16, abbrevOff uint32, addrSize uint8) []byte {
	b := make([]byte, 0, 11)
	b = append(b, byte(length), byte(length>>8), byte(length>>16), byte(length>>24))
	b = append(b, byte(version), byte(version>>8))
	b = append(b, byte(abbrevOff), byte(abbrevOff>>8), byte(abbrevOff>>16), byte(abbrevOff>>24))
	b = append(b, addrSize)
	return b
}

func TestParseUnitHeaderDwarf32V4(t *testing.T) {
	data := dwarf32UnitHeader(7, 4, 0, 8) // length covers version+abbrev_off+addr_size = 2+4+1 = 7
	u, err := ParseUnitHeader(data, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, int(u.Version))
	assert.Equal(t, 8, u.AddressSize)
	assert.Equal(t, 0, u.Offset)
	assert.Equal(t, 11, u.HeaderLen)
	assert.Equal(t, 11, u.Span(), "span must equal length(7) + 4-byte initial-length field")
	assert.Equal(t, 11, u.NextOffset())
}

func TestParseUnitHeaderRejectsBadAddressSize(t *testing.T) {
	data := dwarf32UnitHeader(7, 4, 0, 3)
	_, err := ParseUnitHeader(data, 0)
	assert.Error(t, err)
}

func TestUnitIteratorVisitsEveryUnitExactlyOnce(t *testing.T) {
	var section []byte
	section = append(section, dwarf32UnitHeader(7, 4, 0, 8)...)
	section = append(section, dwarf32UnitHeader(7, 4, 0, 8)...)
	section = append(section, dwarf32UnitHeader(7, 4, 0, 8)...)

	it := NewUnitIterator(section)
	count := 0
	var offsets []int
	for {
		u, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		offsets = append(offsets, u.Offset)
		count++
		if count > 10 {
			t.Fatal("iterator did not terminate")
		}
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, []int{0, 11, 22}, offsets)
}

func TestUnitIteratorTerminatesExactlyAtSectionEnd(t *testing.T) {
	section := dwarf32UnitHeader(7, 4, 0, 8)
	it := NewUnitIterator(section)

	_, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnitHeaderSpanDwarf64(t *testing.T) {
	u := UnitHeader{InitialLength: bytereader.InitialLength{Format: bytereader.DWARF64, Length: 0x40}}
	assert.Equal(t, 0x40+12, u.Span(), "DWARF64 span adds the 12-byte initial-length field")
}
