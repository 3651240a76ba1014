package dwarf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theIDinside/mdb/pkg/bytereader"
)

func TestReadDIEResolvesAttributesViaAbbrevTable(t *testing.T) {
	abbrev := []byte{
		0x01, 0x2e, 0x00, // code 1, DW_TAG_subprogram, no children
		byte(AttrName), byte(FormString),
		byte(AttrLowpc), byte(FormAddr),
		0x00, 0x00, // terminator
		0x00, // table end
	}
	table, err := ParseAbbrevTable(abbrev, 0)
	require.NoError(t, err)

	info := []byte{
		0x01, // abbrev code 1
	}
	info = append(info, []byte("main\x00")...)
	info = append(info, 0xF0, 0x11, 0x40, 0, 0, 0, 0, 0) // low_pc

	r := bytereader.New(info, 0)
	die, err := ReadDIE(r, table, Encoding{AddressSize: 8, Format: bytereader.DWARF32, Version: 4}, nil)
	require.NoError(t, err)

	name, ok := die.Name()
	require.True(t, ok)
	assert.Equal(t, "main", name)

	pc, ok := die.LowPC()
	require.True(t, ok)
	assert.EqualValues(t, 0x4011F0, pc)
}

func TestReadDIENullEntryHasNoTag(t *testing.T) {
	info := []byte{0x00}
	r := bytereader.New(info, 0)
	table := &AbbrevTable{}
	die, err := ReadDIE(r, table, Encoding{AddressSize: 8}, nil)
	require.NoError(t, err)
	assert.Equal(t, Tag(0), die.Tag)
	assert.Empty(t, die.Fields)
}

func TestReadDIEUnknownAbbrevCodeIsError(t *testing.T) {
	info := []byte{0x05}
	r := bytereader.New(info, 0)
	table := &AbbrevTable{}
	_, err := ReadDIE(r, table, Encoding{AddressSize: 8}, nil)
	assert.Error(t, err)
}
