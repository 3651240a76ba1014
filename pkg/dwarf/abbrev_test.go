package dwarf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAbbrevTableSingleEntry(t *testing.T) {
	// code=1, tag=DW_TAG_compile_unit(0x11), has_children=0,
	// then (DW_AT_name=0x03, DW_FORM_string=0x08), terminator (0,0),
	// terminator code 0 ends the table.
	data := []byte{
		0x01,       // code
		0x11,       // tag
		0x00,       // has_children
		0x03, 0x08, // attr, form
		0x00, 0x00, // attr/form terminator
		0x00, // table terminator
	}
	table, err := ParseAbbrevTable(data, 0)
	require.NoError(t, err)

	entry, ok := table.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, Tag(0x11), entry.Tag)
	assert.False(t, entry.HasChildren)
	require.Len(t, entry.Attrs, 1)
	assert.Equal(t, Attribute(0x03), entry.Attrs[0].Attr)
	assert.Equal(t, Form(0x08), entry.Attrs[0].Form)
}

func TestParseAbbrevTableNoCodeZeroKey(t *testing.T) {
	data := []byte{
		0x01, 0x11, 0x00, 0x00, 0x00,
		0x02, 0x24, 0x00, 0x00, 0x00,
		0x00,
	}
	table, err := ParseAbbrevTable(data, 0)
	require.NoError(t, err)

	_, ok := table.Lookup(0)
	assert.False(t, ok, "abbreviation code 0 terminates the table and must never be a stored key")

	_, ok = table.Lookup(1)
	assert.True(t, ok)
	_, ok = table.Lookup(2)
	assert.True(t, ok)
}

func TestParseAbbrevTableMultipleAttrs(t *testing.T) {
	data := []byte{
		0x05, 0x2e, 0x01, // code=5, tag=DW_TAG_subprogram, has_children=1
		0x03, 0x08, // name, string
		0x11, 0x01, // low_pc, addr
		0x12, 0x06, // high_pc, data4
		0x00, 0x00, // terminator
		0x00, // end of table
	}
	table, err := ParseAbbrevTable(data, 0)
	require.NoError(t, err)

	entry, ok := table.Lookup(5)
	require.True(t, ok)
	assert.True(t, entry.HasChildren)
	assert.Len(t, entry.Attrs, 3)
}

func TestParseAbbrevTableTruncatedIsError(t *testing.T) {
	data := []byte{0x01, 0x11}
	_, err := ParseAbbrevTable(data, 0)
	assert.Error(t, err)
}
