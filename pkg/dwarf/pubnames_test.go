package dwarf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pubnamesSet builds one DWARF32 .debug_pubnames set: initial_length(4)
// version(2) debug_info_offset(4) debug_info_length(4), then (offset, name)
// pairs terminated by a zero offset.
func pubnamesSet(debugInfoOffset uint32, pairs []struct {
	offset uint32
	name   string
}) []byte {
	var body []byte
	body = append(body, 0x02, 0x00) // version 2
	body = append(body, byte(debugInfoOffset), byte(debugInfoOffset>>8), byte(debugInfoOffset>>16), byte(debugInfoOffset>>24))
	body = append(body, 0, 0, 0, 0) // debug_info_length, unused by the reader
	for _, p := range pairs {
		body = append(body, byte(p.offset), byte(p.offset>>8), byte(p.offset>>16), byte(p.offset>>24))
		body = append(body, []byte(p.name)...)
		body = append(body, 0)
	}
	body = append(body, 0, 0, 0, 0) // terminating zero offset

	length := uint32(len(body))
	var out []byte
	out = append(out, byte(length), byte(length>>8), byte(length>>16), byte(length>>24))
	out = append(out, body...)
	return out
}

func TestParsePubnamesLookup(t *testing.T) {
	data := pubnamesSet(0, []struct {
		offset uint32
		name   string
	}{
		{offset: 0x20, name: "main"},
		{offset: 0x50, name: "helper"},
	})

	pub, err := ParsePubnames(data)
	require.NoError(t, err)

	entry, ok := pub.Lookup("main")
	require.True(t, ok)
	assert.EqualValues(t, 0x20, entry.ResolveOffset())

	_, ok = pub.Lookup("doesnotexist")
	assert.False(t, ok)
}

func TestParsePubnamesMultipleSets(t *testing.T) {
	var data []byte
	data = append(data, pubnamesSet(0, []struct {
		offset uint32
		name   string
	}{{offset: 0x10, name: "a"}})...)
	data = append(data, pubnamesSet(0x100, []struct {
		offset uint32
		name   string
	}{{offset: 0x20, name: "b"}})...)

	pub, err := ParsePubnames(data)
	require.NoError(t, err)
	assert.Len(t, pub.Entries(), 2)

	b, ok := pub.Lookup("b")
	require.True(t, ok)
	assert.EqualValues(t, 0x100+0x20, b.ResolveOffset())
}
