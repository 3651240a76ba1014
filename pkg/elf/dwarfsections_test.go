package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDwarfSectionIDKnownNames(t *testing.T) {
	id, err := ParseDwarfSectionID(".debug_info")
	require.NoError(t, err)
	assert.Equal(t, DebugInfo, id)
	assert.Equal(t, ".debug_info", id.Name())
}

func TestParseDwarfSectionIDUnrecognized(t *testing.T) {
	_, err := ParseDwarfSectionID(".text")
	assert.Error(t, err)
}

func TestDwarfSectionIDRoundTripsThroughName(t *testing.T) {
	for _, id := range []DwarfSectionID{DebugInfo, DebugAbbrev, DebugLine, DebugStr, DebugPubnames} {
		got, err := ParseDwarfSectionID(id.Name())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}
