package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMemory is a minimal Poker backed by a plain map, standing in for a
// tracee's address space in tests.
type fakeMemory struct {
	words map[uint64]uint64
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{words: make(map[uint64]uint64)}
}

func (m *fakeMemory) PeekWord(addr uint64) (uint64, error) {
	return m.words[addr], nil
}

func (m *fakeMemory) PokeWord(addr uint64, word uint64) error {
	m.words[addr] = word
	return nil
}

func TestPlaceWritesTrapByteAndSavesOriginal(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x1000] = 0x1122334455667788

	store := NewStore(Persistent)
	bp, err := store.Place(mem, 42, 0x1000)
	require.NoError(t, err)

	assert.EqualValues(t, 0x88, bp.OriginalByte)
	assert.True(t, bp.Enabled)
	assert.EqualValues(t, 0xCC, mem.words[0x1000]&0xFF)
	assert.EqualValues(t, 0x1122334455667700, mem.words[0x1000]&^0xFF)
}

func TestEnableDisableRoundTrip(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x2000] = 0xAABBCCDDEEFF0102

	store := NewStore(Persistent)
	bp, err := store.Place(mem, 1, 0x2000)
	require.NoError(t, err)
	assert.EqualValues(t, 0xCC, mem.words[0x2000]&0xFF)

	require.NoError(t, store.Disable(mem, bp))
	assert.False(t, bp.Enabled)
	assert.EqualValues(t, bp.OriginalByte, mem.words[0x2000]&0xFF)

	require.NoError(t, store.Enable(mem, bp))
	assert.True(t, bp.Enabled)
	assert.EqualValues(t, 0xCC, mem.words[0x2000]&0xFF)
}

func TestDisableIsIdempotent(t *testing.T) {
	mem := newFakeMemory()
	store := NewStore(Persistent)
	bp, err := store.Place(mem, 1, 0x3000)
	require.NoError(t, err)

	require.NoError(t, store.Disable(mem, bp))
	word := mem.words[0x3000]
	require.NoError(t, store.Disable(mem, bp))
	assert.Equal(t, word, mem.words[0x3000], "disabling an already-disabled breakpoint must not touch memory again")
}

func TestAnyEnabledAt(t *testing.T) {
	mem := newFakeMemory()
	store := NewStore(Persistent)
	bp1, err := store.Place(mem, 1, 0x4000)
	require.NoError(t, err)
	assert.True(t, store.AnyEnabledAt(0x4000))

	require.NoError(t, store.Disable(mem, bp1))
	assert.False(t, store.AnyEnabledAt(0x4000))

	_, err = store.Place(mem, 2, 0x4000)
	require.NoError(t, err)
	assert.True(t, store.AnyEnabledAt(0x4000), "a second breakpoint at the same address re-enables the location")
}

func TestRemoveRestoresOriginalByteAndDeletesRecord(t *testing.T) {
	mem := newFakeMemory()
	mem.words[0x5000] = 0x00000000000000AB

	store := NewStore(Persistent)
	bp, err := store.Place(mem, 1, 0x5000)
	require.NoError(t, err)

	require.NoError(t, store.Remove(mem, bp.ID))
	assert.EqualValues(t, 0xAB, mem.words[0x5000]&0xFF)
	assert.Empty(t, store.At(0x5000))
}

func TestRemoveUnknownIDIsError(t *testing.T) {
	mem := newFakeMemory()
	store := NewStore(Persistent)
	err := store.Remove(mem, 999)
	assert.Error(t, err)
}

func TestAllOrdersByAddress(t *testing.T) {
	mem := newFakeMemory()
	store := NewStore(Persistent)
	_, err := store.Place(mem, 1, 0x3000)
	require.NoError(t, err)
	_, err = store.Place(mem, 1, 0x1000)
	require.NoError(t, err)
	_, err = store.Place(mem, 1, 0x2000)
	require.NoError(t, err)

	all := store.All()
	require.Len(t, all, 3)
	assert.EqualValues(t, 0x1000, all[0].Address)
	assert.EqualValues(t, 0x2000, all[1].Address)
	assert.EqualValues(t, 0x3000, all[2].Address)
}

func TestDisableAllAtOnlyReturnsPreviouslyEnabled(t *testing.T) {
	mem := newFakeMemory()
	store := NewStore(Persistent)
	bp1, err := store.Place(mem, 1, 0x6000)
	require.NoError(t, err)
	bp2, err := store.Place(mem, 1, 0x6000)
	require.NoError(t, err)
	require.NoError(t, store.Disable(mem, bp1))

	disabled, err := store.DisableAllAt(mem, 0x6000)
	require.NoError(t, err)
	require.Len(t, disabled, 1)
	assert.Equal(t, bp2.ID, disabled[0].ID)
}
