package mdbutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitViewReadWriteRange(t *testing.T) {
	var word uint64 = 0
	view := CreateBitView(&word)
	view.Write(0x1F, 4, 5)
	assert.EqualValues(t, 0x1F<<4, word)
	assert.EqualValues(t, 0x1F, view.Read(4, 5))
}

// TestBitViewWriteClearsTargetRangeFirst exercises the breakpoint-patching
// case directly: writing into a low byte that already holds a live
// instruction byte must not leave any of the old bits behind, and must
// leave bits outside the target range untouched.
func TestBitViewWriteClearsTargetRangeFirst(t *testing.T) {
	var word uint64 = 0xDEADBEEFCAFEBABE
	untouched := word &^ 0xFF

	view := CreateBitView(&word)
	view.Write(0xCC, 0, BitsPerByte)

	assert.EqualValues(t, 0xCC, word&0xFF)
	assert.EqualValues(t, untouched, word&^0xFF, "bits outside the written range must survive")
}

func TestBitViewWriteThenRestoreRoundTrips(t *testing.T) {
	var word uint64 = 0x1122334455667788
	original := byte(word)

	view := CreateBitView(&word)
	view.Write(0xCC, 0, BitsPerByte)
	assert.EqualValues(t, 0xCC, word&0xFF)

	view.Write(uint64(original), 0, BitsPerByte)
	assert.EqualValues(t, 0x1122334455667788, word)
}

func TestSetAndClearBit(t *testing.T) {
	var eflags uint64 = 0
	view := CreateBitView(&eflags)
	view.SetBit(6) // ZF
	assert.EqualValues(t, 1, view.Read(6, 1))
	view.ClearBit(6)
	assert.EqualValues(t, 0, view.Read(6, 1))
}

func TestAllOnes(t *testing.T) {
	assert.EqualValues(t, 0xFF, AllOnes[uint64](8))
	assert.EqualValues(t, 0, AllOnes[uint64](0))
	assert.EqualValues(t, 0x7F, AllOnes[uint64](7))
}
