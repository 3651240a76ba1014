package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTableBucketsByType(t *testing.T) {
	table := newSymbolTable()
	table.add("main", Symbol{Name: "main", Addr: Address{Value: 0x4011F0, Resolved: true}, Type: SymFunc, Size: 0x20})
	table.add("buf", Symbol{Name: "buf", Addr: Address{Value: 0x601000, Resolved: true}, Type: SymObject})
	table.add("", Symbol{Type: SymNone})

	addr, ok := table.FunctionLowPC("main")
	assert.True(t, ok)
	assert.EqualValues(t, 0x4011F0, addr)

	_, ok = table.FunctionLowPC("doesnotexist")
	assert.False(t, ok)

	assert.Contains(t, table.Objects, "buf")
	assert.Len(t, table.Unnamed, 1)
}

func TestFunctionContaining(t *testing.T) {
	table := newSymbolTable()
	table.add("main", Symbol{Name: "main", Addr: Address{Value: 0x1000, Resolved: true}, Type: SymFunc, Size: 0x50})
	table.add("helper", Symbol{Name: "helper", Addr: Address{Value: 0x2000, Resolved: true}, Type: SymFunc, Size: 0x10})

	sym, off, ok := table.FunctionContaining(0x1020)
	assert.True(t, ok)
	assert.Equal(t, "main", sym.Name)
	assert.EqualValues(t, 0x20, off)

	_, _, ok = table.FunctionContaining(0x900)
	assert.False(t, ok, "address before any known function must not resolve")

	_, _, ok = table.FunctionContaining(0x2050)
	assert.False(t, ok, "address past a sized function's end must not resolve")
}

func TestFunctionContainingUnsizedSymbolExtendsToNext(t *testing.T) {
	table := newSymbolTable()
	// A symbol with Size == 0 has no known upper bound, so any address at or
	// past it (up to the next symbol) still resolves.
	table.add("start", Symbol{Name: "start", Addr: Address{Value: 0x1000, Resolved: true}, Type: SymFunc, Size: 0})

	_, _, ok := table.FunctionContaining(0x5000)
	assert.True(t, ok)
}
