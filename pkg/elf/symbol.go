package elf

import (
	"sort"

	"github.com/theIDinside/mdb/pkg/bytereader"
)

// Binding is the high nibble of st_info.
type Binding uint8

const (
	BindLocal  Binding = 0
	BindGlobal Binding = 1
	BindWeak   Binding = 2
)

// SymbolType is derived from the low nibble of st_info.
type SymbolType uint8

const (
	SymNone    SymbolType = 0
	SymObject  SymbolType = 1
	SymFunc    SymbolType = 2
	SymSection SymbolType = 3
	SymFile    SymbolType = 4
)

const symbolEntrySize = 24

// Address is an optional resolved virtual address: symbols with st_value
// == 0 are unresolved, and callers must be able to tell that apart from an
// address that is legitimately zero (which never happens for code/data
// symbols in a loaded executable, but the distinction is the point).
type Address struct {
	Value    uint64
	Resolved bool
}

// Symbol is one parsed .symtab entry, with its name already resolved
// against .strtab.
type Symbol struct {
	Name    string
	Addr    Address
	Size    uint64
	Binding Binding
	Section uint16
	Type    SymbolType
}

func parseSymbolEntry(r *bytereader.Reader) (nameIndex uint32, sym Symbol, err error) {
	if nameIndex, err = r.ReadU32(); err != nil {
		return
	}
	info, err := r.ReadU8()
	if err != nil {
		return
	}
	if _, err = r.ReadU8(); err != nil { // st_other, unused
		return
	}
	shndx, err := r.ReadU16()
	if err != nil {
		return
	}
	value, err := r.ReadU64()
	if err != nil {
		return
	}
	size, err := r.ReadU64()
	if err != nil {
		return
	}
	sym = Symbol{
		Addr:    Address{Value: value, Resolved: value != 0},
		Size:    size,
		Binding: Binding(info >> 4),
		Section: shndx,
		Type:    SymbolType(info & 0xf),
	}
	return nameIndex, sym, nil
}

// SymbolTable groups symbols the way §4.3 requires: bucketed by type and
// keyed by name, with an unnamed bucket for the empty-name entries every
// symbol table starts with and for named symbols of any other type.
type SymbolTable struct {
	Functions map[string]Symbol
	Objects   map[string]Symbol
	Sections  map[string]Symbol
	Files     map[string]Symbol
	Unnamed   []Symbol

	// byAddr is a derived index (ascending by address) used for reverse
	// "what function contains this address" lookups; populated lazily.
	byAddr []Symbol
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{
		Functions: make(map[string]Symbol),
		Objects:   make(map[string]Symbol),
		Sections:  make(map[string]Symbol),
		Files:     make(map[string]Symbol),
	}
}

func (t *SymbolTable) add(name string, sym Symbol) {
	if name == "" {
		t.Unnamed = append(t.Unnamed, sym)
		return
	}
	switch sym.Type {
	case SymFunc:
		t.Functions[name] = sym
	case SymObject:
		t.Objects[name] = sym
	case SymSection:
		t.Sections[name] = sym
	case SymFile:
		t.Files[name] = sym
	default:
		t.Unnamed = append(t.Unnamed, sym)
	}
}

// FunctionLowPC returns the virtual address of a named function symbol, if
// present and resolved.
func (t *SymbolTable) FunctionLowPC(name string) (uint64, bool) {
	sym, ok := t.Functions[name]
	if !ok || !sym.Addr.Resolved {
		return 0, false
	}
	return sym.Addr.Value, true
}

// buildAddrIndex sorts every resolved function symbol by address, for
// FunctionContaining.
func (t *SymbolTable) buildAddrIndex() {
	if t.byAddr != nil {
		return
	}
	for _, sym := range t.Functions {
		if sym.Addr.Resolved {
			t.byAddr = append(t.byAddr, sym)
		}
	}
	sort.Slice(t.byAddr, func(i, j int) bool { return t.byAddr[i].Addr.Value < t.byAddr[j].Addr.Value })
}

// FunctionContaining returns the function symbol whose [Addr, Addr+Size)
// range contains addr, used to annotate raw addresses as
// <function>+<offset> in stop and 'where' location output.
func (t *SymbolTable) FunctionContaining(addr uint64) (Symbol, uint64, bool) {
	t.buildAddrIndex()
	idx := sort.Search(len(t.byAddr), func(i int) bool { return t.byAddr[i].Addr.Value > addr })
	if idx == 0 {
		return Symbol{}, 0, false
	}
	sym := t.byAddr[idx-1]
	if sym.Size != 0 && addr >= sym.Addr.Value+sym.Size {
		return Symbol{}, 0, false
	}
	return sym, addr - sym.Addr.Value, true
}
