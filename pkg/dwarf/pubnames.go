package dwarf

import "github.com/theIDinside/mdb/pkg/bytereader"

// PubnameEntry identifies a named DIE by the Compilation Unit header it
// belongs to plus its offset relative to the first byte past that header.
type PubnameEntry struct {
	Name                string
	HeaderOffset        int // absolute offset into .debug_info of the CU header
	RelativeEntryOffset int // offset of the DIE, relative to HeaderOffset (the start of the CU header); see ResolveOffset
}

// ResolveOffset returns the absolute .debug_info offset of the named DIE:
// header_offset + relative_entry_offset, where relative_entry_offset
// already points into the unit's first byte past its header (spec.md
// §4.4).
func (e PubnameEntry) ResolveOffset() int {
	return e.HeaderOffset + e.RelativeEntryOffset
}

// Pubnames is the parsed .debug_pubnames index: a flat list of entries
// across every header ("set") in the section. Lookup by name scans
// header-by-header, entry-by-entry; the first match wins, matching
// spec.md §4.4's exact semantics.
type Pubnames struct {
	entries []PubnameEntry
}

// ParsePubnames parses every set in the .debug_pubnames section. Each set
// begins with a header (initial-length, version, debug_info_offset,
// debug_info_length) followed by (offset, name) pairs terminated by
// offset == 0.
func ParsePubnames(debugPubnames []byte) (*Pubnames, error) {
	r := bytereader.New(debugPubnames, 0)
	p := &Pubnames{}

	for r.Len() > 0 {
		il, err := r.ReadInitialLength()
		if err != nil {
			return nil, err
		}
		setStart := r.Pos()
		setEnd := setStart + int(il.Length)

		if _, err := r.ReadU16(); err != nil { // version
			return nil, err
		}
		debugInfoOffset, err := r.ReadOffset(il.Format)
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadOffset(il.Format); err != nil { // debug_info_length, unused
			return nil, err
		}

		for {
			offset, err := r.ReadOffset(il.Format)
			if err != nil {
				return nil, err
			}
			if offset == 0 {
				break
			}
			name, err := r.ReadStr()
			if err != nil {
				return nil, err
			}
			p.entries = append(p.entries, PubnameEntry{
				Name:                name,
				HeaderOffset:        int(debugInfoOffset),
				RelativeEntryOffset: int(offset),
			})
		}

		if err := r.Seek(setEnd); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Lookup returns the first entry matching name, scanning in section order.
func (p *Pubnames) Lookup(name string) (PubnameEntry, bool) {
	for _, e := range p.entries {
		if e.Name == name {
			return e, true
		}
	}
	return PubnameEntry{}, false
}

// Entries returns every parsed entry, for listing/diagnostic purposes.
func (p *Pubnames) Entries() []PubnameEntry { return p.entries }

// ResolveDIE reads the DIE a PubnameEntry points to: it parses the owning
// compilation unit's header to recover its encoding, parses that unit's
// abbreviation table, then decodes the DIE at entry.ResolveOffset() per
// spec.md §4.4.
func ResolveDIE(debugInfo, debugAbbrev, debugStr []byte, entry PubnameEntry) (DIE, error) {
	unit, err := ParseUnitHeader(debugInfo, entry.HeaderOffset)
	if err != nil {
		return DIE{}, err
	}
	table, err := ParseAbbrevTable(debugAbbrev, int(unit.AbbrevOffset))
	if err != nil {
		return DIE{}, err
	}

	r := bytereader.New(debugInfo, 0)
	if err := r.Seek(entry.ResolveOffset()); err != nil {
		return DIE{}, err
	}
	return ReadDIE(r, table, unit.Encoding(), debugStr)
}

// FunctionLowPCByName resolves name in pubnames and returns its DW_AT_low_pc,
// the low-level primitive spec.md §4.4 calls "find low-PC of function by
// name".
func FunctionLowPCByName(debugInfo, debugAbbrev, debugStr []byte, pub *Pubnames, name string) (uint64, bool, error) {
	entry, ok := pub.Lookup(name)
	if !ok {
		return 0, false, nil
	}
	die, err := ResolveDIE(debugInfo, debugAbbrev, debugStr, entry)
	if err != nil {
		return 0, false, err
	}
	pc, ok := die.LowPC()
	return pc, ok, nil
}
