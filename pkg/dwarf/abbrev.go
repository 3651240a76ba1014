package dwarf

import (
	"github.com/theIDinside/mdb/pkg/bytereader"
)

// AttrSpec is one (attribute, form) pair from an abbreviation's attribute
// list.
type AttrSpec struct {
	Attr Attribute
	Form Form
}

// AbbrevEntry is a template naming the tag and ordered attribute schema for
// a family of debugging-information entries within one compilation unit's
// abbreviation contribution.
type AbbrevEntry struct {
	Code        uint64
	Tag         Tag
	HasChildren bool
	Attrs       []AttrSpec
}

// AbbrevTable maps an abbreviation code to its entry, scoped to one
// compilation unit's contribution to .debug_abbrev.
type AbbrevTable struct {
	entries map[uint64]AbbrevEntry
}

// Lookup returns the abbreviation entry for code, if present.
func (t *AbbrevTable) Lookup(code uint64) (AbbrevEntry, bool) {
	e, ok := t.entries[code]
	return e, ok
}

// ParseAbbrevTable parses one unit's abbreviation contribution starting at
// offset within the .debug_abbrev section, per spec.md §4.4: a sequence of
// entries, each an unsigned-LEB128 code (0 terminates), unsigned-LEB128
// tag, a has-children byte, then (attr, form) ULEB128 pairs until both are
// zero.
func ParseAbbrevTable(debugAbbrev []byte, offset int) (*AbbrevTable, error) {
	r := bytereader.New(debugAbbrev, 0)
	if err := r.Seek(offset); err != nil {
		return nil, err
	}

	table := &AbbrevTable{entries: make(map[uint64]AbbrevEntry)}
	for {
		code, err := r.ReadULEB128()
		if err != nil {
			return nil, err
		}
		if code == 0 {
			break
		}

		tag, err := r.ReadULEB128()
		if err != nil {
			return nil, err
		}
		hasChildrenByte, err := r.ReadU8()
		if err != nil {
			return nil, err
		}

		entry := AbbrevEntry{Code: code, Tag: Tag(tag), HasChildren: hasChildrenByte != 0}
		for {
			attr, err := r.ReadULEB128()
			if err != nil {
				return nil, err
			}
			form, err := r.ReadULEB128()
			if err != nil {
				return nil, err
			}
			if attr == 0 && form == 0 {
				break
			}
			entry.Attrs = append(entry.Attrs, AttrSpec{Attr: Attribute(attr), Form: Form(form)})
		}

		table.entries[code] = entry
	}

	return table, nil
}
