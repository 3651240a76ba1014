package dwarf

import (
	"github.com/theIDinside/mdb/pkg/bytereader"
	"github.com/theIDinside/mdb/pkg/mdberr"
)

// Field is one decoded (attribute, value) pair belonging to a DIE.
type Field struct {
	Attr  Attribute
	Value AttrValue
}

// DIE is one debugging-information entry: an abbreviation code's tag,
// populated with attribute values, in declaration order.
type DIE struct {
	Tag         Tag
	HasChildren bool
	Fields      []Field
	// Offset is this DIE's absolute offset into .debug_info.
	Offset int
}

// Val returns the value of the first field with the given attribute, if
// present.
func (d DIE) Val(attr Attribute) (AttrValue, bool) {
	for _, f := range d.Fields {
		if f.Attr == attr {
			return f.Value, true
		}
	}
	return AttrValue{}, false
}

// ReadDIE reads one DIE at r's current position, resolving its abbreviation
// code against table and decoding each attribute per its form. An
// abbreviation code of 0 denotes a null entry (end-of-children marker); it
// is returned with Tag == 0 and no fields.
func ReadDIE(r *bytereader.Reader, table *AbbrevTable, enc Encoding, debugStr []byte) (DIE, error) {
	offset := r.AbsPos()
	code, err := r.ReadULEB128()
	if err != nil {
		return DIE{}, err
	}
	if code == 0 {
		return DIE{Offset: offset}, nil
	}

	entry, ok := table.Lookup(code)
	if !ok {
		return DIE{}, mdberr.AtPos(mdberr.AttributeParseError, offset)
	}

	die := DIE{Tag: entry.Tag, HasChildren: entry.HasChildren, Offset: offset}
	for _, spec := range entry.Attrs {
		val, err := DecodeAttrValue(r, enc, spec.Form, debugStr)
		if err != nil {
			return DIE{}, err
		}
		die.Fields = append(die.Fields, Field{Attr: spec.Attr, Value: val})
	}
	return die, nil
}

// LowPC looks up the DW_AT_low_pc attribute of a DIE read as form addr,
// returning the address and whether it was present.
func (d DIE) LowPC() (uint64, bool) {
	v, ok := d.Val(AttrLowpc)
	if !ok || v.Kind != KindAddress {
		return 0, false
	}
	return v.Address, true
}

// Name returns the DW_AT_name attribute as a string, if present.
func (d DIE) Name() (string, bool) {
	v, ok := d.Val(AttrName)
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// CompDir returns the DW_AT_comp_dir attribute as a string, if present.
func (d DIE) CompDir() (string, bool) {
	v, ok := d.Val(AttrCompDir)
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// StmtList returns the DW_AT_stmt_list attribute (an offset into
// .debug_line), if present.
func (d DIE) StmtList() (uint64, bool) {
	v, ok := d.Val(AttrStmtList)
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case KindStrOffset, KindInfoOffset:
		return v.Offset, true
	case KindUnsignedData:
		return v.Unsigned, true
	default:
		return 0, false
	}
}
