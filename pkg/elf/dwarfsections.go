package elf

import "github.com/theIDinside/mdb/pkg/mdberr"

// DwarfSectionID is the closed enumeration of DWARF sections mdb consumes.
type DwarfSectionID int

const (
	DebugInfo DwarfSectionID = iota
	DebugAbbrev
	DebugLine
	DebugStr
	DebugPubnames
)

var dwarfSectionNames = map[DwarfSectionID]string{
	DebugInfo:     ".debug_info",
	DebugAbbrev:   ".debug_abbrev",
	DebugLine:     ".debug_line",
	DebugStr:      ".debug_str",
	DebugPubnames: ".debug_pubnames",
}

var sectionNameToDwarfID = func() map[string]DwarfSectionID {
	m := make(map[string]DwarfSectionID, len(dwarfSectionNames))
	for id, name := range dwarfSectionNames {
		m[name] = id
	}
	return m
}()

// Name returns the ELF section name backing this DWARF section identifier.
func (id DwarfSectionID) Name() string { return dwarfSectionNames[id] }

// ParseDwarfSectionID maps an ELF section name to its DWARF section
// identifier, failing DwarfSectionNotRecognized for anything outside the
// closed set mdb understands.
func ParseDwarfSectionID(name string) (DwarfSectionID, error) {
	id, ok := sectionNameToDwarfID[name]
	if !ok {
		return 0, mdberr.WithName(mdberr.DwarfSectionNotRecognized, name)
	}
	return id, nil
}
