package elf

import "github.com/theIDinside/mdb/pkg/bytereader"

// SectionType is the sh_type field.
type SectionType uint32

const (
	SHTNull     SectionType = 0
	SHTProgBits SectionType = 1
	SHTSymTab   SectionType = 2
	SHTStrTab   SectionType = 3
	SHTNoBits   SectionType = 8
)

const sectionHeaderEntrySize = 64

// SectionHeader is one ELF64 section header table entry.
type SectionHeader struct {
	NameIndex uint32
	Type      SectionType
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64

	// Name is resolved after parsing, once the section-name string table
	// is known.
	Name string
}

func parseSectionHeader(r *bytereader.Reader) (SectionHeader, error) {
	var sh SectionHeader
	var err error
	if sh.NameIndex, err = r.ReadU32(); err != nil {
		return sh, err
	}
	typ, err := r.ReadU32()
	if err != nil {
		return sh, err
	}
	sh.Type = SectionType(typ)
	if sh.Flags, err = r.ReadU64(); err != nil {
		return sh, err
	}
	if sh.Addr, err = r.ReadU64(); err != nil {
		return sh, err
	}
	if sh.Offset, err = r.ReadU64(); err != nil {
		return sh, err
	}
	if sh.Size, err = r.ReadU64(); err != nil {
		return sh, err
	}
	if sh.Link, err = r.ReadU32(); err != nil {
		return sh, err
	}
	if sh.Info, err = r.ReadU32(); err != nil {
		return sh, err
	}
	if sh.AddrAlign, err = r.ReadU64(); err != nil {
		return sh, err
	}
	if sh.EntSize, err = r.ReadU64(); err != nil {
		return sh, err
	}
	return sh, nil
}

// ProgramHeaderType is the p_type field.
type ProgramHeaderType uint32

const (
	PTNull ProgramHeaderType = 0
	PTLoad ProgramHeaderType = 1
)

const programHeaderEntrySize = 56

// ProgramHeader is one ELF64 program header table entry.
type ProgramHeader struct {
	Type     ProgramHeaderType
	Flags    uint32
	Offset   uint64
	VAddr    uint64
	PAddr    uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

func parseProgramHeader(r *bytereader.Reader) (ProgramHeader, error) {
	var ph ProgramHeader
	var err error
	typ, err := r.ReadU32()
	if err != nil {
		return ph, err
	}
	ph.Type = ProgramHeaderType(typ)
	if ph.Flags, err = r.ReadU32(); err != nil {
		return ph, err
	}
	if ph.Offset, err = r.ReadU64(); err != nil {
		return ph, err
	}
	if ph.VAddr, err = r.ReadU64(); err != nil {
		return ph, err
	}
	if ph.PAddr, err = r.ReadU64(); err != nil {
		return ph, err
	}
	if ph.FileSize, err = r.ReadU64(); err != nil {
		return ph, err
	}
	if ph.MemSize, err = r.ReadU64(); err != nil {
		return ph, err
	}
	if ph.Align, err = r.ReadU64(); err != nil {
		return ph, err
	}
	return ph, nil
}
