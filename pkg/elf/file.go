package elf

import (
	"os"

	"github.com/theIDinside/mdb/pkg/bytereader"
	"github.com/theIDinside/mdb/pkg/mdberr"
)

// Image is the reference-counted, immutable byte buffer backing a loaded
// executable. Every parsed view -- section slices, DWARF readers, symbol
// names -- borrows into it, so the Image's lifetime must exceed every view
// derived from it. Go's garbage collector makes the "reference counted"
// part implicit: as long as any slice of Image.data is reachable, the
// backing array stays alive, which is exactly the borrow discipline
// SPEC_FULL.md §9 asks for, expressed without a manual refcount.
type Image struct {
	data []byte
	path string
}

// Load reads path fully into memory and wraps it in an Image.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdberr.Wrap(mdberr.FileOpenError, path, err)
		}
		return nil, mdberr.Wrap(mdberr.FileReadError, path, err)
	}
	return &Image{data: data, path: path}, nil
}

// Bytes returns the full backing buffer. Callers must not mutate it.
func (img *Image) Bytes() []byte { return img.data }

// Path returns the filesystem path the image was loaded from.
func (img *Image) Path() string { return img.path }

// File is a parsed ELF64 object: the header, the section and program
// header tables, and (once requested) the symbol table, all borrowing into
// a single Image.
type File struct {
	image *Image

	Header          Header
	Sections        []SectionHeader
	ProgramHeaders  []ProgramHeader
	sectionByName   map[string]int
	symbols         *SymbolTable
}

// NewFile parses img's ELF64 header and section/program header tables.
func NewFile(img *Image) (*File, error) {
	h, err := ParseHeader(img.data)
	if err != nil {
		return nil, err
	}
	if h.Class != Class64 {
		return nil, mdberr.WithSize(mdberr.ErroneousAddressSize, int(h.Class))
	}

	f := &File{image: img, Header: h}

	if err := f.parseSectionHeaders(); err != nil {
		return nil, err
	}
	if err := f.parseProgramHeaders(); err != nil {
		return nil, err
	}
	f.resolveSectionNames()

	return f, nil
}

func (f *File) parseSectionHeaders() error {
	if f.Header.ShNum == 0 {
		return nil
	}
	if int(f.Header.ShEntSize) != sectionHeaderEntrySize {
		return mdberr.WithSize(mdberr.SymbolTableMalformed, int(f.Header.ShEntSize))
	}
	f.Sections = make([]SectionHeader, 0, f.Header.ShNum)
	for i := uint16(0); i < f.Header.ShNum; i++ {
		off := int(f.Header.ShOff) + int(i)*sectionHeaderEntrySize
		sh, err := parseSectionHeaderAt(f.image.data, off)
		if err != nil {
			return err
		}
		f.Sections = append(f.Sections, sh)
	}
	return nil
}

func parseSectionHeaderAt(data []byte, off int) (SectionHeader, error) {
	if off+sectionHeaderEntrySize > len(data) {
		return SectionHeader{}, mdberr.AtPos(mdberr.EOFNotExpected, off)
	}
	r := bytereader.New(data[off:off+sectionHeaderEntrySize], off)
	return parseSectionHeader(r)
}

func (f *File) parseProgramHeaders() error {
	if f.Header.PhNum == 0 {
		return nil
	}
	if int(f.Header.PhEntSize) != programHeaderEntrySize {
		return mdberr.WithSize(mdberr.SymbolTableMalformed, int(f.Header.PhEntSize))
	}
	f.ProgramHeaders = make([]ProgramHeader, 0, f.Header.PhNum)
	for i := uint16(0); i < f.Header.PhNum; i++ {
		off := int(f.Header.PhOff) + int(i)*programHeaderEntrySize
		if off+programHeaderEntrySize > len(f.image.data) {
			return mdberr.AtPos(mdberr.EOFNotExpected, off)
		}
		r := bytereader.New(f.image.data[off:off+programHeaderEntrySize], off)
		ph, err := parseProgramHeader(r)
		if err != nil {
			return err
		}
		f.ProgramHeaders = append(f.ProgramHeaders, ph)
	}
	return nil
}

func (f *File) resolveSectionNames() {
	if int(f.Header.ShStrNdx) >= len(f.Sections) {
		return
	}
	strTab := f.Sections[f.Header.ShStrNdx]
	f.sectionByName = make(map[string]int, len(f.Sections))
	for i := range f.Sections {
		name := readCString(f.image.data, int(strTab.Offset)+int(f.Sections[i].NameIndex))
		f.Sections[i].Name = name
		f.sectionByName[name] = i
	}
}

func readCString(data []byte, offset int) string {
	if offset < 0 || offset >= len(data) {
		return ""
	}
	end := offset
	for end < len(data) && data[end] != 0 {
		end++
	}
	return string(data[offset:end])
}

// SectionByName returns the section header for name, if present.
func (f *File) SectionByName(name string) (SectionHeader, bool) {
	idx, ok := f.sectionByName[name]
	if !ok {
		return SectionHeader{}, false
	}
	return f.Sections[idx], true
}

// SectionData returns a borrowed slice of the named section's bytes.
func (f *File) SectionData(name string) ([]byte, error) {
	sh, ok := f.SectionByName(name)
	if !ok {
		return nil, mdberr.WithName(mdberr.SectionNotFound, name)
	}
	if sh.Type == SHTNoBits {
		return nil, nil
	}
	end := int(sh.Offset + sh.Size)
	if end > len(f.image.data) {
		return nil, mdberr.AtPos(mdberr.EOFNotExpected, end)
	}
	return f.image.data[sh.Offset:end], nil
}

// DwarfSection returns the bytes of the DWARF section identified by id.
func (f *File) DwarfSection(id DwarfSectionID) ([]byte, error) {
	data, err := f.SectionData(id.Name())
	if err != nil {
		return nil, mdberr.WithName(mdberr.DwarfSectionNotFound, id.Name())
	}
	return data, nil
}

// SymbolTable parses (and memoizes) .symtab against .strtab.
func (f *File) SymbolTable() (*SymbolTable, error) {
	if f.symbols != nil {
		return f.symbols, nil
	}
	symSec, ok := f.SectionByName(".symtab")
	if !ok {
		return nil, mdberr.WithName(mdberr.SectionNotFound, ".symtab")
	}
	strSec, ok := f.SectionByName(".strtab")
	if !ok {
		return nil, mdberr.WithName(mdberr.SectionNotFound, ".strtab")
	}
	if symSec.EntSize != 0 && symSec.EntSize != symbolEntrySize {
		return nil, mdberr.WithSize(mdberr.SymbolTableMalformed, int(symSec.EntSize))
	}

	data := f.image.data
	strOff := int(strSec.Offset)
	table := newSymbolTable()

	count := int(symSec.Size) / symbolEntrySize
	for i := 0; i < count; i++ {
		off := int(symSec.Offset) + i*symbolEntrySize
		if off+symbolEntrySize > len(data) {
			return nil, mdberr.AtPos(mdberr.EOFNotExpected, off)
		}
		r := bytereader.New(data[off:off+symbolEntrySize], off)
		nameIdx, sym, err := parseSymbolEntry(r)
		if err != nil {
			return nil, err
		}
		name := readCString(data, strOff+int(nameIdx))
		sym.Name = name
		table.add(name, sym)
	}

	f.symbols = table
	return table, nil
}

// Image returns the backing Image this File borrows into.
func (f *File) Image() *Image { return f.image }
