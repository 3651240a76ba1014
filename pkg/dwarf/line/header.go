// Package line interprets the DWARF Line Number Program bytecode,
// producing the address <-> source-location matrix that drives source
// listing and "break at file:line" (spec.md §4.5).
package line

import (
	"github.com/theIDinside/mdb/pkg/bytereader"
)

// FileEntry is one entry of the LNP header's file-name list: a name,
// the index of its including directory (0 means "the compilation
// directory"), a last-modified timestamp, and a byte length. mdb only
// ever consults Name and DirIndex.
type FileEntry struct {
	Name      string
	DirIndex  uint64
	ModTime   uint64
	Length    uint64
}

// Header is a parsed Line Number Program header (DWARF §6.2.4).
type Header struct {
	InitialLength bytereader.InitialLength
	Version       uint16
	HeaderLength  uint64
	// ProgramStart is the absolute offset, within the .debug_line
	// section, of the first byte of the instruction stream -- computed
	// from the end of the fixed header fields plus HeaderLength.
	ProgramStart int
	// UnitEnd is the absolute offset one past the end of this program's
	// instruction stream.
	UnitEnd int

	MinInstLength        uint8
	MaxOpsPerInstruction uint8
	DefaultIsStatement   bool
	LineBase             int8
	LineRange            uint8
	OpcodeBase           uint8
	StandardOpcodeLength []uint8

	IncludeDirs []string
	Files       []FileEntry
}

// FileName returns the file entry at idx, 1-indexed per the
// DWARF v2-v4 convention (index 0 means "unknown"); false if idx is out
// of range.
func (h Header) FileName(idx uint64) (FileEntry, bool) {
	if idx == 0 || int(idx) > len(h.Files) {
		return FileEntry{}, false
	}
	return h.Files[idx-1], true
}

// IncludeDir returns the include directory at idx, 1-indexed (0 means
// "the compilation directory").
func (h Header) IncludeDir(idx uint64) (string, bool) {
	if idx == 0 || int(idx) > len(h.IncludeDirs) {
		return "", false
	}
	return h.IncludeDirs[idx-1], true
}

// ParseHeader reads one Line Number Program header from debugLine
// starting at offset, per spec.md §4 "Line Number Program (LNP)
// header": initial-length, version, header-length, min-instruction-
// length, max-ops-per-instruction, default-is-statement, line-base
// (signed), line-range, opcode-base, the standard-opcode-length array
// sized opcode_base-1, a null-terminated include-directory list
// terminated by an empty string, and a file-entry list terminated by a
// zero byte.
func ParseHeader(debugLine []byte, offset int) (Header, error) {
	r := bytereader.New(debugLine, 0)
	if err := r.Seek(offset); err != nil {
		return Header{}, err
	}

	h := Header{}
	il, err := r.ReadInitialLength()
	if err != nil {
		return Header{}, err
	}
	h.InitialLength = il
	lengthFieldSize := 4
	if il.Format == bytereader.DWARF64 {
		lengthFieldSize = 12
	}
	h.UnitEnd = offset + lengthFieldSize + int(il.Length)

	version, err := r.ReadU16()
	if err != nil {
		return Header{}, err
	}
	h.Version = version

	headerLen, err := r.ReadOffset(il.Format)
	if err != nil {
		return Header{}, err
	}
	h.HeaderLength = headerLen
	h.ProgramStart = r.Pos() + int(headerLen)

	if h.MinInstLength, err = r.ReadU8(); err != nil {
		return Header{}, err
	}
	if version >= 4 {
		if h.MaxOpsPerInstruction, err = r.ReadU8(); err != nil {
			return Header{}, err
		}
	} else {
		h.MaxOpsPerInstruction = 1
	}
	defaultIsStmt, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	h.DefaultIsStatement = defaultIsStmt != 0

	lineBase, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	h.LineBase = int8(lineBase)

	if h.LineRange, err = r.ReadU8(); err != nil {
		return Header{}, err
	}
	if h.OpcodeBase, err = r.ReadU8(); err != nil {
		return Header{}, err
	}

	h.StandardOpcodeLength = make([]uint8, int(h.OpcodeBase)-1)
	for i := range h.StandardOpcodeLength {
		if h.StandardOpcodeLength[i], err = r.ReadU8(); err != nil {
			return Header{}, err
		}
	}

	for {
		s, err := r.ReadStr()
		if err != nil {
			return Header{}, err
		}
		if s == "" {
			break
		}
		h.IncludeDirs = append(h.IncludeDirs, s)
	}

	for {
		name, err := r.ReadStr()
		if err != nil {
			return Header{}, err
		}
		if name == "" {
			break
		}
		dirIdx, err := r.ReadULEB128()
		if err != nil {
			return Header{}, err
		}
		modTime, err := r.ReadULEB128()
		if err != nil {
			return Header{}, err
		}
		length, err := r.ReadULEB128()
		if err != nil {
			return Header{}, err
		}
		h.Files = append(h.Files, FileEntry{Name: name, DirIndex: dirIdx, ModTime: modTime, Length: length})
	}

	return h, nil
}
