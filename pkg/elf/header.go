// Package elf implements a byte-level ELF64 reader: just enough of the
// System V ABI to locate section and program headers, the symbol table, and
// the named DWARF sections mdb's DWARF parser needs. It intentionally does
// not use the standard library's debug/elf -- building this reader is core
// scope of mdb, not ambient plumbing.
package elf

import (
	"github.com/theIDinside/mdb/pkg/bytereader"
	"github.com/theIDinside/mdb/pkg/mdberr"
)

// Class distinguishes 32-bit from 64-bit ELF images. mdb only supports
// Class64.
type Class uint8

const (
	ClassNone Class = 0
	Class32   Class = 1
	Class64   Class = 2
)

// DataEncoding distinguishes little-endian (LSB) from big-endian (MSB)
// byte order. mdb only supports LSB, matching x86-64.
type DataEncoding uint8

const (
	DataNone DataEncoding = 0
	DataLSB  DataEncoding = 1
	DataMSB  DataEncoding = 2
)

// ObjectType is the e_type field: relocatable, executable, shared object,
// core dump.
type ObjectType uint16

const (
	TypeNone ObjectType = 0
	TypeRel  ObjectType = 1
	TypeExec ObjectType = 2
	TypeDyn  ObjectType = 3
	TypeCore ObjectType = 4
)

// MachineType is the e_machine field. mdb only supports X86_64.
type MachineType uint16

const (
	MachineNone  MachineType = 0
	Machine386   MachineType = 3
	MachineX8664 MachineType = 62
)

const identSize = 16

// magic is the leading four bytes every ELF image must start with.
var magic = [4]byte{0x7F, 'E', 'L', 'F'}

// Header is the fixed-layout ELF64 file header (System V ABI, 64 bytes).
type Header struct {
	Class      Class
	Encoding   DataEncoding
	Version    uint8
	OSABI      uint8
	Type       ObjectType
	Machine    MachineType
	EVersion   uint32
	Entry      uint64
	PhOff      uint64
	ShOff      uint64
	Flags      uint32
	EhSize     uint16
	PhEntSize  uint16
	PhNum      uint16
	ShEntSize  uint16
	ShNum      uint16
	ShStrNdx   uint16
}

// ParseHeader decodes the ELF64 header from the start of data, per the
// System V ABI field layout: ident[16], e_type(2), e_machine(2),
// e_version(4), e_entry(8), e_phoff(8), e_shoff(8), e_flags(4),
// e_ehsize(2), e_phentsize(2), e_phnum(2), e_shentsize(2), e_shnum(2),
// e_shstrndx(2).
func ParseHeader(data []byte) (Header, error) {
	if len(data) < identSize+4 || data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return Header{}, mdberr.New(mdberr.ELFMagicNotFound)
	}

	r := bytereader.New(data, 0)
	if _, err := r.ReadSlice(4); err != nil { // magic, already validated
		return Header{}, err
	}
	classByte, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	encByte, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	version, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	osabi, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	if err := r.Seek(identSize); err != nil {
		return Header{}, err
	}

	h := Header{Class: Class(classByte), Encoding: DataEncoding(encByte), Version: version, OSABI: osabi}

	typ, err := r.ReadU16()
	if err != nil {
		return Header{}, err
	}
	h.Type = ObjectType(typ)

	machine, err := r.ReadU16()
	if err != nil {
		return Header{}, err
	}
	h.Machine = MachineType(machine)

	if h.EVersion, err = r.ReadU32(); err != nil {
		return Header{}, err
	}
	if h.Entry, err = r.ReadU64(); err != nil {
		return Header{}, err
	}
	if h.PhOff, err = r.ReadU64(); err != nil {
		return Header{}, err
	}
	if h.ShOff, err = r.ReadU64(); err != nil {
		return Header{}, err
	}
	if h.Flags, err = r.ReadU32(); err != nil {
		return Header{}, err
	}
	if h.EhSize, err = r.ReadU16(); err != nil {
		return Header{}, err
	}
	if h.PhEntSize, err = r.ReadU16(); err != nil {
		return Header{}, err
	}
	if h.PhNum, err = r.ReadU16(); err != nil {
		return Header{}, err
	}
	if h.ShEntSize, err = r.ReadU16(); err != nil {
		return Header{}, err
	}
	if h.ShNum, err = r.ReadU16(); err != nil {
		return Header{}, err
	}
	if h.ShStrNdx, err = r.ReadU16(); err != nil {
		return Header{}, err
	}

	return h, nil
}
