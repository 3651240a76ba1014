// Package dwarf implements the subset of DWARF v4 mdb needs: compilation
// unit headers, the abbreviations table, attribute form decoding, and the
// .debug_pubnames index. It is built directly on pkg/bytereader and
// pkg/leb128, never on the standard library's debug/dwarf -- this package
// IS the thing SPEC_FULL.md asks to build.
package dwarf

import "github.com/theIDinside/mdb/pkg/bytereader"

// Encoding bundles the three pieces of context every attribute-form decode
// needs: the pointer width, the intra-section offset format, and the DWARF
// version. It is threaded explicitly through every call that needs it,
// never stashed in a package-level variable (SPEC_FULL.md §4.1/§9).
type Encoding struct {
	AddressSize int
	Format      bytereader.Format
	Version     uint16
}
