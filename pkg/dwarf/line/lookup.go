package line

import "path/filepath"

// Table pairs a parsed header with the rows its program emitted, the
// unit a caller queries repeatedly once a Compilation Unit's line
// program has been run.
type Table struct {
	Header Header
	Rows   []Row
}

// RowForPC returns the row covering pc, matching by row.address ==
// pc-1: the int3 trap leaves rip one byte past the breakpoint, so
// callers resolving "where am I" subtract one before matching
// (spec.md §4.5, §4.7).
func (t Table) RowForPC(pc uint64) (Row, bool) {
	target := pc - 1
	for _, row := range t.Rows {
		if row.Address == target && !row.EndSequence {
			return row, true
		}
	}
	return Row{}, false
}

// RowForSourceLine scans for the first row whose file resolves to the
// requested name and whose line matches exactly, per spec.md §4.7 "by
// source location".
func (t Table) RowForSourceLine(file string, wantLine uint64) (Row, bool) {
	for _, row := range t.Rows {
		if row.EndSequence {
			continue
		}
		if row.Line != wantLine {
			continue
		}
		entry, ok := t.Header.FileName(row.File)
		if !ok {
			continue
		}
		if entry.Name == file || filepath.Base(entry.Name) == filepath.Base(file) {
			return row, true
		}
	}
	return Row{}, false
}

// HasFile reports whether the header's file list contains a file whose
// Name matches.
func (t Table) HasFile(file string) bool {
	for _, f := range t.Header.Files {
		if f.Name == file || filepath.Base(f.Name) == filepath.Base(file) {
			return true
		}
	}
	return false
}

// ResolvePath joins a row's file entry against its include directory,
// falling back to compDir (the owning compilation unit's DW_AT_comp_dir)
// when the file's directory index is 0, per spec.md §4.7.
func (t Table) ResolvePath(row Row, compDir string) string {
	entry, ok := t.Header.FileName(row.File)
	if !ok {
		return ""
	}
	if filepath.IsAbs(entry.Name) {
		return entry.Name
	}
	dir := compDir
	if d, ok := t.Header.IncludeDir(entry.DirIndex); ok {
		dir = d
	}
	if dir == "" {
		return entry.Name
	}
	return filepath.Join(dir, entry.Name)
}
