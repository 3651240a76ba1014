package line

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	h := Header{
		IncludeDirs: []string{"/src"},
		Files: []FileEntry{
			{Name: "main.c", DirIndex: 1},
		},
	}
	rows := []Row{
		{Address: 0x1000, File: 1, Line: 10},
		{Address: 0x1010, File: 1, Line: 11},
		{Address: 0x1020, File: 1, Line: 0, EndSequence: true},
	}
	return Table{Header: h, Rows: rows}
}

func TestRowForPCMatchesTrapMinusOne(t *testing.T) {
	table := sampleTable()
	row, ok := table.RowForPC(0x1011) // int3 leaves rip one past the breakpoint
	require.True(t, ok)
	assert.EqualValues(t, 11, row.Line)
}

func TestRowForPCSkipsEndSequenceRows(t *testing.T) {
	table := sampleTable()
	_, ok := table.RowForPC(0x1021)
	assert.False(t, ok)
}

func TestRowForPCNoMatch(t *testing.T) {
	table := sampleTable()
	_, ok := table.RowForPC(0x9999)
	assert.False(t, ok)
}

func TestRowForSourceLineMatchesByBaseName(t *testing.T) {
	table := sampleTable()
	row, ok := table.RowForSourceLine("main.c", 10)
	require.True(t, ok)
	assert.EqualValues(t, 0x1000, row.Address)

	row2, ok := table.RowForSourceLine("/some/other/path/main.c", 11)
	require.True(t, ok)
	assert.EqualValues(t, 0x1010, row2.Address)
}

func TestRowForSourceLineNoMatch(t *testing.T) {
	table := sampleTable()
	_, ok := table.RowForSourceLine("main.c", 999)
	assert.False(t, ok)
}

func TestHasFile(t *testing.T) {
	table := sampleTable()
	assert.True(t, table.HasFile("main.c"))
	assert.True(t, table.HasFile("/different/dir/main.c"))
	assert.False(t, table.HasFile("other.c"))
}

func TestResolvePathUsesIncludeDirWhenRelative(t *testing.T) {
	table := sampleTable()
	row := table.Rows[0]
	path := table.ResolvePath(row, "/compdir")
	assert.Equal(t, "/src/main.c", path)
}

func TestResolvePathFallsBackToCompDirWhenDirIndexZero(t *testing.T) {
	h := Header{Files: []FileEntry{{Name: "util.c", DirIndex: 0}}}
	table := Table{Header: h}
	path := table.ResolvePath(Row{File: 1}, "/compdir")
	assert.Equal(t, "/compdir/util.c", path)
}

func TestResolvePathAbsoluteFileNameIsReturnedAsIs(t *testing.T) {
	h := Header{Files: []FileEntry{{Name: "/abs/path/a.c"}}}
	table := Table{Header: h}
	path := table.ResolvePath(Row{File: 1}, "/compdir")
	assert.Equal(t, "/abs/path/a.c", path)
}
