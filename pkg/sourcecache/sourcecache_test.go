package sourcecache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "source.c")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLinesReadsAndCaches(t *testing.T) {
	path := writeTempFile(t, "a\nb\nc\n")
	c := New()

	lines, err := c.Lines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", ""}, lines)

	lines2, err := c.Lines(path)
	require.NoError(t, err)
	assert.Equal(t, lines, lines2)
}

func TestLinesMissingFileIsError(t *testing.T) {
	c := New()
	_, err := c.Lines("/nonexistent/path/to/source.c")
	assert.Error(t, err)
}

func TestCacheEvictsOldestOnceOverCapacity(t *testing.T) {
	c := New()
	var paths []string
	for i := 0; i < Capacity+2; i++ {
		p := writeTempFile(t, fmt.Sprintf("file %d\n", i))
		paths = append(paths, p)
		_, err := c.Lines(p)
		require.NoError(t, err)
	}
	assert.Len(t, c.entries, Capacity)
	assert.Equal(t, paths[len(paths)-Capacity], c.entries[0].path, "oldest-inserted surviving entry must be the first one still under capacity")
}

func TestWindowCentersOnLineWithinBounds(t *testing.T) {
	var contents string
	for i := 1; i <= 20; i++ {
		contents += fmt.Sprintf("line %d\n", i)
	}
	path := writeTempFile(t, contents)
	c := New()

	lines, first, err := c.Window(path, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, first)
	assert.Len(t, lines, 5)
	assert.Equal(t, "line 8", lines[0])
	assert.Equal(t, "line 12", lines[4])
}

func TestWindowClampsAtFileStart(t *testing.T) {
	path := writeTempFile(t, "1\n2\n3\n4\n5\n")
	c := New()

	lines, first, err := c.Window(path, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	assert.NotEmpty(t, lines)
}

func TestWindowClampsAtFileEnd(t *testing.T) {
	path := writeTempFile(t, "1\n2\n3\n")
	c := New()

	lines, first, err := c.Window(path, 3, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first, 1)
	assert.LessOrEqual(t, len(lines), 4) // file has 3 lines plus the trailing empty split
}
