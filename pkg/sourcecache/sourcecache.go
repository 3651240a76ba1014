// Package sourcecache implements the bounded source-file cache spec.md
// §3 names: a fixed-capacity list of (absolute_path, text_contents)
// pairs with oldest-eviction on insertion, read by the Target when
// listing source around the current PC.
package sourcecache

import (
	"os"
	"strings"

	"github.com/theIDinside/mdb/pkg/mdberr"
)

// Capacity is the fixed number of files the cache holds at once, per
// spec.md's data model.
const Capacity = 5

type entry struct {
	path  string
	lines []string
}

// Cache is a fixed-capacity, FIFO-eviction cache of source file
// contents split into lines.
type Cache struct {
	entries []entry
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{}
}

// Lines returns the line-split contents of path, reading and caching it
// on first access. A cache hit returns the stored slice directly.
func (c *Cache) Lines(path string) ([]string, error) {
	for _, e := range c.entries {
		if e.path == path {
			return e.lines, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mdberr.Wrap(mdberr.FileReadError, path, err)
	}
	lines := strings.Split(string(data), "\n")

	if len(c.entries) >= Capacity {
		c.entries = c.entries[1:]
	}
	c.entries = append(c.entries, entry{path: path, lines: lines})
	return lines, nil
}

// Window returns a slice of lines from path centered on centerLine
// (1-indexed), spanning at most n lines total, clamped to the file's
// bounds, per spec.md §4.7 "Source listing at PC".
func (c *Cache) Window(path string, centerLine, n int) (lines []string, firstLine int, err error) {
	all, err := c.Lines(path)
	if err != nil {
		return nil, 0, err
	}

	half := n / 2
	start := centerLine - half
	if start < 1 {
		start = 1
	}
	end := start + n - 1
	if end > len(all) {
		end = len(all)
		start = end - n + 1
		if start < 1 {
			start = 1
		}
	}
	if start > len(all) {
		return nil, start, nil
	}
	return all[start-1 : end], start, nil
}
