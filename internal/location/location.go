// Package location provides source positions and a row-to-offset index
// used to render diagnostics against the original source text.
package location

import "sort"

// Location is a 1-indexed row/col span within a source file. The zero
// value is the "no location" sentinel used for synthetic or builtin
// nodes that don't come from source text.
type Location struct {
	Row  int
	Col  int
	Size int
}

// None is the sentinel for synthetic nodes.
var None = Location{}

// IsNone reports whether loc is the sentinel.
func (loc Location) IsNone() bool {
	return loc == None
}

// Table maps row numbers to the byte offset where that row begins,
// built lazily from source text and queried by forward-scanning from
// the nearest already-known row.
type Table struct {
	src     string
	offsets []int // offsets[i] = byte offset of row i+1
}

// NewTable creates a table over src. No scanning happens until a row is
// first requested.
func NewTable(src string) *Table {
	return &Table{src: src, offsets: []int{0}}
}

// RowOffset returns the byte offset at which row begins, extending the
// known-row cache forward from the last row it has already indexed.
func (t *Table) RowOffset(row int) int {
	if row < 1 {
		return 0
	}
	for len(t.offsets) < row {
		last := t.offsets[len(t.offsets)-1]
		next := indexByte(t.src, last, '\n')
		if next < 0 {
			t.offsets = append(t.offsets, len(t.src))
			continue
		}
		t.offsets = append(t.offsets, next+1)
	}
	return t.offsets[row-1]
}

// FindRow returns the row number containing the given byte offset,
// extending the cache as needed.
func (t *Table) FindRow(offset int) int {
	for t.offsets[len(t.offsets)-1] <= offset && t.offsets[len(t.offsets)-1] < len(t.src) {
		last := t.offsets[len(t.offsets)-1]
		next := indexByte(t.src, last, '\n')
		if next < 0 {
			break
		}
		t.offsets = append(t.offsets, next+1)
	}
	row := sort.Search(len(t.offsets), func(i int) bool { return t.offsets[i] > offset })
	return row
}

// Line returns the raw text of the given row, without its trailing
// newline.
func (t *Table) Line(row int) string {
	start := t.RowOffset(row)
	if start > len(t.src) {
		return ""
	}
	end := indexByte(t.src, start, '\n')
	if end < 0 {
		end = len(t.src)
	}
	return t.src[start:end]
}

func indexByte(s string, from int, b byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
