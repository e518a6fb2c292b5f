package location

import "testing"

func TestNoneSentinel(t *testing.T) {
	if !None.IsNone() {
		t.Errorf("None.IsNone() = false, want true")
	}
	if (Location{Row: 1, Col: 1, Size: 1}).IsNone() {
		t.Errorf("non-zero Location reported as None")
	}
}

func TestTableRowOffset(t *testing.T) {
	src := "abc\ndefg\nhi\n"
	tbl := NewTable(src)

	tests := []struct {
		row  int
		want int
	}{
		{1, 0},
		{2, 4},
		{3, 9},
	}
	for _, tt := range tests {
		if got := tbl.RowOffset(tt.row); got != tt.want {
			t.Errorf("RowOffset(%d) = %d, want %d", tt.row, got, tt.want)
		}
	}
}

func TestTableFindRow(t *testing.T) {
	src := "abc\ndefg\nhi\n"
	tbl := NewTable(src)

	tests := []struct {
		offset int
		want   int
	}{
		{0, 1},
		{3, 1},
		{4, 2},
		{9, 3},
	}
	for _, tt := range tests {
		if got := tbl.FindRow(tt.offset); got != tt.want {
			t.Errorf("FindRow(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestTableLine(t *testing.T) {
	src := "abc\ndefg\nhi\n"
	tbl := NewTable(src)

	tests := []struct {
		row  int
		want string
	}{
		{1, "abc"},
		{2, "defg"},
		{3, "hi"},
	}
	for _, tt := range tests {
		if got := tbl.Line(tt.row); got != tt.want {
			t.Errorf("Line(%d) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestTableRowOffsetBeforeFirstRow(t *testing.T) {
	tbl := NewTable("abc")
	if got := tbl.RowOffset(0); got != 0 {
		t.Errorf("RowOffset(0) = %d, want 0", got)
	}
}
