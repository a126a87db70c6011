package buffer

import "cmp"

// Pos is a 0-based (row, col) location. Col counts runes within the row.
type Pos struct {
	Row int
	Col int
}

// Range spans [Start, End). Producers may hand out reversed ranges; call
// NormalizeRange before slicing with one.
type Range struct {
	Start Pos
	End   Pos
}

// TextEdit replaces Range with Text. Text may span lines.
type TextEdit struct {
	Range Range
	Text  string
}

// ComparePos orders positions by row, then column.
func ComparePos(a, b Pos) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

func NormalizeRange(r Range) Range {
	if ComparePos(r.Start, r.End) > 0 {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

func (r Range) IsEmpty() bool { return r.Start == r.End }

// ClampPos pulls p inside a document of rowCount rows (at least one) whose
// row lengths lineLen reports. A nil lineLen treats every row as empty.
func ClampPos(p Pos, rowCount int, lineLen func(row int) int) Pos {
	row := min(max(p.Row, 0), max(rowCount, 1)-1)
	width := 0
	if lineLen != nil {
		width = max(lineLen(row), 0)
	}
	return Pos{Row: row, Col: min(max(p.Col, 0), width)}
}

func ClampRange(r Range, rowCount int, lineLen func(row int) int) Range {
	return Range{
		Start: ClampPos(r.Start, rowCount, lineLen),
		End:   ClampPos(r.End, rowCount, lineLen),
	}
}
