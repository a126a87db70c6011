package editor

import (
	"strconv"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/buffer"
)

// Formatting is plain markdown: **bold**, _italic_, "- " bullets and "1. "
// ordered items. Every command is a single undo step.

const (
	boldMarker   = "**"
	italicMarker = "_"
)

type listKind int

const (
	listNone listKind = iota
	listBullet
	listOrdered
)

// FormatState reports which formatting applies at the cursor and whether
// history can move.
type FormatState struct {
	Bold        bool
	Italic      bool
	BulletList  bool
	OrderedList bool
	CanUndo     bool
	CanRedo     bool
}

func (m Model) FormatState() FormatState {
	if m.buf == nil {
		return FormatState{}
	}
	line, col := m.buf.CursorLine()
	_, _, bold := markerPairAround(line, col, boldMarker)
	_, _, italic := markerPairAround(line, col, italicMarker)
	kind, _ := listPrefix(line)
	return FormatState{
		Bold:        bold,
		Italic:      italic,
		BulletList:  kind == listBullet,
		OrderedList: kind == listOrdered,
		CanUndo:     m.buf.CanUndo(),
		CanRedo:     m.buf.CanRedo(),
	}
}

func (m Model) ToggleBold() (Model, tea.Cmd) {
	m.toggleInline(boldMarker)
	return m.afterInput(nil)
}

func (m Model) ToggleItalic() (Model, tea.Cmd) {
	m.toggleInline(italicMarker)
	return m.afterInput(nil)
}

func (m Model) ToggleBulletList() (Model, tea.Cmd) {
	m.toggleList(listBullet)
	return m.afterInput(nil)
}

func (m Model) ToggleOrderedList() (Model, tea.Cmd) {
	m.toggleList(listOrdered)
	return m.afterInput(nil)
}

func (m Model) Undo() (Model, tea.Cmd) {
	m.undo()
	return m.afterInput(nil)
}

func (m Model) Redo() (Model, tea.Cmd) {
	m.redo()
	return m.afterInput(nil)
}

func (m Model) undo() {
	if m.buf != nil && !m.cfg.ReadOnly {
		_ = m.buf.Undo()
	}
}

func (m Model) redo() {
	if m.buf != nil && !m.cfg.ReadOnly {
		_ = m.buf.Redo()
	}
}

func (m Model) toggleInline(marker string) {
	if m.buf == nil || m.cfg.ReadOnly {
		return
	}
	n := len([]rune(marker))

	if sel, ok := m.buf.Selection(); ok {
		m.toggleInlineRange(sel, marker, true)
		return
	}

	cur := m.buf.Cursor()
	line, col := m.buf.CursorLine()
	if open, closeAt, ok := markerPairAround(line, col, marker); ok {
		m.buf.Apply(
			deleteEdit(cur.Row, closeAt, closeAt+n),
			deleteEdit(cur.Row, open, open+n),
		)
		m.buf.SetCursor(buffer.Pos{Row: cur.Row, Col: clampInt(col-n, open, len(line)-2*n)})
		return
	}

	start, end := wordAround(line, col)
	if start == end {
		m.buf.Apply(insertEdit(cur.Row, col, marker+marker))
		m.buf.SetCursor(buffer.Pos{Row: cur.Row, Col: col + n})
		return
	}
	m.toggleInlineRange(buffer.Range{
		Start: buffer.Pos{Row: cur.Row, Col: start},
		End:   buffer.Pos{Row: cur.Row, Col: end},
	}, marker, false)
	m.buf.SetCursor(buffer.Pos{Row: cur.Row, Col: col + n})
}

// toggleInlineRange wraps r in marker, or unwraps it when r is already
// enclosed by marker.
func (m Model) toggleInlineRange(r buffer.Range, marker string, reselect bool) {
	n := len([]rune(marker))
	before := m.buf.TextInRange(buffer.Range{Start: buffer.Pos{Row: r.Start.Row, Col: r.Start.Col - n}, End: r.Start})
	after := m.buf.TextInRange(buffer.Range{Start: r.End, End: buffer.Pos{Row: r.End.Row, Col: r.End.Col + n}})

	shiftEnd := 0
	if r.Start.Row == r.End.Row {
		shiftEnd = n
	}

	if r.Start.Col >= n && before == marker && after == marker {
		m.buf.Apply(
			deleteEdit(r.End.Row, r.End.Col, r.End.Col+n),
			deleteEdit(r.Start.Row, r.Start.Col-n, r.Start.Col),
		)
		if reselect {
			m.buf.SetSelection(buffer.Range{
				Start: buffer.Pos{Row: r.Start.Row, Col: r.Start.Col - n},
				End:   buffer.Pos{Row: r.End.Row, Col: r.End.Col - shiftEnd},
			})
		}
		return
	}

	m.buf.Apply(
		insertEdit(r.End.Row, r.End.Col, marker),
		insertEdit(r.Start.Row, r.Start.Col, marker),
	)
	if reselect {
		m.buf.SetSelection(buffer.Range{
			Start: buffer.Pos{Row: r.Start.Row, Col: r.Start.Col + n},
			End:   buffer.Pos{Row: r.End.Row, Col: r.End.Col + shiftEnd},
		})
	}
}

func (m Model) toggleList(kind listKind) {
	if m.buf == nil || m.cfg.ReadOnly {
		return
	}

	cur := m.buf.Cursor()
	first, last := cur.Row, cur.Row
	sel, hasSel := m.buf.Selection()
	if hasSel {
		first, last = sel.Start.Row, sel.End.Row
	}

	all := true
	for row := first; row <= last; row++ {
		if k, _ := listPrefix([]rune(m.buf.Line(row))); k != kind {
			all = false
			break
		}
	}

	deltas := make(map[int]int, last-first+1)
	edits := make([]buffer.TextEdit, 0, last-first+1)
	for row := first; row <= last; row++ {
		_, plen := listPrefix([]rune(m.buf.Line(row)))
		next := ""
		if !all {
			switch kind {
			case listBullet:
				next = "- "
			case listOrdered:
				next = strconv.Itoa(row-first+1) + ". "
			}
		}
		edits = append(edits, buffer.TextEdit{
			Range: buffer.Range{Start: buffer.Pos{Row: row}, End: buffer.Pos{Row: row, Col: plen}},
			Text:  next,
		})
		deltas[row] = len([]rune(next)) - plen
	}
	m.buf.Apply(edits...)

	shift := func(p buffer.Pos) buffer.Pos {
		return buffer.Pos{Row: p.Row, Col: max(p.Col+deltas[p.Row], 0)}
	}
	if hasSel {
		m.buf.SetSelection(buffer.Range{Start: shift(sel.Start), End: shift(sel.End)})
		return
	}
	m.buf.SetCursor(shift(cur))
}

// listPrefix classifies a line's list marker and returns its rune length.
func listPrefix(line []rune) (listKind, int) {
	if len(line) >= 2 && (line[0] == '-' || line[0] == '*') && line[1] == ' ' {
		return listBullet, 2
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && line[i] == '.' && line[i+1] == ' ' {
		return listOrdered, i + 2
	}
	return listNone, 0
}

// markerPairAround finds a pair of markers on line enclosing col.
func markerPairAround(line []rune, col int, marker string) (open, closeAt int, ok bool) {
	n := len([]rune(marker))
	positions := markerPositions(line, marker)
	for i := 0; i+1 < len(positions); i += 2 {
		o, c := positions[i], positions[i+1]
		if col >= o+n && col <= c {
			return o, c, true
		}
	}
	return 0, 0, false
}

// markerPositions lists marker occurrences on line, left to right. Callers
// pair them in order. A bold marker is never read as two italic markers and
// snake_case underscores are skipped.
func markerPositions(line []rune, marker string) []int {
	mk := []rune(marker)
	n := len(mk)
	var positions []int
	for i := 0; i+n <= len(line); {
		if matchAt(line, i, mk) && !(marker == italicMarker && isEmbeddedUnderscore(line, i)) {
			positions = append(positions, i)
			i += n
			continue
		}
		i++
	}
	return positions
}

func matchAt(line []rune, i int, mk []rune) bool {
	if i+len(mk) > len(line) {
		return false
	}
	for j, r := range mk {
		if line[i+j] != r {
			return false
		}
	}
	return true
}

// isEmbeddedUnderscore reports an underscore inside an identifier like
// snake_case, which is not emphasis.
func isEmbeddedUnderscore(line []rune, i int) bool {
	return i > 0 && i+1 < len(line) && isWordRune(line[i-1]) && isWordRune(line[i+1])
}

func wordAround(line []rune, col int) (int, int) {
	col = clampInt(col, 0, len(line))
	start, end := col, col
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	for end < len(line) && isWordRune(line[end]) {
		end++
	}
	return start, end
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func insertEdit(row, col int, text string) buffer.TextEdit {
	p := buffer.Pos{Row: row, Col: col}
	return buffer.TextEdit{Range: buffer.Range{Start: p, End: p}, Text: text}
}

func deleteEdit(row, start, end int) buffer.TextEdit {
	return buffer.TextEdit{Range: buffer.Range{
		Start: buffer.Pos{Row: row, Col: start},
		End:   buffer.Pos{Row: row, Col: end},
	}}
}
