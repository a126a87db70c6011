package editor

import (
	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/internal/grapheme"
)

// ScreenToDoc maps viewport-local screen coordinates to a document position.
func (m Model) ScreenToDoc(x, y int) buffer.Pos {
	return (&m).screenToDocPos(x, y)
}

// screenToDocPos maps viewport-local mouse coordinates to a document position.
//
// Coordinates are in terminal cells; (0,0) is the top-left of the visible
// content region. Gutter clicks map to the start of the line and ghost text
// is ignored.
func (m *Model) screenToDocPos(x, y int) buffer.Pos {
	if m.buf == nil {
		return buffer.Pos{}
	}

	row := clampInt(m.viewport.YOffset+y, 0, m.buf.LineCount()-1)
	visualX := x - m.gutterWidth()
	if visualX < 0 {
		return buffer.Pos{Row: row}
	}
	visualX += max(m.xOffset, 0)

	line := []rune(m.buf.Line(row))
	for _, c := range grapheme.Clusters(line, 0, m.cfg.TabWidth) {
		if visualX < c.StartCell+c.Width {
			return buffer.Pos{Row: row, Col: c.Start}
		}
	}
	return buffer.Pos{Row: row, Col: len(line)}
}
