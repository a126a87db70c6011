package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/buffer"
)

// updateMouse scrolls on the wheel and places the cursor or extends a
// selection with the left button. Clicks outside the text area are ignored;
// drags that leave it are pinned to its edge.
func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if !m.focused || m.buf == nil {
		return m, cmd
	}

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && m.inTextArea(msg.X, msg.Y) {
			m.press(m.screenToDocPos(msg.X, msg.Y), msg.Shift)
		}
	case tea.MouseActionMotion:
		if m.mouseDragging {
			p := m.screenToDocPos(m.pinToTextArea(msg.X, msg.Y))
			m.buf.SetSelection(buffer.Range{Start: m.mouseAnchor, End: p})
		}
	case tea.MouseActionRelease:
		m.mouseDragging = false
	}
	return m, cmd
}

// press starts a drag at p. With shift held the existing selection anchor,
// or the cursor, stays put and the selection grows to p.
func (m *Model) press(p buffer.Pos, extend bool) {
	m.mouseDragging = true
	if !extend {
		m.mouseAnchor = p
		m.buf.SetCursor(p)
		return
	}
	m.mouseAnchor = m.buf.Cursor()
	if raw, ok := m.buf.SelectionRaw(); ok {
		m.mouseAnchor = raw.Start
	}
	m.buf.SetSelection(buffer.Range{Start: m.mouseAnchor, End: p})
}

func (m Model) inTextArea(x, y int) bool {
	w, h := m.viewport.Width, m.viewport.Height
	return w > 0 && h > 0 && x >= 0 && x < w && y >= 0 && y < h
}

func (m Model) pinToTextArea(x, y int) (int, int) {
	if w := m.viewport.Width; w > 0 {
		x = clampInt(x, 0, w-1)
	}
	if h := m.viewport.Height; h > 0 {
		y = clampInt(y, 0, h-1)
	}
	return x, y
}
