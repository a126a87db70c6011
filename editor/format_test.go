package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/buffer"
)

func TestToggleBold_WrapsAndUnwrapsSelection(t *testing.T) {
	m := New(Config{Text: "hello"})
	m.buf.SetSelection(buffer.Range{Start: buffer.Pos{Row: 0, Col: 1}, End: buffer.Pos{Row: 0, Col: 4}})

	m, _ = m.ToggleBold()
	if got, want := m.buf.Text(), "h**ell**o"; got != want {
		t.Fatalf("text after bold: got %q, want %q", got, want)
	}
	sel, ok := m.buf.Selection()
	if !ok || sel != (buffer.Range{Start: buffer.Pos{Row: 0, Col: 3}, End: buffer.Pos{Row: 0, Col: 6}}) {
		t.Fatalf("selection after bold: got %v (%v)", sel, ok)
	}
	if !m.FormatState().Bold {
		t.Fatalf("expected bold state inside markers")
	}

	m, _ = m.ToggleBold()
	if got, want := m.buf.Text(), "hello"; got != want {
		t.Fatalf("text after unbold: got %q, want %q", got, want)
	}
	if m.FormatState().Bold {
		t.Fatalf("expected bold state cleared")
	}
}

func TestToggleBold_IsOneUndoStep(t *testing.T) {
	m := New(Config{Text: "word"})
	m.buf.SetCursor(buffer.Pos{Row: 0, Col: 2})

	m, _ = m.ToggleBold()
	if got, want := m.buf.Text(), "**word**"; got != want {
		t.Fatalf("text after bold: got %q, want %q", got, want)
	}
	if got, want := m.buf.Cursor(), (buffer.Pos{Row: 0, Col: 4}); got != want {
		t.Fatalf("cursor after bold: got %v, want %v", got, want)
	}

	m, _ = m.Undo()
	if got, want := m.buf.Text(), "word"; got != want {
		t.Fatalf("text after undo: got %q, want %q", got, want)
	}
	st := m.FormatState()
	if st.CanUndo || !st.CanRedo {
		t.Fatalf("history state after undo: got %+v", st)
	}
}

func TestToggleItalic_CursorInsideEmphasisUnwraps(t *testing.T) {
	m := New(Config{Text: "a _word_ b"})
	m.buf.SetCursor(buffer.Pos{Row: 0, Col: 5})

	if !m.FormatState().Italic {
		t.Fatalf("expected italic state")
	}
	m, _ = m.ToggleItalic()
	if got, want := m.buf.Text(), "a word b"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
	if got, want := m.buf.Cursor(), (buffer.Pos{Row: 0, Col: 4}); got != want {
		t.Fatalf("cursor: got %v, want %v", got, want)
	}
}

func TestToggleItalic_IgnoresSnakeCase(t *testing.T) {
	m := New(Config{Text: "snake_case_name"})
	m.buf.SetCursor(buffer.Pos{Row: 0, Col: 7})

	if m.FormatState().Italic {
		t.Fatalf("underscores inside identifiers are not emphasis")
	}
}

func TestToggleItalic_EmptyLineInsertsMarkers(t *testing.T) {
	m := New(Config{Text: ""})

	m, _ = m.ToggleItalic()
	if got, want := m.buf.Text(), "__"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
	if got, want := m.buf.Cursor(), (buffer.Pos{Row: 0, Col: 1}); got != want {
		t.Fatalf("cursor: got %v, want %v", got, want)
	}
}

func TestToggleBulletList_SelectionLines(t *testing.T) {
	m := New(Config{Text: "one\ntwo\nthree"})
	m.buf.SetSelection(buffer.Range{Start: buffer.Pos{Row: 0, Col: 1}, End: buffer.Pos{Row: 1, Col: 2}})

	m, _ = m.ToggleBulletList()
	if got, want := m.buf.Text(), "- one\n- two\nthree"; got != want {
		t.Fatalf("text after bullet: got %q, want %q", got, want)
	}
	sel, ok := m.buf.Selection()
	if !ok || sel != (buffer.Range{Start: buffer.Pos{Row: 0, Col: 3}, End: buffer.Pos{Row: 1, Col: 4}}) {
		t.Fatalf("selection after bullet: got %v (%v)", sel, ok)
	}
	if !m.FormatState().BulletList {
		t.Fatalf("expected bullet state")
	}

	m, _ = m.ToggleBulletList()
	if got, want := m.buf.Text(), "one\ntwo\nthree"; got != want {
		t.Fatalf("text after unbullet: got %q, want %q", got, want)
	}
}

func TestToggleOrderedList_ReplacesBulletsAndNumbers(t *testing.T) {
	m := New(Config{Text: "- a\n- b"})
	m.buf.SetSelection(buffer.Range{Start: buffer.Pos{Row: 0, Col: 0}, End: buffer.Pos{Row: 1, Col: 3}})

	m, _ = m.ToggleOrderedList()
	if got, want := m.buf.Text(), "1. a\n2. b"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
	st := m.FormatState()
	if !st.OrderedList || st.BulletList {
		t.Fatalf("list state: got %+v", st)
	}

	m, _ = m.Undo()
	if got, want := m.buf.Text(), "- a\n- b"; got != want {
		t.Fatalf("text after undo: got %q, want %q", got, want)
	}
}

func TestFormatKeys_DriveCommands(t *testing.T) {
	m := New(Config{Text: "item"})
	m.buf.SetCursor(buffer.Pos{Row: 0, Col: 4})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if got, want := m.buf.Text(), "- item"; got != want {
		t.Fatalf("text after ctrl+l: got %q, want %q", got, want)
	}
	if got, want := m.buf.Cursor(), (buffer.Pos{Row: 0, Col: 6}); got != want {
		t.Fatalf("cursor after ctrl+l: got %v, want %v", got, want)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	if got, want := m.buf.Text(), "- **item**"; got != want {
		t.Fatalf("text after ctrl+b: got %q, want %q", got, want)
	}
}

func TestFormat_ReadOnlyIgnoresCommands(t *testing.T) {
	m := New(Config{Text: "word", ReadOnly: true})

	m, _ = m.ToggleBold()
	m, _ = m.ToggleBulletList()
	if got, want := m.buf.Text(), "word"; got != want {
		t.Fatalf("text: got %q, want %q", got, want)
	}
}
