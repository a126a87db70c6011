package editor

import "github.com/iw2rmb/inkwell/buffer"

// ChangeEvent describes the buffer after an effective change: an edit, a
// cursor move, or a selection change.
type ChangeEvent struct {
	Version     uint64
	TextVersion uint64
	// TextChanged is false for cursor and selection only changes.
	TextChanged bool

	Cursor buffer.Pos
	// Offset is the cursor as a document rune offset.
	Offset int

	Selection struct {
		Range  buffer.Range
		Active bool
	}

	Text string
}

func buildChangeEvent(b *buffer.Buffer, prevTextVersion uint64) ChangeEvent {
	ev := ChangeEvent{
		Version:     b.Version(),
		TextVersion: b.TextVersion(),
		TextChanged: b.TextVersion() != prevTextVersion,
		Cursor:      b.Cursor(),
		Offset:      b.CursorOffset(),
		Text:        b.Text(),
	}
	if r, ok := b.Selection(); ok {
		ev.Selection.Active = true
		ev.Selection.Range = r
	}
	return ev
}
