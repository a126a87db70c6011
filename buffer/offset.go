package buffer

// Offsets count runes from the start of the document, with each line break
// counting as one rune.

// Len returns the document length in runes.
func (b *Buffer) Len() int {
	n := 0
	for i, line := range b.lines {
		if i > 0 {
			n++
		}
		n += len(line)
	}
	return n
}

// OffsetOf converts p to a document offset after clamping.
func (b *Buffer) OffsetOf(p Pos) int {
	p = b.clampPos(p)
	off := 0
	for row := 0; row < p.Row; row++ {
		off += len(b.lines[row]) + 1
	}
	return off + p.Col
}

// PosAt converts a document offset to a position. Offsets outside the
// document clamp to its start or end.
func (b *Buffer) PosAt(offset int) Pos {
	if offset <= 0 {
		return Pos{}
	}
	for row, line := range b.lines {
		if offset <= len(line) {
			return Pos{Row: row, Col: offset}
		}
		offset -= len(line) + 1
	}
	lastRow := len(b.lines) - 1
	return Pos{Row: lastRow, Col: len(b.lines[lastRow])}
}

// CursorOffset returns the cursor as a document offset.
func (b *Buffer) CursorOffset() int {
	return b.OffsetOf(b.cursor)
}

// CursorLine returns a copy of the cursor's line and the cursor column in it.
func (b *Buffer) CursorLine() ([]rune, int) {
	line := b.lines[b.cursor.Row]
	return append([]rune(nil), line...), b.cursor.Col
}
