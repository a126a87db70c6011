package buffer

type bufferSnapshot struct {
	text   string
	cursor Pos
	sel    selectionState
}

type historyState struct {
	undo []bufferSnapshot
	redo []bufferSnapshot
}

func (b *Buffer) snapshot() bufferSnapshot {
	return bufferSnapshot{text: b.Text(), cursor: b.cursor, sel: b.sel}
}

func (b *Buffer) restore(s bufferSnapshot) {
	b.lines = splitLines(s.text)
	b.cursor = b.clampPos(s.cursor)
	b.sel = selectionState{}
	if !s.sel.active {
		return
	}
	anchor, end := b.clampPos(s.sel.anchor), b.clampPos(s.sel.end)
	if anchor != end {
		b.sel = selectionState{active: true, anchor: anchor, end: end}
	}
}

// pushBounded appends s and drops the oldest entries beyond limit.
func pushBounded(stack []bufferSnapshot, s bufferSnapshot, limit int) []bufferSnapshot {
	stack = append(stack, s)
	if len(stack) > limit {
		stack = stack[len(stack)-limit:]
	}
	return stack
}

func (b *Buffer) recordUndo(prev bufferSnapshot) {
	if b.opt.HistoryLimit <= 0 {
		return
	}
	b.hist.undo = pushBounded(b.hist.undo, prev, b.opt.HistoryLimit)
	b.hist.redo = nil
}

func (b *Buffer) CanUndo() bool { return len(b.hist.undo) > 0 }

func (b *Buffer) CanRedo() bool { return len(b.hist.redo) > 0 }

// Undo restores the previous step. It reports false when there is none.
func (b *Buffer) Undo() bool {
	s, ok := pop(&b.hist.undo)
	if !ok {
		return false
	}
	b.hist.redo = append(b.hist.redo, b.travel(s))
	return true
}

// Redo reapplies the last undone step. It reports false when there is none.
func (b *Buffer) Redo() bool {
	s, ok := pop(&b.hist.redo)
	if !ok {
		return false
	}
	cur := b.travel(s)
	if b.opt.HistoryLimit > 0 {
		b.hist.undo = pushBounded(b.hist.undo, cur, b.opt.HistoryLimit)
	}
	return true
}

// travel replaces the current state with s and returns what it replaced.
func (b *Buffer) travel(s bufferSnapshot) bufferSnapshot {
	cur := b.snapshot()
	b.restore(s)
	b.version++
	if s.text != cur.text {
		b.textVersion++
	}
	return cur
}

func pop(stack *[]bufferSnapshot) (bufferSnapshot, bool) {
	n := len(*stack)
	if n == 0 {
		return bufferSnapshot{}, false
	}
	s := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return s, true
}
