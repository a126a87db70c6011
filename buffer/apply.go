package buffer

// Apply runs edits in order as one undo step. Each range is read against the
// text left by the edits before it and clamped into bounds. The cursor ends
// after the last edit that changed anything; no-op edits are skipped and a
// batch of only no-ops leaves the buffer untouched.
func (b *Buffer) Apply(edits ...TextEdit) {
	prev := b.snapshot()
	var (
		next    Pos
		changed bool
	)
	for _, e := range edits {
		if p, ok := b.replaceRange(e.Range, e.Text); ok {
			next, changed = p, true
		}
	}
	if changed {
		b.commitEdit(prev, next)
	}
}
