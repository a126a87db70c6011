package editor

import "github.com/iw2rmb/inkwell/buffer"

type GhostContext struct {
	Row         int
	Col         int // rune index in the line
	Offset      int // document rune offset of the cursor
	LineText    string
	IsEndOfLine bool

	// Optional host metadata for caching.
	DocID      string
	DocVersion uint64
}

// Ghost is inline suggestion text rendered after the cursor. Edits are
// applied as one undo step when the ghost is accepted.
type Ghost struct {
	Text     string
	StyleKey string
	Edits    []buffer.TextEdit
}

type GhostProvider func(ctx GhostContext) (Ghost, bool)

type ghostCacheKey struct {
	docID      string
	docVersion uint64
	gen        uint64
	row        int
	col        int
}

type ghostCache struct {
	valid   bool
	key     ghostCacheKey
	present bool
	ghost   Ghost
}

func (c *ghostCache) get(key ghostCacheKey) (Ghost, bool, bool) {
	if !c.valid || c.key != key {
		return Ghost{}, false, false
	}
	return c.ghost, c.present, true
}

func (c *ghostCache) put(key ghostCacheKey, ghost Ghost, present bool) {
	c.valid = true
	c.key = key
	c.present = present
	c.ghost = ghost
}

func (m *Model) ghostForCursor() (Ghost, bool) {
	if m.buf == nil || m.cfg.GhostProvider == nil || !m.focused {
		return Ghost{}, false
	}

	line, col := m.buf.CursorLine()
	row := m.buf.Cursor().Row

	key := ghostCacheKey{
		docID:      m.cfg.DocID,
		docVersion: m.buf.Version(),
		gen:        m.ghostGen,
		row:        row,
		col:        col,
	}
	if g, present, hit := m.ghostCache.get(key); hit {
		return g, present
	}

	ghost, present := m.cfg.GhostProvider(GhostContext{
		Row:         row,
		Col:         col,
		Offset:      m.buf.CursorOffset(),
		LineText:    string(line),
		IsEndOfLine: col == len(line),
		DocID:       m.cfg.DocID,
		DocVersion:  m.buf.Version(),
	})
	ghost.Text = sanitizeSingleLine(ghost.Text)
	if present && ghost.Text == "" && len(ghost.Edits) == 0 {
		present = false
	}
	m.ghostCache.put(key, ghost, present)
	return ghost, present
}

func (m *Model) ghostInsertion(row int) (virtualInsertion, bool) {
	if m.buf == nil || m.buf.Cursor().Row != row {
		return virtualInsertion{}, false
	}
	ghost, ok := m.ghostForCursor()
	if !ok || ghost.Text == "" {
		return virtualInsertion{}, false
	}
	return virtualInsertion{
		Col:      m.buf.Cursor().Col,
		Text:     ghost.Text,
		StyleKey: ghost.StyleKey,
	}, true
}

// acceptGhost applies the visible ghost, if any, and reports whether it did.
func (m *Model) acceptGhost() bool {
	if m.cfg.ReadOnly {
		return false
	}
	ghost, ok := m.ghostForCursor()
	if !ok || len(ghost.Edits) == 0 {
		return false
	}
	m.buf.Apply(ghost.Edits...)
	m.ghostGen++
	if m.cfg.OnGhostAccept != nil {
		m.cfg.OnGhostAccept(ghost)
	}
	return true
}
