package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/internal/grapheme"
)

type tokenKind int

const (
	tokenDoc tokenKind = iota
	tokenGhost
	tokenEOLCursor
)

type renderToken struct {
	kind      tokenKind
	text      string
	startCell int
	width     int

	// Rune columns for doc tokens.
	docStart int
	docEnd   int

	styleKey string
}

func (m *Model) renderContent() string {
	if m.buf == nil {
		return ""
	}

	n := m.buf.LineCount()
	cursor := m.buf.Cursor()
	sel, selOK := m.buf.Selection()
	digits := 0
	if m.cfg.ShowLineNums {
		digits = gutterDigits(n)
	}

	left := max(m.xOffset, 0)
	right := int(^uint(0) >> 1)
	if w := m.contentWidth(); w > 0 {
		right = left + w
	}

	out := make([]string, 0, n)
	for row := 0; row < n; row++ {
		var sb strings.Builder
		if m.cfg.ShowLineNums {
			numStyle := m.cfg.Style.LineNum
			if m.focused && row == cursor.Row {
				numStyle = m.cfg.Style.LineNumActive
			}
			sb.WriteString(numStyle.Render(fmt.Sprintf("%*d", digits, row+1)))
			sb.WriteString(m.cfg.Style.Gutter.Render(" "))
		}

		line := []rune(m.buf.Line(row))
		ghost, hasGhost := m.ghostInsertion(row)
		hasCursor := m.focused && row == cursor.Row
		toks := buildLineTokens(line, m.cfg.TabWidth, cursor.Col, hasCursor, ghost, hasGhost)
		selStart, selEnd, hasSel := selectionColsForRow(sel, selOK, row, len(line))
		spans := m.highlightForLine(row, line, cursor)

		for _, tok := range toks {
			spanL := max(tok.startCell, left)
			spanR := min(tok.startCell+tok.width, right)
			if spanL >= spanR && !(tok.width == 0 && tok.startCell >= left && tok.startCell < right) {
				continue
			}

			style := m.tokenStyle(tok, cursor.Col, hasCursor, selStart, selEnd, hasSel, spans)
			if spanR-spanL == tok.width {
				sb.WriteString(style.Render(tok.text))
				continue
			}
			// Partially visible wide cluster: keep alignment with blanks.
			sb.WriteString(m.cfg.Style.Text.Render(strings.Repeat(" ", spanR-spanL)))
		}
		out = append(out, sb.String())
	}

	return strings.Join(out, "\n")
}

func (m *Model) tokenStyle(tok renderToken, cursorCol int, hasCursor bool, selStart, selEnd int, hasSel bool, spans []HighlightSpan) lipgloss.Style {
	st := m.cfg.Style
	switch tok.kind {
	case tokenEOLCursor:
		return st.Cursor
	case tokenGhost:
		style := st.Ghost.Inherit(st.Text)
		if m.cfg.GhostStyleForKey != nil && tok.styleKey != "" {
			if keyed, ok := m.cfg.GhostStyleForKey(tok.styleKey); ok {
				style = keyed.Inherit(st.Text)
			}
		}
		return style
	default:
		if hasCursor && cursorCol >= tok.docStart && cursorCol < tok.docEnd {
			return st.Cursor
		}
		if hasSel && tok.docStart < selEnd && tok.docEnd > selStart {
			return st.Selection
		}
		for _, sp := range spans {
			if tok.docStart < sp.EndCol && tok.docEnd > sp.StartCol {
				return sp.Style.Inherit(st.Text)
			}
		}
		return st.Text
	}
}

// buildLineTokens lays out one logical line with an optional ghost insertion.
// The cursor at end of line takes one placeholder cell before the ghost.
func buildLineTokens(line []rune, tabWidth, cursorCol int, hasCursor bool, ghost virtualInsertion, hasGhost bool) []renderToken {
	clusters := grapheme.Clusters(line, 0, tabWidth)
	toks := make([]renderToken, 0, len(clusters)+2)
	shift := 0
	ghostCol := clampInt(ghost.Col, 0, len(line))

	emitGhost := func(cell int) {
		for _, c := range grapheme.Clusters([]rune(ghost.Text), cell, tabWidth) {
			toks = append(toks, renderToken{kind: tokenGhost, text: c.Text, startCell: c.StartCell, width: c.Width, styleKey: ghost.StyleKey})
			shift += c.Width
		}
	}

	for _, c := range clusters {
		if hasGhost && ghostCol <= c.Start {
			emitGhost(c.StartCell + shift)
			hasGhost = false
		}
		toks = append(toks, renderToken{
			kind:      tokenDoc,
			text:      c.Text,
			startCell: c.StartCell + shift,
			width:     c.Width,
			docStart:  c.Start,
			docEnd:    c.End,
		})
	}

	end := 0
	if len(toks) > 0 {
		last := toks[len(toks)-1]
		end = last.startCell + last.width
	}
	if hasCursor && cursorCol >= len(line) {
		toks = append(toks, renderToken{kind: tokenEOLCursor, text: " ", startCell: end, width: 1, docStart: len(line), docEnd: len(line)})
		end++
	}
	if hasGhost {
		shift = 0
		emitGhost(end)
	}
	return toks
}

func selectionColsForRow(sel buffer.Range, ok bool, row, lineLen int) (int, int, bool) {
	if !ok || row < sel.Start.Row || row > sel.End.Row {
		return 0, 0, false
	}
	start, end := 0, lineLen
	if row == sel.Start.Row {
		start = sel.Start.Col
	}
	if row == sel.End.Row {
		end = sel.End.Col
	}
	return start, end, start < end
}
