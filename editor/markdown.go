package editor

import "github.com/charmbracelet/lipgloss"

// MarkdownHighlighter renders the markup the formatting commands write:
// **bold** and _italic_ runs, markers included, and list prefixes.
type MarkdownHighlighter struct {
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	ListMarker lipgloss.Style
}

func DefaultMarkdownHighlighter() MarkdownHighlighter {
	return MarkdownHighlighter{
		Bold:       lipgloss.NewStyle().Bold(true),
		Italic:     lipgloss.NewStyle().Italic(true),
		ListMarker: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
	}
}

func (h MarkdownHighlighter) HighlightLine(ctx LineContext) ([]HighlightSpan, error) {
	line := []rune(ctx.Text)
	var spans []HighlightSpan
	if _, n := listPrefix(line); n > 0 {
		spans = append(spans, HighlightSpan{StartCol: 0, EndCol: n, Style: h.ListMarker})
	}
	spans = append(spans, markerSpans(line, boldMarker, h.Bold)...)
	spans = append(spans, markerSpans(line, italicMarker, h.Italic)...)
	return spans, nil
}

// markerSpans covers each paired run of marker, markers included. An
// unpaired trailing marker is left plain.
func markerSpans(line []rune, marker string, style lipgloss.Style) []HighlightSpan {
	n := len([]rune(marker))
	pos := markerPositions(line, marker)
	var spans []HighlightSpan
	for i := 0; i+1 < len(pos); i += 2 {
		spans = append(spans, HighlightSpan{StartCol: pos[i], EndCol: pos[i+1] + n, Style: style})
	}
	return spans
}
