package editor

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Config configures the editor Model.
type Config struct {
	// Initial text for the internal buffer.
	Text string

	// Rendering options.
	ShowLineNums bool
	Style        Style
	TabWidth     int // default: 4

	// Forwarded to buffer.Options.
	HistoryLimit int

	ReadOnly bool

	// KeyMap overrides the default bindings when non-zero.
	KeyMap KeyMap

	Clipboard Clipboard

	// Highlighter styles spans of each line. Cursor and selection styles win
	// over highlights.
	Highlighter Highlighter

	// GhostProvider supplies inline suggestion text at the cursor.
	GhostProvider GhostProvider
	// GhostStyleForKey resolves Ghost.StyleKey to a style; unknown keys fall
	// back to Style.Ghost.
	GhostStyleForKey func(key string) (lipgloss.Style, bool)
	// OnGhostAccept is called after a ghost's edits are applied.
	OnGhostAccept func(Ghost)

	// OnChange is called after every effective buffer change made through
	// Update. The returned command is batched into Update's result.
	OnChange func(ChangeEvent) tea.Cmd

	// DocID is passed through to providers for caching.
	DocID string
}
