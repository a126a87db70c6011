package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/iw2rmb/inkwell/autocomplete"
	"github.com/iw2rmb/inkwell/editor"
	"github.com/iw2rmb/inkwell/identity"
)

// chromeHeight counts the header, toolbar and status lines.
const chromeHeight = 3

type editorScreen struct {
	user  identity.User
	ed    editor.Model
	coord *autocomplete.Coordinator
	rev   uint64

	showHelp    bool
	showPreview bool
	preview     string
	previewFor  uint64

	width, height int
}

func newEditorScreen(opts Options, user identity.User) *editorScreen {
	cfg := opts.Config
	coord := autocomplete.New(cfg.AutocompleteConfig(), autocomplete.Options{
		Client: opts.Client,
		Tokens: opts.Auth,
		Logger: opts.Logger.WithPrefix("autocomplete"),
	})
	acCfg := cfg.AutocompleteConfig()

	style := editor.DefaultStyle()
	ghost := style.Ghost
	ed := editor.New(editor.Config{
		ShowLineNums:  cfg.Editor.ShowLineNumbers,
		Style:         style,
		TabWidth:      cfg.Editor.TabWidth,
		HistoryLimit:  cfg.Editor.HistoryLimit,
		Clipboard:     opts.Clipboard,
		Highlighter:   editor.DefaultMarkdownHighlighter(),
		GhostProvider: coord.Ghost,
		GhostStyleForKey: func(key string) (lipgloss.Style, bool) {
			return ghost, key == acCfg.StyleKey
		},
		OnGhostAccept: coord.Accepted,
		OnChange:      coord.Observe,
		DocID:         "inkwell",
	})
	coord.Bind(ed.Buffer())

	return &editorScreen{
		user:  user,
		ed:    ed.Focus(),
		coord: coord,
		rev:   coord.Revision(),
	}
}

func (s *editorScreen) setSize(width, height int) {
	s.width, s.height = width, height
	h := height - chromeHeight
	if h < 1 {
		h = 1
	}
	s.ed = s.ed.SetSize(width, h)
	s.previewFor = 0
}

func (s *editorScreen) close() {
	s.coord.Close()
}

func (s *editorScreen) update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		if s.showHelp {
			if key.Matches(k, shellKeys.Help) || k.String() == "esc" || k.String() == "q" {
				s.showHelp = false
			}
			return nil
		}
		switch {
		case key.Matches(k, shellKeys.Help):
			s.showHelp = true
			return nil
		case key.Matches(k, shellKeys.Preview):
			s.showPreview = !s.showPreview
			return nil
		case s.showPreview:
			// The buffer is hidden behind the preview; esc returns to it.
			if k.String() == "esc" {
				s.showPreview = false
			}
			return nil
		}
	}
	if _, ok := msg.(tea.MouseMsg); ok && s.showPreview {
		return nil
	}

	cmds := []tea.Cmd{s.coord.Update(msg)}
	var cmd tea.Cmd
	s.ed, cmd = s.ed.Update(msg)
	cmds = append(cmds, cmd)

	if rev := s.coord.Revision(); rev != s.rev {
		s.rev = rev
		s.ed = s.ed.RefreshGhost()
	}
	return tea.Batch(cmds...)
}

func (s *editorScreen) view() string {
	body := s.ed.View()
	if s.showPreview {
		body = s.renderPreview()
	}
	main := lipgloss.JoinVertical(lipgloss.Left, s.header(), s.toolbar(), body, s.status())
	if s.showHelp {
		return overlay.Composite(s.helpView(), main, overlay.Center, overlay.Center, 0, 0)
	}
	return main
}

func (s *editorScreen) header() string {
	left := headerStyle.Render("Text Editor")
	right := faintStyle.Render(fmt.Sprintf("%s • ctrl+g logout • f1 help", s.user.Email))
	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left+" "+right, maxInt(s.width, 1), "…")
	}
	return left + strings.Repeat(" ", gap) + right
}

func (s *editorScreen) toolbar() string {
	st := s.ed.FormatState()
	buttons := []struct {
		label    string
		active   bool
		disabled bool
	}{
		{"B ^b", st.Bold, false},
		{"I ^t", st.Italic, false},
		{"• ^l", st.BulletList, false},
		{"1. ^o", st.OrderedList, false},
		{"↶ ^z", false, !st.CanUndo},
		{"↷ ^y", false, !st.CanRedo},
	}
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		style := buttonStyle
		switch {
		case b.disabled:
			style = buttonDisabledStyle
		case b.active:
			style = buttonActiveStyle
		}
		parts = append(parts, style.Render(b.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (s *editorScreen) status() string {
	text := "autocomplete: " + s.coord.Phase().String()
	if sug, ok := s.coord.Suggestion(); ok {
		text += fmt.Sprintf(" • tab: %s", sug)
	}
	if s.showPreview {
		text += " • preview (ctrl+p to edit)"
	}
	return faintStyle.Render(text)
}

func (s *editorScreen) renderPreview() string {
	ver := s.ed.Buffer().TextVersion() + 1
	if s.previewFor == ver {
		return s.preview
	}
	wrap := s.width - 2
	if wrap < 20 {
		wrap = 20
	}
	out := s.ed.Buffer().Text()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if rendered, err := r.Render(out); err == nil {
			out = rendered
		}
	}
	s.preview = fitHeight(out, s.height-chromeHeight)
	s.previewFor = ver
	return s.preview
}

func fitHeight(s string, h int) string {
	if h < 1 {
		h = 1
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
