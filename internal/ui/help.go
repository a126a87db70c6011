package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"

	"github.com/iw2rmb/inkwell/editor"
)

// shellKeys are the bindings the shell handles before the editor sees them.
var shellKeys = struct {
	Preview, Help, Logout, Quit key.Binding
}{
	Preview: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "toggle preview")),
	Help:    key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "toggle help")),
	Logout:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "log out")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
}

// helpKeys adapts the editor and shell bindings to help.KeyMap.
type helpKeys struct {
	km editor.KeyMap
}

func (h helpKeys) ShortHelp() []key.Binding {
	return []key.Binding{h.km.AcceptGhost, shellKeys.Help, shellKeys.Quit}
}

func (h helpKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.km.AcceptGhost, h.km.Bold, h.km.Italic, h.km.BulletList, h.km.OrderedList},
		{h.km.Undo, h.km.Redo, h.km.Copy, h.km.Cut, h.km.Paste},
		{h.km.WordLeft, h.km.WordRight, h.km.Home, h.km.End},
		{shellKeys.Preview, shellKeys.Help, shellKeys.Logout, shellKeys.Quit},
	}
}

func (s *editorScreen) helpView() string {
	h := help.New()
	h.ShowAll = true
	var b strings.Builder
	b.WriteString(headerStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(h.View(helpKeys{km: s.ed.KeyMap()}))
	b.WriteString("\n\n")
	b.WriteString(faintStyle.Render("Press Esc or F1 to close"))
	return popupStyle.Render(b.String())
}
