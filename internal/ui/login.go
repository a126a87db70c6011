package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const loginFormWidth = 40

type loginModel struct {
	email    textinput.Model
	password textinput.Model
	focused  int

	submitting bool
	err        string
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Placeholder = "Email address"
	email.CharLimit = 254
	email.Width = loginFormWidth

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = loginFormWidth

	return loginModel{email: email, password: password}
}

func (m loginModel) setWidth(width int) loginModel {
	w := loginFormWidth
	if width > 0 && width-10 < w {
		w = width - 10
	}
	if w < 10 {
		w = 10
	}
	m.email.Width = w
	m.password.Width = w
	return m
}

func (m *loginModel) focus() tea.Cmd {
	if m.focused == 1 {
		m.email.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.email.Focus()
}

func (m loginModel) onPassword() bool { return m.focused == 1 }

func (m loginModel) focusPassword() loginModel {
	m.focused = 1
	m.focus()
	return m
}

func (m loginModel) credentials() (string, string, bool) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	return email, password, email != "" && password != ""
}

// reset clears the form after a successful sign-in.
func (m loginModel) reset() loginModel {
	m.email.SetValue("")
	m.password.SetValue("")
	m.focused = 0
	m.err = ""
	m.submitting = false
	m.focus()
	return m
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && !m.submitting {
		switch k.String() {
		case "tab", "shift+tab", "down", "up":
			// Two fields: any direction switches.
			m.focused = 1 - m.focused
			return m, m.focus()
		}
	}
	if m.submitting {
		return m, nil
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) view(sp spinner.Model, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign In"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n\n")
	}
	if m.submitting {
		b.WriteString(sp.View() + " Loading...")
	} else {
		b.WriteString(faintStyle.Render("enter: sign in • tab: next field • esc: quit"))
	}

	form := formStyle.Render(b.String())
	if width == 0 || height == 0 {
		return form
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}
