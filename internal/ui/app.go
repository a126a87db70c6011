// Package ui is the inkwell terminal shell: a login screen in front of the
// autocompleting editor.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/iw2rmb/inkwell/editor"
	"github.com/iw2rmb/inkwell/identity"
	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/internal/logger"
	"github.com/iw2rmb/inkwell/suggest"
)

const authTimeout = 20 * time.Second

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenEditor
)

// Options wires the shell to its collaborators.
type Options struct {
	Auth      Auth
	Client    suggest.Client
	Config    *config.Config
	Logger    *log.Logger
	Clipboard editor.Clipboard
}

type restoredMsg struct{ err error }

type signInMsg struct{ err error }

type signedOutMsg struct{ err error }

// App is the root Bubble Tea model.
type App struct {
	opts Options

	screen  screen
	spinner spinner.Model
	login   loginModel
	editor  *editorScreen

	width, height int
}

func New(opts Options) App {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)
	return App{
		opts:    opts,
		screen:  screenLoading,
		spinner: sp,
		login:   newLoginModel(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, restoreCmd(a.opts.Auth))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.login = a.login.setWidth(msg.Width)
		if a.editor != nil {
			a.editor.setSize(msg.Width, msg.Height)
		}
		return a, nil

	case restoredMsg:
		if msg.err != nil {
			a.opts.Logger.Warn("session restore failed", "err", msg.err)
			if !errors.Is(msg.err, identity.ErrNotSignedIn) {
				a.login.err = msg.err.Error()
			}
		}
		return a.route()

	case signInMsg:
		a.login.submitting = false
		if msg.err != nil {
			a.login.err = signInError(msg.err)
			return a, nil
		}
		a.login = a.login.reset()
		return a.route()

	case signedOutMsg:
		if msg.err != nil {
			a.opts.Logger.Error("sign-out failed", "err", msg.err)
		}
		return a.route()

	case spinner.TickMsg:
		if a.screen == screenEditor {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	switch a.screen {
	case screenLogin:
		return a.updateLogin(msg)
	case screenEditor:
		return a.updateEditor(msg)
	}
	return a, nil
}

func (a App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "ctrl+q", "esc":
			return a, tea.Quit
		case "enter":
			if a.login.submitting {
				return a, nil
			}
			if !a.login.onPassword() {
				a.login = a.login.focusPassword()
				return a, nil
			}
			email, password, ok := a.login.credentials()
			if !ok {
				a.login.err = "Email and password are required."
				return a, nil
			}
			a.login.err = ""
			a.login.submitting = true
			return a, tea.Batch(a.spinner.Tick, signInCmd(a.opts.Auth, email, password))
		}
	}
	var cmd tea.Cmd
	a.login, cmd = a.login.update(msg)
	return a, cmd
}

func (a App) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, shellKeys.Quit):
			a.closeEditor()
			return a, tea.Quit
		case key.Matches(k, shellKeys.Logout):
			a.closeEditor()
			a.screen = screenLoading
			return a, tea.Batch(a.spinner.Tick, signOutCmd(a.opts.Auth))
		}
	}
	cmd := a.editor.update(msg)
	return a, cmd
}

// route picks the screen for the current identity state.
func (a App) route() (tea.Model, tea.Cmd) {
	if a.opts.Auth == nil || a.opts.Auth.Loading() {
		a.screen = screenLoading
		return a, nil
	}
	user, ok := a.opts.Auth.CurrentUser()
	if !ok {
		a.closeEditor()
		a.screen = screenLogin
		return a, a.login.focus()
	}
	if a.editor == nil {
		a.editor = newEditorScreen(a.opts, user)
		a.editor.setSize(a.width, a.height)
	}
	a.screen = screenEditor
	return a, nil
}

func (a *App) closeEditor() {
	if a.editor == nil {
		return
	}
	a.editor.close()
	a.editor = nil
}

// Close releases the editor session. The program calls it on exit.
func (a App) Close() {
	if a.editor != nil {
		a.editor.close()
	}
}

func (a App) View() string {
	switch a.screen {
	case screenLogin:
		return a.login.view(a.spinner, a.width, a.height)
	case screenEditor:
		return a.editor.view()
	default:
		msg := a.spinner.View() + " Loading..."
		if a.width == 0 || a.height == 0 {
			return msg
		}
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, msg)
	}
}

func restoreCmd(auth Auth) tea.Cmd {
	return func() tea.Msg {
		if auth == nil {
			return restoredMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		return restoredMsg{err: auth.Restore(ctx)}
	}
}

func signInCmd(auth Auth, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		return signInMsg{err: auth.SignIn(ctx, email, password)}
	}
}

func signOutCmd(auth Auth) tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: auth.SignOut()}
	}
}

func signInError(err error) string {
	var pe *identity.ProviderError
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.As(err, &pe) && pe.Message != "":
		return pe.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "Sign-in timed out."
	default:
		return err.Error()
	}
}
