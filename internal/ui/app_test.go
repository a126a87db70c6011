package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/iw2rmb/inkwell/autocomplete"
	"github.com/iw2rmb/inkwell/identity"
	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/suggest"
)

type fakeAuth struct {
	mu        sync.Mutex
	user      *identity.User
	signInErr error
	email     string
	password  string
	signOuts  int
}

func (f *fakeAuth) Restore(context.Context) error { return nil }
func (f *fakeAuth) Loading() bool                 { return false }

func (f *fakeAuth) CurrentUser() (identity.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return identity.User{}, false
	}
	return *f.user, true
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email, f.password = email, password
	if f.signInErr != nil {
		return f.signInErr
	}
	f.user = &identity.User{ID: "u1", Email: email}
	return nil
}

func (f *fakeAuth) SignOut() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	f.signOuts++
	return nil
}

func (f *fakeAuth) Token(context.Context) (string, error) { return "tok", nil }

func testOptions(auth *fakeAuth, client suggest.Client) Options {
	cfg := config.DefaultConfig()
	cfg.Autocomplete.DebounceMS = 1
	return Options{Auth: auth, Client: client, Config: cfg}
}

// newTestApp builds an App whose login inputs do not blink, so pumping
// messages terminates.
func newTestApp(opts Options) App {
	a := New(opts)
	a.login.email.Cursor.SetMode(cursor.CursorStatic)
	a.login.password.Cursor.SetMode(cursor.CursorStatic)
	return a
}

// run executes cmd and flattens batches into their messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// pump feeds msg to a and keeps feeding the resulting messages until none
// are left. Spinner ticks are dropped so the loop ends.
func pump(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatalf("message loop did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		m, cmd := a.Update(next)
		a = m.(App)
		for _, out := range run(cmd) {
			if _, ok := out.(tea.QuitMsg); ok {
				continue
			}
			if _, ok := out.(spinner.TickMsg); ok {
				continue
			}
			queue = append(queue, out)
		}
	}
	return a
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func view(a App) string { return ansi.Strip(a.View()) }

func signedInApp(t *testing.T, client suggest.Client) (App, *fakeAuth) {
	t.Helper()
	auth := &fakeAuth{user: &identity.User{ID: "u1", Email: "ada@example.com"}}
	a := newTestApp(testOptions(auth, client))
	a = pump(t, a, tea.WindowSizeMsg{Width: 80, Height: 20})
	a = pump(t, a, restoredMsg{})
	if a.screen != screenEditor {
		t.Fatalf("screen = %v, want editor", a.screen)
	}
	t.Cleanup(a.Close)
	return a, auth
}

func TestApp_LoadingUntilRestored(t *testing.T) {
	a := newTestApp(testOptions(&fakeAuth{}, nil))
	if !strings.Contains(view(a), "Loading...") {
		t.Fatalf("view = %q", view(a))
	}
	if a.Init() == nil {
		t.Fatalf("Init returned no command")
	}
}

func TestApp_RestoreWithoutSessionShowsLogin(t *testing.T) {
	a := newTestApp(testOptions(&fakeAuth{}, nil))
	a = pump(t, a, restoredMsg{})
	if a.screen != screenLogin {
		t.Fatalf("screen = %v, want login", a.screen)
	}
	if !strings.Contains(view(a), "Sign In") {
		t.Fatalf("login view = %q", view(a))
	}
}

func TestApp_LoginFlow(t *testing.T) {
	auth := &fakeAuth{}
	a := newTestApp(testOptions(auth, nil))
	a = pump(t, a, restoredMsg{})

	a = pump(t, a, keyRunes("ada@example.com"))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if !a.login.onPassword() {
		t.Fatalf("enter on email did not move to password")
	}
	a = pump(t, a, keyRunes("pw"))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if auth.email != "ada@example.com" || auth.password != "pw" {
		t.Fatalf("SignIn got %q / %q", auth.email, auth.password)
	}
	if a.screen != screenEditor {
		t.Fatalf("screen = %v, want editor", a.screen)
	}
	v := view(a)
	if !strings.Contains(v, "Text Editor") || !strings.Contains(v, "ada@example.com") {
		t.Fatalf("editor view = %q", v)
	}
	a.Close()
}

func TestApp_LoginErrorIsShownAndRetryable(t *testing.T) {
	auth := &fakeAuth{signInErr: &identity.ProviderError{Status: 400, Code: "INVALID_PASSWORD", Message: "INVALID_PASSWORD"}}
	a := newTestApp(testOptions(auth, nil))
	a = pump(t, a, restoredMsg{})

	a = pump(t, a, keyRunes("ada@example.com"))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	a = pump(t, a, keyRunes("nope"))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.screen != screenLogin {
		t.Fatalf("screen = %v, want login", a.screen)
	}
	if !strings.Contains(view(a), "Invalid email or password.") {
		t.Fatalf("view = %q", view(a))
	}

	auth.signInErr = nil
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.screen != screenEditor {
		t.Fatalf("retry did not sign in; screen = %v", a.screen)
	}
	a.Close()
}

func TestApp_EmptyCredentials(t *testing.T) {
	a := newTestApp(testOptions(&fakeAuth{}, nil))
	a = pump(t, a, restoredMsg{})
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(view(a), "Email and password are required.") {
		t.Fatalf("view = %q", view(a))
	}
}

func TestApp_GhostSuggestionAndAccept(t *testing.T) {
	client := suggest.ClientFunc(func(_ context.Context, req suggest.Request) ([]string, error) {
		if req.Query == "he" && req.Token == "tok" {
			return []string{"hello"}, nil
		}
		return nil, nil
	})
	a, _ := signedInApp(t, client)

	a = pump(t, a, keyRunes("h"))
	a = pump(t, a, keyRunes("e"))

	if a.editor.coord.Phase() != autocomplete.PhaseSuggested {
		t.Fatalf("phase = %v, want suggested", a.editor.coord.Phase())
	}
	v := view(a)
	if !strings.Contains(v, "llo") {
		t.Fatalf("ghost not rendered: %q", v)
	}
	if !strings.Contains(v, "autocomplete: suggested") {
		t.Fatalf("status not shown: %q", v)
	}

	a = pump(t, a, tea.KeyMsg{Type: tea.KeyTab})
	if got := a.editor.ed.Buffer().Text(); got != "hello" {
		t.Fatalf("text after accept = %q, want hello", got)
	}
}

func TestApp_TabWithoutSuggestionInsertsTab(t *testing.T) {
	a, _ := signedInApp(t, suggest.ClientFunc(func(context.Context, suggest.Request) ([]string, error) {
		return nil, nil
	}))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyTab})
	if got := a.editor.ed.Buffer().Text(); got != "\t" {
		t.Fatalf("text = %q, want a tab", got)
	}
}

func TestApp_LogoutClosesSessionAndShowsLogin(t *testing.T) {
	a, auth := signedInApp(t, nil)
	coord := a.editor.coord

	a = pump(t, a, tea.KeyMsg{Type: tea.KeyCtrlG})

	if auth.signOuts != 1 {
		t.Fatalf("SignOut calls = %d", auth.signOuts)
	}
	if a.screen != screenLogin || a.editor != nil {
		t.Fatalf("screen = %v, editor = %v", a.screen, a.editor != nil)
	}
	if coord.Phase() != autocomplete.PhaseIdle {
		t.Fatalf("coordinator phase = %v after logout", coord.Phase())
	}
}

func TestApp_QuitClosesEditor(t *testing.T) {
	a, _ := signedInApp(t, nil)
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	a = m.(App)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("command is not tea.Quit")
	}
	if a.editor != nil {
		t.Fatalf("editor not closed on quit")
	}
}

func TestApp_HelpAndPreviewToggles(t *testing.T) {
	a, _ := signedInApp(t, nil)
	a = pump(t, a, keyRunes("# Title"))

	a = pump(t, a, tea.KeyMsg{Type: tea.KeyF1})
	if !strings.Contains(view(a), "Keyboard Shortcuts") {
		t.Fatalf("help not shown: %q", view(a))
	}
	// Keys do not reach the editor while help is open.
	a = pump(t, a, keyRunes("x"))
	if got := a.editor.ed.Buffer().Text(); got != "# Title" {
		t.Fatalf("text = %q", got)
	}
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(view(a), "Keyboard Shortcuts") {
		t.Fatalf("help not closed")
	}

	a = pump(t, a, tea.KeyMsg{Type: tea.KeyCtrlP})
	v := view(a)
	if !strings.Contains(v, "preview") || !strings.Contains(v, "Title") {
		t.Fatalf("preview view = %q", v)
	}
}

func TestApp_PreviewSwallowsEditingKeys(t *testing.T) {
	a, _ := signedInApp(t, nil)
	a = pump(t, a, keyRunes("draft"))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyCtrlP})

	a = pump(t, a, keyRunes("x"))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyBackspace})
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyCtrlB})
	if got := a.editor.ed.Buffer().Text(); got != "draft" {
		t.Fatalf("text = %q, want the hidden buffer untouched", got)
	}
	if !a.editor.showPreview {
		t.Fatalf("preview closed by an editing key")
	}

	a = pump(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.editor.showPreview {
		t.Fatalf("esc did not close the preview")
	}
	a = pump(t, a, keyRunes("s"))
	if got := a.editor.ed.Buffer().Text(); got != "drafts" {
		t.Fatalf("text = %q after leaving preview", got)
	}
}

func TestApp_ToolbarReflectsFormatState(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	a, _ := signedInApp(t, nil)
	before := a.editor.toolbar()
	a = pump(t, a, keyRunes("word"))
	a = pump(t, a, tea.KeyMsg{Type: tea.KeyCtrlB})
	if got := a.editor.ed.Buffer().Text(); got != "**word**" {
		t.Fatalf("text = %q", got)
	}
	st := a.editor.ed.FormatState()
	if !st.Bold || !st.CanUndo || st.CanRedo {
		t.Fatalf("format state = %+v", st)
	}
	if a.editor.toolbar() == before {
		t.Fatalf("toolbar unchanged after formatting")
	}
}
