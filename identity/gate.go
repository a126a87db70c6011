package identity

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// refreshWindow is how close to expiry an id token may get before Token
// refreshes it.
const refreshWindow = time.Minute

// Gate holds the current session. It is safe for concurrent use: Token is
// called from suggestion queries running off the UI goroutine.
type Gate struct {
	provider Provider
	store    SessionStore
	log      *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	session *Session
	loading bool
}

type GateOption func(*Gate)

func WithLogger(l *log.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// NewGate returns a gate in the loading state. Call Restore to leave it.
func NewGate(provider Provider, store SessionStore, opts ...GateOption) *Gate {
	if store == nil {
		store = &MemoryStore{}
	}
	g := &Gate{
		provider: provider,
		store:    store,
		log:      log.New(io.Discard),
		now:      time.Now,
		loading:  true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Restore brings back a stored session, if any. A stored session the
// provider no longer accepts is dropped and the gate ends signed out.
func (g *Gate) Restore(ctx context.Context) error {
	defer func() {
		g.mu.Lock()
		g.loading = false
		g.mu.Unlock()
	}()

	stored, err := g.store.Load()
	if errors.Is(err, ErrNotSignedIn) {
		return nil
	}
	if err != nil {
		return err
	}

	s, err := g.provider.Refresh(ctx, stored.RefreshToken)
	if err != nil {
		g.log.Warn("stored session rejected", "err", err)
		if errors.Is(err, ErrNotSignedIn) || errors.Is(err, ErrInvalidCredentials) {
			_ = g.store.Clear()
		}
		return err
	}
	if s.User.Email == "" {
		s.User.Email = stored.User.Email
	}
	if s.User.ID == "" {
		s.User.ID = stored.User.ID
	}

	g.mu.Lock()
	g.session = &s
	g.mu.Unlock()
	g.persist(s)
	g.log.Info("session restored", "email", s.User.Email)
	return nil
}

func (g *Gate) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

func (g *Gate) CurrentUser() (User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return User{}, false
	}
	return g.session.User, true
}

func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	s, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		g.log.Warn("sign-in failed", "email", email, "err", err)
		return err
	}
	if s.User.Email == "" {
		s.User.Email = email
	}

	g.mu.Lock()
	g.session = &s
	g.loading = false
	g.mu.Unlock()
	g.persist(s)
	g.log.Info("signed in", "email", s.User.Email)
	return nil
}

func (g *Gate) SignOut() error {
	g.mu.Lock()
	g.session = nil
	g.mu.Unlock()
	if err := g.store.Clear(); err != nil {
		return err
	}
	g.log.Info("signed out")
	return nil
}

// Token returns a valid id token, refreshing it when it is within one
// minute of expiry. It satisfies the token source the autocomplete
// coordinator expects.
func (g *Gate) Token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return "", ErrNotSignedIn
	}
	if g.now().Add(refreshWindow).Before(g.session.ExpiresAt) {
		return g.session.IDToken, nil
	}

	s, err := g.provider.Refresh(ctx, g.session.RefreshToken)
	if err != nil {
		return "", err
	}
	if s.User.Email == "" {
		s.User.Email = g.session.User.Email
	}
	if s.User.ID == "" {
		s.User.ID = g.session.User.ID
	}
	if s.RefreshToken == "" {
		s.RefreshToken = g.session.RefreshToken
	}
	g.session = &s
	g.persist(s)
	g.log.Debug("id token refreshed", "expires", s.ExpiresAt)
	return s.IDToken, nil
}

func (g *Gate) persist(s Session) {
	err := g.store.Save(StoredSession{User: s.User, RefreshToken: s.RefreshToken})
	if err != nil {
		g.log.Warn("could not persist session", "err", err)
	}
}
