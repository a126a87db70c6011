package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeProvider struct {
	mu        sync.Mutex
	signIns   int
	refreshes []string
	signIn    func(email, password string) (Session, error)
	refresh   func(token string) (Session, error)
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (Session, error) {
	f.mu.Lock()
	f.signIns++
	f.mu.Unlock()
	return f.signIn(email, password)
}

func (f *fakeProvider) Refresh(_ context.Context, token string) (Session, error) {
	f.mu.Lock()
	f.refreshes = append(f.refreshes, token)
	f.mu.Unlock()
	return f.refresh(token)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestGate_StartsLoadingUntilRestore(t *testing.T) {
	g := NewGate(&fakeProvider{}, &MemoryStore{})
	if !g.Loading() {
		t.Fatalf("new gate should be loading")
	}
	if err := g.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if g.Loading() {
		t.Fatalf("still loading after Restore")
	}
	if _, ok := g.CurrentUser(); ok {
		t.Fatalf("unexpected user with empty store")
	}
}

func TestGate_SignInPersistsAndIssuesToken(t *testing.T) {
	c := &clock{t: fixedNow()}
	store := &MemoryStore{}
	p := &fakeProvider{
		signIn: func(email, password string) (Session, error) {
			if password != "pw" {
				return Session{}, &ProviderError{Status: 400, Code: "INVALID_PASSWORD", Message: "INVALID_PASSWORD"}
			}
			return Session{User: User{ID: "u1", Email: email}, IDToken: "id1", RefreshToken: "r1", ExpiresAt: c.t.Add(time.Hour)}, nil
		},
	}
	g := NewGate(p, store, WithClock(c.now))

	if err := g.SignIn(context.Background(), "ada@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, ok := g.CurrentUser(); ok {
		t.Fatalf("failed sign-in produced a user")
	}

	if err := g.SignIn(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	u, ok := g.CurrentUser()
	if !ok || u.Email != "ada@example.com" {
		t.Fatalf("CurrentUser = %+v, %v", u, ok)
	}
	tok, err := g.Token(context.Background())
	if err != nil || tok != "id1" {
		t.Fatalf("Token = %q, %v", tok, err)
	}
	stored, err := store.Load()
	if err != nil || stored.RefreshToken != "r1" || stored.User.Email != "ada@example.com" {
		t.Fatalf("stored = %+v, %v", stored, err)
	}
}

func TestGate_TokenRefreshesNearExpiry(t *testing.T) {
	c := &clock{t: fixedNow()}
	p := &fakeProvider{
		signIn: func(email, _ string) (Session, error) {
			return Session{User: User{ID: "u1", Email: email}, IDToken: "id1", RefreshToken: "r1", ExpiresAt: c.t.Add(2 * time.Minute)}, nil
		},
		refresh: func(token string) (Session, error) {
			return Session{User: User{ID: "u1"}, IDToken: "id2", RefreshToken: "r2", ExpiresAt: c.t.Add(time.Hour)}, nil
		},
	}
	g := NewGate(p, nil, WithClock(c.now))
	if err := g.SignIn(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if tok, _ := g.Token(context.Background()); tok != "id1" {
		t.Fatalf("token = %q, want id1 while fresh", tok)
	}

	c.t = c.t.Add(90 * time.Second)
	tok, err := g.Token(context.Background())
	if err != nil || tok != "id2" {
		t.Fatalf("Token = %q, %v; want refreshed id2", tok, err)
	}
	if len(p.refreshes) != 1 || p.refreshes[0] != "r1" {
		t.Fatalf("refreshes = %v", p.refreshes)
	}
	if u, _ := g.CurrentUser(); u.Email != "ada@example.com" {
		t.Fatalf("email lost on refresh: %+v", u)
	}
}

func TestGate_TokenWithoutSession(t *testing.T) {
	g := NewGate(&fakeProvider{}, nil)
	if _, err := g.Token(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
}

func TestGate_RestoreFromStore(t *testing.T) {
	c := &clock{t: fixedNow()}
	store := &MemoryStore{}
	_ = store.Save(StoredSession{User: User{ID: "u1", Email: "ada@example.com"}, RefreshToken: "r1"})
	p := &fakeProvider{
		refresh: func(token string) (Session, error) {
			return Session{User: User{ID: "u1"}, IDToken: "id9", RefreshToken: "r9", ExpiresAt: c.t.Add(time.Hour)}, nil
		},
	}
	g := NewGate(p, store, WithClock(c.now))

	if err := g.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	u, ok := g.CurrentUser()
	if !ok || u.Email != "ada@example.com" {
		t.Fatalf("CurrentUser = %+v, %v", u, ok)
	}
	stored, _ := store.Load()
	if stored.RefreshToken != "r9" {
		t.Fatalf("rotated refresh token not persisted: %+v", stored)
	}
}

func TestGate_RestoreRejectedClearsStore(t *testing.T) {
	store := &MemoryStore{}
	_ = store.Save(StoredSession{User: User{ID: "u1"}, RefreshToken: "stale"})
	p := &fakeProvider{
		refresh: func(string) (Session, error) {
			return Session{}, &ProviderError{Status: 400, Code: "TOKEN_EXPIRED", Message: "TOKEN_EXPIRED"}
		},
	}
	g := NewGate(p, store)

	if err := g.Restore(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
	if g.Loading() {
		t.Fatalf("still loading after failed restore")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("stale session kept: %v", err)
	}
}

func TestGate_SignOut(t *testing.T) {
	store := &MemoryStore{}
	p := &fakeProvider{
		signIn: func(email, _ string) (Session, error) {
			return Session{User: User{ID: "u1", Email: email}, IDToken: "id1", RefreshToken: "r1", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	g := NewGate(p, store)
	_ = g.SignIn(context.Background(), "ada@example.com", "pw")

	if err := g.SignOut(); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, ok := g.CurrentUser(); ok {
		t.Fatalf("user still present after SignOut")
	}
	if _, err := g.Token(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("Token err = %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("store not cleared: %v", err)
	}
}
