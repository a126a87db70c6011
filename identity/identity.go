// Package identity gates the editor behind an email/password session.
//
// A Provider talks to the external identity service. Gate owns the current
// session, persists it through a SessionStore and hands out fresh id tokens
// for suggestion queries.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotSignedIn        = errors.New("identity: not signed in")
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a signed-in user plus the tokens that prove it.
type Session struct {
	User         User
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Provider is an external identity provider.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	// Refresh exchanges a refresh token for a new session. The returned
	// session may omit the email.
	Refresh(ctx context.Context, refreshToken string) (Session, error)
}

// ProviderError carries the code and message reported by the provider.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity: provider error %d", e.Status)
	}
	return "identity: " + e.Message
}

// Unwrap maps credential failures to ErrInvalidCredentials.
func (e *ProviderError) Unwrap() error {
	switch e.Code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS",
		"INVALID_EMAIL", "USER_DISABLED", "MISSING_PASSWORD":
		return ErrInvalidCredentials
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND":
		return ErrNotSignedIn
	}
	return nil
}
