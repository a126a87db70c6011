package ui

import (
	"context"

	"github.com/iw2rmb/inkwell/identity"
)

// Auth is the identity gate the shell routes on. *identity.Gate implements it.
type Auth interface {
	Restore(ctx context.Context) error
	Loading() bool
	CurrentUser() (identity.User, bool)
	SignIn(ctx context.Context, email, password string) error
	SignOut() error
	Token(ctx context.Context) (string, error)
}
