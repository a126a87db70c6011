// Package suggest queries word-completion backends.
//
// Two transports are provided: HTTPClient talks to the autocomplete HTTP
// service and IPCClient drives a wordserve process over msgpack. Cache wraps
// either one.
package suggest

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned by clients used after Close.
var ErrClosed = errors.New("suggest: client closed")

// Request is one completion query.
type Request struct {
	Query string
	Limit int
	// Token is sent as a bearer credential when non-empty.
	Token string
}

// Client returns completions for a word prefix, best first. Implementations
// must honor ctx cancellation.
type Client interface {
	Suggest(ctx context.Context, req Request) ([]string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) ([]string, error)

func (f ClientFunc) Suggest(ctx context.Context, req Request) ([]string, error) {
	return f(ctx, req)
}

// StatusError reports a non-2xx response from the suggestion service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("suggest: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("suggest: unexpected status %d: %s", e.StatusCode, e.Body)
}

// RemoteError is an error reported by a wordserve process.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("suggest: wordserve error %d: %s", e.Code, e.Message)
}
