package cli

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/iw2rmb/inkwell/identity"
	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/suggest"
)

// newSuggestClient builds the configured transport. The returned func
// releases it.
func newSuggestClient(cfg *config.Config, l *log.Logger) (suggest.Client, func(), error) {
	var (
		client suggest.Client
		closer = func() {}
	)
	switch cfg.Suggest.Transport {
	case config.TransportWordserve:
		ipc, err := suggest.NewIPCClient(cfg.Suggest.WordservePath, cfg.Suggest.WordserveArgs...)
		if err != nil {
			return nil, nil, err
		}
		client = ipc
		closer = func() {
			if err := ipc.Close(); err != nil {
				l.Warn("closing wordserve", "err", err)
			}
		}
	default:
		if cfg.Suggest.APIBaseURL == "" {
			return nil, nil, fmt.Errorf("no suggestion service configured: set [suggest].api_base_url or INKWELL_API_BASE_URL")
		}
		client = suggest.NewHTTPClient(cfg.Suggest.APIBaseURL,
			suggest.WithHTTPClient(&http.Client{Timeout: cfg.SuggestTimeout()}))
	}
	if cfg.Suggest.CacheEntries > 0 {
		client = suggest.NewCache(client, cfg.Suggest.CacheEntries)
	}
	return client, closer, nil
}

// editorSuggestClient is newSuggestClient for the editor, which keeps running
// with suggestions disabled when the service cannot be set up.
func editorSuggestClient(cfg *config.Config, l *log.Logger) (suggest.Client, func()) {
	client, closer, err := newSuggestClient(cfg, l)
	if err != nil {
		l.Warn("suggestions disabled", "err", err)
		return nil, func() {}
	}
	return client, closer
}

func newSessionStore(cfg *config.Config, l *log.Logger) identity.SessionStore {
	if !cfg.Identity.Keyring {
		return &identity.MemoryStore{}
	}
	store, err := identity.OpenKeyringStore()
	if err != nil {
		l.Warn("keyring unavailable, session will not persist", "err", err)
		return &identity.MemoryStore{}
	}
	return store
}

func newGate(cfg *config.Config, l *log.Logger) *identity.Gate {
	provider := identity.NewRESTProvider(cfg.Identity.APIKey,
		identity.WithEndpoints(cfg.Identity.SignInURL, cfg.Identity.TokenURL))
	return identity.NewGate(provider, newSessionStore(cfg, l), identity.WithLogger(l.WithPrefix("identity")))
}
