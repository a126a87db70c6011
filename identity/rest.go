package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iw2rmb/inkwell"
)

const (
	DefaultSignInURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenURL  = "https://securetoken.googleapis.com/v1"
)

// RESTProvider signs in against a Firebase-compatible identity REST API.
type RESTProvider struct {
	apiKey     string
	signInURL  string
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

type RESTOption func(*RESTProvider)

// WithEndpoints overrides the sign-in and token base URLs.
func WithEndpoints(signInURL, tokenURL string) RESTOption {
	return func(p *RESTProvider) {
		if signInURL != "" {
			p.signInURL = strings.TrimRight(signInURL, "/")
		}
		if tokenURL != "" {
			p.tokenURL = strings.TrimRight(tokenURL, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) RESTOption {
	return func(p *RESTProvider) {
		if hc != nil {
			p.httpClient = hc
		}
	}
}

func NewRESTProvider(apiKey string, opts ...RESTOption) *RESTProvider {
	p := &RESTProvider{
		apiKey:     apiKey,
		signInURL:  DefaultSignInURL,
		tokenURL:   DefaultTokenURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *RESTProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return Session{}, fmt.Errorf("identity: encode sign-in: %w", err)
	}
	endpoint := p.signInURL + "/accounts:signInWithPassword?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("identity: build sign-in: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out signInResponse
	if err := p.do(req, &out); err != nil {
		return Session{}, err
	}
	return Session{
		User:         User{ID: out.LocalID, Email: out.Email},
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    p.expiry(out.ExpiresIn),
	}, nil
}

func (p *RESTProvider) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	endpoint := p.tokenURL + "/token?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("identity: build refresh: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out refreshResponse
	if err := p.do(req, &out); err != nil {
		return Session{}, err
	}
	return Session{
		User:         User{ID: out.UserID},
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    p.expiry(out.ExpiresIn),
	}, nil
}

func (p *RESTProvider) do(req *http.Request, out interface{}) error {
	req.Header.Set("User-Agent", inkwell.UserAgent())
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return providerError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("identity: decode response: %w", err)
	}
	return nil
}

func providerError(status int, data []byte) error {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil || er.Error.Message == "" {
		return &ProviderError{Status: status, Message: strings.TrimSpace(string(data))}
	}
	// Messages look like "CODE" or "CODE : detail".
	code := er.Error.Message
	if i := strings.Index(code, " : "); i >= 0 {
		code = code[:i]
	}
	return &ProviderError{Status: status, Code: strings.TrimSpace(code), Message: er.Error.Message}
}

func (p *RESTProvider) expiry(expiresIn string) time.Time {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return p.now().Add(time.Duration(secs) * time.Second)
}
