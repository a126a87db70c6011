// Package config loads inkwell's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"

	"github.com/iw2rmb/inkwell/autocomplete"
)

const (
	TransportHTTP      = "http"
	TransportWordserve = "wordserve"
)

type Config struct {
	Suggest      SuggestConfig      `toml:"suggest"`
	Autocomplete AutocompleteConfig `toml:"autocomplete"`
	Identity     IdentityConfig     `toml:"identity"`
	Editor       EditorConfig       `toml:"editor"`
	Log          LogConfig          `toml:"log"`
}

type SuggestConfig struct {
	// Transport is "http" or "wordserve".
	Transport     string   `toml:"transport"`
	APIBaseURL    string   `toml:"api_base_url"`
	TimeoutMS     int      `toml:"timeout_ms"`
	WordservePath string   `toml:"wordserve_path"`
	WordserveArgs []string `toml:"wordserve_args"`
	// CacheEntries bounds the response cache. Zero disables it.
	CacheEntries int `toml:"cache_entries"`
}

type AutocompleteConfig struct {
	DebounceMS         int  `toml:"debounce_ms"`
	Limit              int  `toml:"limit"`
	MinWordLen         int  `toml:"min_word_len"`
	JumpSlack          int  `toml:"jump_slack"`
	RequireAuthToken   bool `toml:"require_auth_token"`
	RequirePrefixMatch bool `toml:"require_prefix_match"`
}

type IdentityConfig struct {
	APIKey    string `toml:"api_key"`
	SignInURL string `toml:"sign_in_url"`
	TokenURL  string `toml:"token_url"`
	// Keyring keeps the session in the system keyring across restarts.
	Keyring bool `toml:"keyring"`
}

type EditorConfig struct {
	ShowLineNumbers bool `toml:"show_line_numbers"`
	TabWidth        int  `toml:"tab_width"`
	HistoryLimit    int  `toml:"history_limit"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// File overrides the log path under the XDG state directory.
	File string `toml:"file"`
}

func DefaultConfig() *Config {
	ac := autocomplete.DefaultConfig()
	return &Config{
		Suggest: SuggestConfig{
			Transport:     TransportHTTP,
			APIBaseURL:    "http://localhost:8000",
			TimeoutMS:     10000,
			WordservePath: "wordserve",
			CacheEntries:  512,
		},
		Autocomplete: AutocompleteConfig{
			DebounceMS:         int(ac.Debounce / time.Millisecond),
			Limit:              ac.Limit,
			MinWordLen:         ac.MinWordLen,
			JumpSlack:          ac.JumpSlack,
			RequireAuthToken:   ac.RequireAuthToken,
			RequirePrefixMatch: ac.RequirePrefixMatch,
		},
		Identity: IdentityConfig{
			Keyring: true,
		},
		Editor: EditorConfig{
			ShowLineNumbers: false,
			TabWidth:        4,
			HistoryLimit:    1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	return xdg.ConfigFile("inkwell/config.toml")
}

// LogPath returns where the log file goes unless the config names one.
func LogPath() (string, error) {
	return xdg.StateFile("inkwell/inkwell.log")
}

// Load resolves configuration with priority:
//  1. customPath, when set and readable
//  2. the default path, created with defaults on first run
//  3. built-in defaults
//
// Environment overrides are applied last. The returned path is the file the
// config came from, or "" for built-in defaults.
func Load(customPath string, logger *log.Logger) (*Config, string, error) {
	if logger == nil {
		logger = log.Default()
	}

	if customPath != "" {
		cfg, err := LoadFile(customPath)
		if err == nil {
			cfg.ApplyEnv(os.Getenv)
			return cfg, customPath, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
		logger.Warn("config file not found, trying default path", "path", customPath)
	}

	path, err := Path()
	if err != nil {
		logger.Warn("no default config path, using built-in defaults", "err", err)
		cfg := DefaultConfig()
		cfg.ApplyEnv(os.Getenv)
		return cfg, "", nil
	}

	cfg, err := LoadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = DefaultConfig()
		if err := cfg.Save(path); err != nil {
			logger.Warn("could not write default config", "path", path, "err", err)
			path = ""
		} else {
			logger.Debug("created default config", "path", path)
		}
	case err != nil:
		return nil, "", err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, path, nil
}

// LoadFile reads one TOML file over the defaults, so missing keys keep
// their default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// ApplyEnv overlays INKWELL_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.Suggest.APIBaseURL = envOr(getenv, "INKWELL_API_BASE_URL", c.Suggest.APIBaseURL)
	c.Identity.APIKey = envOr(getenv, "INKWELL_IDENTITY_API_KEY", c.Identity.APIKey)
	c.Log.Level = envOr(getenv, "INKWELL_LOG_LEVEL", c.Log.Level)
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Suggest.Transport) {
	case TransportHTTP, TransportWordserve:
	default:
		return fmt.Errorf("unknown suggest transport %q", c.Suggest.Transport)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// AutocompleteConfig converts the [autocomplete] section.
func (c *Config) AutocompleteConfig() autocomplete.Config {
	cfg := autocomplete.DefaultConfig()
	cfg.Debounce = time.Duration(c.Autocomplete.DebounceMS) * time.Millisecond
	cfg.Limit = c.Autocomplete.Limit
	cfg.MinWordLen = c.Autocomplete.MinWordLen
	cfg.JumpSlack = c.Autocomplete.JumpSlack
	cfg.RequireAuthToken = c.Autocomplete.RequireAuthToken
	cfg.RequirePrefixMatch = c.Autocomplete.RequirePrefixMatch
	return cfg
}

func (c *Config) SuggestTimeout() time.Duration {
	if c.Suggest.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Suggest.TimeoutMS) * time.Millisecond
}

// LogLevel parses [log].level, falling back to info.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}
