package autocomplete

import "time"

// Config tunes the coordinator. Start from DefaultConfig; the zero value
// disables both safety checks.
type Config struct {
	// Debounce is the quiet interval before a query is sent.
	Debounce time.Duration
	// Limit caps the number of candidates requested.
	Limit int
	// MinWordLen is the shortest word that is ever queried.
	MinWordLen int
	// JumpSlack is added to the word length to bound how far the cursor may
	// move between events before state is dropped.
	JumpSlack int

	// RequireAuthToken attaches a session token to every query. A token
	// failure fails the query.
	RequireAuthToken bool
	// RequirePrefixMatch rejects a best candidate that does not start with
	// the query, ignoring case.
	RequirePrefixMatch bool

	// StyleKey is set on ghosts so hosts can style suggestions.
	StyleKey string
}

func DefaultConfig() Config {
	return Config{
		Debounce:           300 * time.Millisecond,
		Limit:              10,
		MinWordLen:         2,
		JumpSlack:          5,
		RequireAuthToken:   true,
		RequirePrefixMatch: true,
		StyleKey:           "autocomplete",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.Limit <= 0 {
		c.Limit = d.Limit
	}
	if c.MinWordLen <= 0 {
		c.MinWordLen = d.MinWordLen
	}
	if c.JumpSlack < 0 {
		c.JumpSlack = d.JumpSlack
	}
	return c
}
