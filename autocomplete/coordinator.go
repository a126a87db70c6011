// Package autocomplete turns editor change events into inline ghost
// suggestions.
//
// A Coordinator belongs to one editing session. It runs entirely inside the
// Bubble Tea update loop: timers and network calls are commands whose
// messages come back through Update, where they are checked against the
// live state before anything changes.
package autocomplete

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/editor"
	"github.com/iw2rmb/inkwell/suggest"
)

// ErrNoToken marks a query that failed because no session token was
// available.
var ErrNoToken = errors.New("autocomplete: no session token")

// TokenSource mints a session token for each query.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Surface is the live document the coordinator re-reads before committing
// to anything. *buffer.Buffer satisfies it.
type Surface interface {
	CursorOffset() int
	CursorLine() ([]rune, int)
}

// Phase names where the coordinator is in the suggestion lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseQuerying
	PhaseSuggested
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseQuerying:
		return "querying"
	case PhaseSuggested:
		return "suggested"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Overlay is the single ghost slot: Text is shown right after document
// offset Offset.
type Overlay struct {
	Offset int
	Text   string
}

type pendingTimer struct {
	seq    uint64
	query  string
	offset int
	cancel context.CancelFunc
}

type inflightRequest struct {
	id     uint64
	query  string
	cancel context.CancelFunc
}

type debounceMsg struct {
	owner uint64
	seq   uint64
}

type resultMsg struct {
	owner       uint64
	id          uint64
	query       string
	suggestions []string
	err         error
}

var lastID atomic.Uint64

func nextID() uint64 { return lastID.Add(1) }

// Options carries the coordinator's collaborators.
type Options struct {
	// A nil Client disables suggestions.
	Client suggest.Client
	// Tokens is required when Config.RequireAuthToken is set.
	Tokens TokenSource
	Logger Logger
}

type Coordinator struct {
	id      uint64
	cfg     Config
	client  suggest.Client
	tokens  TokenSource
	log     Logger
	surface Surface

	phase      Phase
	suggestion string
	overlay    Overlay
	lastQuery  string

	// lastPosition is the offset of the last observed event, -1 when unset.
	lastPosition int

	seq      uint64
	timer    pendingTimer
	reqID    uint64
	inflight inflightRequest

	revision uint64
	closed   bool
}

func New(cfg Config, opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Coordinator{
		id:           nextID(),
		cfg:          cfg.withDefaults(),
		client:       opts.Client,
		tokens:       opts.Tokens,
		log:          log,
		lastPosition: -1,
	}
}

// Bind attaches the live document. Events observed before Bind are ignored.
func (c *Coordinator) Bind(s Surface) { c.surface = s }

func (c *Coordinator) Phase() Phase { return c.phase }

// Suggestion returns the full candidate currently offered, if any.
func (c *Coordinator) Suggestion() (string, bool) {
	return c.suggestion, c.suggestion != ""
}

func (c *Coordinator) Overlay() (Overlay, bool) {
	return c.overlay, c.overlay.Text != ""
}

// Revision changes whenever the overlay changes, so hosts know when to
// re-render the ghost.
func (c *Coordinator) Revision() uint64 { return c.revision }

// Observe handles one document or selection change.
func (c *Coordinator) Observe(ev editor.ChangeEvent) tea.Cmd {
	if c.closed || c.surface == nil || c.client == nil {
		return nil
	}

	c.cancelTimer()

	word := c.liveWord()
	from := ev.Offset
	n := len([]rune(word))

	switch {
	case n < c.cfg.MinWordLen:
		c.clear(from)
		return nil
	case c.lastPosition >= 0 && abs(from-c.lastPosition) > n+c.cfg.JumpSlack:
		c.log.Debug("cursor jumped, dropping suggestion", "from", c.lastPosition, "to", from, "word", word)
		c.clear(from)
		return nil
	case word != c.lastQuery:
		c.retarget(word, from)
	case c.suggestion != "":
		if !ev.TextChanged && from == c.overlay.Offset {
			return nil
		}
		// An edit elsewhere or a moved anchor invalidates the overlay.
		c.retarget(word, from)
	}

	return c.schedule(word, from)
}

// Update handles the coordinator's own messages and ignores everything else.
func (c *Coordinator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.owner != c.id {
			return nil
		}
		return c.fire(msg)
	case resultMsg:
		if msg.owner != c.id {
			return nil
		}
		c.receive(msg)
	}
	return nil
}

// Ghost is an editor.GhostProvider. The accept edit replaces the word before
// the cursor with the full suggestion and is computed from the live line.
func (c *Coordinator) Ghost(ctx editor.GhostContext) (editor.Ghost, bool) {
	if c.closed || c.suggestion == "" || ctx.Offset != c.overlay.Offset {
		return editor.Ghost{}, false
	}
	word := CurrentWord([]rune(ctx.LineText), ctx.Col)
	if word != c.lastQuery {
		return editor.Ghost{}, false
	}
	edit := replaceWordEdit(ctx.Row, ctx.Col, word, c.suggestion)
	return editor.Ghost{
		Text:     c.overlay.Text,
		StyleKey: c.cfg.StyleKey,
		Edits:    []buffer.TextEdit{edit},
	}, true
}

// Accepted clears state after the host applied a suggestion.
func (c *Coordinator) Accepted(editor.Ghost) {
	c.log.Debug("suggestion accepted", "suggestion", c.suggestion)
	c.cancelTimer()
	c.accept()
}

// Close cancels pending work. Messages arriving afterwards are ignored.
func (c *Coordinator) Close() {
	if c.closed {
		return
	}
	c.cancelTimer()
	if c.inflight.cancel != nil {
		c.inflight.cancel()
	}
	c.inflight = inflightRequest{}
	c.suggestion = ""
	c.overlay = Overlay{}
	c.closed = true
	c.revision++
	c.settle()
}

func (c *Coordinator) fire(msg debounceMsg) tea.Cmd {
	if c.closed || c.timer.cancel == nil || msg.seq != c.timer.seq {
		c.log.Debug("stale debounce dropped", "seq", msg.seq)
		return nil
	}
	t := c.timer
	c.cancelTimer()

	if live := c.liveWord(); live != t.query {
		c.log.Debug("word changed before dispatch", "query", t.query, "live", live)
		return nil
	}
	if c.inflight.cancel != nil && c.inflight.query == t.query {
		c.log.Debug("query already in flight", "query", t.query)
		return nil
	}
	return c.issue(t.query)
}

func (c *Coordinator) receive(msg resultMsg) {
	if c.closed || c.inflight.cancel == nil || msg.id != c.inflight.id {
		c.log.Debug("superseded response dropped", "query", msg.query, "id", msg.id)
		return
	}
	c.inflight.cancel()
	c.inflight = inflightRequest{}
	defer c.settle()

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			c.log.Debug("query cancelled", "query", msg.query)
			return
		}
		c.log.Error("suggestion query failed", "query", msg.query, "err", msg.err)
		return
	}
	if len(msg.suggestions) == 0 {
		c.log.Debug("no suggestions", "query", msg.query)
		return
	}

	best := msg.suggestions[0]
	if c.cfg.RequirePrefixMatch && !hasPrefixFold(best, msg.query) {
		c.log.Debug("best candidate does not extend query", "query", msg.query, "candidate", best)
		return
	}
	completion := trimRunes(best, len([]rune(msg.query)))
	if completion == "" {
		return
	}

	if live := c.liveWord(); live != msg.query {
		c.log.Debug("word changed during query, discarding", "query", msg.query, "live", live)
		return
	}
	c.suggest(best, completion, msg.query, c.surface.CursorOffset())
}

// Transitions. Each one leaves the state consistent and recomputes the phase.

func (c *Coordinator) clear(from int) {
	c.dropOverlay()
	c.lastQuery = ""
	c.lastPosition = from
	c.settle()
}

func (c *Coordinator) retarget(word string, from int) {
	c.dropOverlay()
	c.lastQuery = word
	c.lastPosition = from
	c.settle()
}

func (c *Coordinator) schedule(word string, from int) tea.Cmd {
	c.seq++
	ctx, cancel := context.WithCancel(context.Background())
	c.timer = pendingTimer{seq: c.seq, query: word, offset: from, cancel: cancel}
	c.settle()

	owner, seq, d := c.id, c.seq, c.cfg.Debounce
	return func() tea.Msg {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return debounceMsg{owner: owner, seq: seq}
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Coordinator) issue(query string) tea.Cmd {
	if c.inflight.cancel != nil {
		c.log.Debug("cancelling superseded query", "query", c.inflight.query)
		c.inflight.cancel()
	}
	c.reqID++
	ctx, cancel := context.WithCancel(context.Background())
	c.inflight = inflightRequest{id: c.reqID, query: query, cancel: cancel}
	c.settle()
	c.log.Debug("querying suggestions", "query", query, "id", c.reqID)

	owner, id := c.id, c.reqID
	client, tokens := c.client, c.tokens
	req := suggest.Request{Query: query, Limit: c.cfg.Limit}
	needToken := c.cfg.RequireAuthToken
	return func() tea.Msg {
		out := resultMsg{owner: owner, id: id, query: query}
		if needToken {
			tok, err := fetchToken(ctx, tokens)
			if err != nil {
				out.err = err
				return out
			}
			req.Token = tok
		}
		out.suggestions, out.err = client.Suggest(ctx, req)
		if out.err == nil && ctx.Err() != nil {
			out.err = ctx.Err()
		}
		return out
	}
}

func (c *Coordinator) suggest(best, completion, query string, offset int) {
	c.suggestion = best
	c.overlay = Overlay{Offset: offset, Text: completion}
	c.lastQuery = query
	c.lastPosition = offset
	c.revision++
	c.settle()
}

func (c *Coordinator) accept() {
	c.dropOverlay()
	c.lastQuery = ""
	c.lastPosition = -1
	c.settle()
}

func (c *Coordinator) dropOverlay() {
	if c.suggestion == "" && c.overlay == (Overlay{}) {
		return
	}
	c.suggestion = ""
	c.overlay = Overlay{}
	c.revision++
}

func (c *Coordinator) cancelTimer() {
	if c.timer.cancel != nil {
		c.timer.cancel()
	}
	c.timer = pendingTimer{}
	c.settle()
}

func (c *Coordinator) settle() {
	switch {
	case c.suggestion != "":
		c.phase = PhaseSuggested
	case c.timer.cancel != nil:
		c.phase = PhaseDebouncing
	case c.inflight.cancel != nil:
		c.phase = PhaseQuerying
	default:
		c.phase = PhaseIdle
	}
}

func (c *Coordinator) liveWord() string {
	if c.surface == nil {
		return ""
	}
	line, col := c.surface.CursorLine()
	return CurrentWord(line, col)
}

func fetchToken(ctx context.Context, tokens TokenSource) (string, error) {
	if tokens == nil {
		return "", ErrNoToken
	}
	tok, err := tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoToken, err)
	}
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

func replaceWordEdit(row, col int, word, suggestion string) buffer.TextEdit {
	return buffer.TextEdit{
		Range: buffer.Range{
			Start: buffer.Pos{Row: row, Col: col - len([]rune(word))},
			End:   buffer.Pos{Row: row, Col: col},
		},
		Text: suggestion,
	}
}

func hasPrefixFold(s, prefix string) bool {
	sr, pr := []rune(s), []rune(prefix)
	if len(sr) < len(pr) {
		return false
	}
	return strings.EqualFold(string(sr[:len(pr)]), prefix)
}

func trimRunes(s string, n int) string {
	r := []rune(s)
	if n >= len(r) {
		return ""
	}
	return string(r[n:])
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
