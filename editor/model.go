package editor

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/buffer"
	"github.com/iw2rmb/inkwell/internal/grapheme"
)

const defaultTabWidth = 4

// Model is a Bubble Tea component that renders and interacts with a buffer.
type Model struct {
	cfg Config
	buf *buffer.Buffer

	focused bool

	viewport viewport.Model
	xOffset  int

	ghostCache ghostCache
	ghostGen   uint64

	lastBufVersion  uint64
	lastTextVersion uint64
	lastCursor      buffer.Pos

	mouseAnchor   buffer.Pos
	mouseDragging bool
}

func New(cfg Config) Model {
	if keyMapIsZero(cfg.KeyMap) {
		cfg.KeyMap = DefaultKeyMap()
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = defaultTabWidth
	}
	m := Model{
		cfg:      cfg,
		buf:      buffer.New(cfg.Text, buffer.Options{HistoryLimit: cfg.HistoryLimit}),
		focused:  true,
		viewport: viewport.New(0, 0),
	}
	m.lastBufVersion = m.buf.Version()
	m.lastTextVersion = m.buf.TextVersion()
	m.lastCursor = m.buf.Cursor()
	m.rebuildContent()
	return m
}

func (m Model) Buffer() *buffer.Buffer { return m.buf }

func (m Model) KeyMap() KeyMap { return m.cfg.KeyMap }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.viewport.Width = width
	m.viewport.Height = height

	m.followCursor()
	m.rebuildContent()
	return m
}

func (m Model) Focus() Model {
	if !m.focused {
		m.focused = true
		m.followCursor()
		m.rebuildContent()
	}
	return m
}

func (m Model) Blur() Model {
	if m.focused {
		m.focused = false
		m.rebuildContent()
	}
	return m
}

func (m Model) Focused() bool { return m.focused }

// SetText replaces the document as one undoable edit and moves the cursor to
// the end.
func (m Model) SetText(text string) (Model, tea.Cmd) {
	if m.buf == nil {
		return m, nil
	}
	end := m.buf.PosAt(m.buf.Len())
	m.buf.Apply(buffer.TextEdit{Range: buffer.Range{End: end}, Text: text})
	return m.afterInput(nil)
}

// RefreshGhost drops the cached ghost so the provider is consulted on the next
// render. Hosts call it when the provider's answer changes without a buffer
// change, for example when an asynchronous suggestion arrives.
func (m Model) RefreshGhost() Model {
	m.ghostGen++
	m.rebuildContent()
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.updateKey(msg)
		return m.afterInput(cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m, cmd = m.updateMouse(msg)
		return m.afterInput(cmd)
	default:
		// Hosts may mutate the buffer directly between messages.
		return m.afterInput(nil)
	}
}

func (m Model) View() string { return m.viewport.View() }

// afterInput syncs the view with the buffer and reports the change to the
// host.
func (m Model) afterInput(cmd tea.Cmd) (Model, tea.Cmd) {
	if m.buf == nil {
		return m, cmd
	}
	ver := m.buf.Version()
	cur := m.buf.Cursor()
	if ver == m.lastBufVersion && cur == m.lastCursor {
		return m, cmd
	}

	prevTextVersion := m.lastTextVersion
	m.lastBufVersion = ver
	m.lastTextVersion = m.buf.TextVersion()
	m.lastCursor = cur

	m.followCursor()
	m.rebuildContent()

	if m.cfg.OnChange != nil {
		cmd = tea.Batch(cmd, m.cfg.OnChange(buildChangeEvent(m.buf, prevTextVersion)))
	}
	return m, cmd
}

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) gutterWidth() int {
	if !m.cfg.ShowLineNums || m.buf == nil {
		return 0
	}
	return gutterDigits(m.buf.LineCount()) + 1
}

func (m *Model) contentWidth() int {
	return m.viewport.Width - m.viewport.Style.GetHorizontalFrameSize() - m.gutterWidth()
}

func (m *Model) followCursor() {
	if m.buf == nil {
		return
	}
	cur := m.buf.Cursor()

	if h := m.visibleRowCount(); h > 0 {
		y := m.viewport.YOffset
		if cur.Row < y {
			m.viewport.SetYOffset(cur.Row)
		} else if cur.Row >= y+h {
			m.viewport.SetYOffset(cur.Row - h + 1)
		}
	}

	w := m.contentWidth()
	if w <= 0 {
		m.xOffset = 0
		return
	}
	line, col := m.buf.CursorLine()
	cell := cursorCell(grapheme.Clusters(line, 0, m.cfg.TabWidth), col)
	if cell < m.xOffset {
		m.xOffset = cell
	} else if cell >= m.xOffset+w {
		m.xOffset = cell - w + 1
	}
}

func (m Model) visibleRowCount() int {
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h < 0 {
		return 0
	}
	return h
}

// cursorCell returns the first cell of the cluster holding col, or the cell
// after the last cluster when col is at the end of the line.
func cursorCell(clusters []grapheme.Cluster, col int) int {
	for _, c := range clusters {
		if col < c.End {
			return c.StartCell
		}
	}
	if len(clusters) == 0 {
		return 0
	}
	last := clusters[len(clusters)-1]
	return last.StartCell + last.Width
}

func gutterDigits(lineCount int) int {
	n := 1
	for lineCount >= 10 {
		lineCount /= 10
		n++
	}
	return n
}
