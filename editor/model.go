// Package editor is a terminal native-query editor with an autocomplete
// popup backed by the completion engine.
package editor

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/completion"
)

// DefaultRequestTimeout bounds one completion fetch.
const DefaultRequestTimeout = 5 * time.Second

// maxPopupItems is the number of candidates shown at once.
const maxPopupItems = 8

// Messages.
type (
	// cursorSettledMsg arrives once the cursor has stopped moving.
	cursorSettledMsg struct{}
	// retriggerMsg arrives when text changes settled with the popup open.
	retriggerMsg struct{}
	// resultsMsg carries the answer to completion request seq.
	resultsMsg struct {
		seq        int
		candidates []nqls.Candidate
		snippet    bool
	}
)

// Model is the bubbletea model for the editor.
type Model struct {
	engine  *completion.Engine
	filter  *completion.Filter
	logger  *zap.Logger
	ctx     context.Context
	timeout time.Duration

	buf     *Buffer
	styles  *Styles
	keys    KeyMap
	spinner spinner.Model

	// Popup
	open     atomic.Bool
	items    []nqls.Candidate
	selected int
	snippet  bool
	loading  bool
	seq      int

	// Selector state as of the last settled cursor move.
	state         completion.State
	snippetFilter string

	// Async events from debounce timers.
	events    chan tea.Msg
	cursor    *completion.Debouncer
	retrigger *completion.Retrigger

	width  int
	height int
	saved  bool
}

// Option configures a Model.
type Option func(*Model)

// WithFilter hides popup candidates matching f.
func WithFilter(f *completion.Filter) Option {
	return func(m *Model) {
		m.filter = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithContext sets the parent context of completion fetches.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// WithRequestTimeout bounds each completion fetch.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Model) {
		m.timeout = d
	}
}

// WithDebounce sets the retrigger delay and cursor debounce.
func WithDebounce(retrigger, cursor time.Duration) Option {
	return func(m *Model) {
		m.retrigger = completion.NewRetrigger(retrigger, m.open.Load, func() { m.emit(retriggerMsg{}) })
		m.cursor = completion.NewDebouncer(cursor, func() { m.emit(cursorSettledMsg{}) })
	}
}

// New creates an editor over text served by engine.
func New(engine *completion.Engine, text string, opts ...Option) *Model {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerFrames(),
		FPS:    time.Second / 10,
	}
	s.Style = DefaultStyles().Spinner

	m := &Model{
		engine:  engine,
		logger:  zap.NewNop(),
		ctx:     context.Background(),
		timeout: DefaultRequestTimeout,
		buf:     NewBuffer(text),
		styles:  DefaultStyles(),
		keys:    DefaultKeyMap(),
		spinner: s,
		events:  make(chan tea.Msg, 4),
		width:   80,
		height:  24,
	}

	WithDebounce(completion.DebounceInterval, completion.CursorDebounce)(m)

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Text returns the buffer contents.
func (m *Model) Text() string {
	return m.buf.Text()
}

// Saved reports whether the user exited with save.
func (m *Model) Saved() bool {
	return m.saved
}

// PopupOpen reports whether the completion popup is showing.
func (m *Model) PopupOpen() bool {
	return m.open.Load()
}

// Items returns the candidates in the popup.
func (m *Model) Items() []nqls.Candidate {
	return m.items
}

// emit delivers an async event without blocking the timer goroutine.
// A full channel means an equivalent event is already pending.
func (m *Model) emit(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// waitForEvent delivers the next async event to Update.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn // bubbletea.Model interface required by tea.Program
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case cursorSettledMsg:
		row, col := m.buf.Cursor()
		m.state, m.snippetFilter = m.engine.Selector().Update(m.buf.Line(row), col)

		return m, m.waitForEvent()

	case retriggerMsg:
		if !m.open.Load() {
			return m, m.waitForEvent()
		}

		return m, tea.Batch(m.waitForEvent(), m.request())

	case resultsMsg:
		m.handleResults(msg)

		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.open.Load() {
		switch {
		case key.Matches(msg, m.keys.Close):
			m.closePopup()

			return nil
		case key.Matches(msg, m.keys.Up):
			m.selected = max(m.selected-1, 0)

			return nil
		case key.Matches(msg, m.keys.Down):
			m.selected = min(m.selected+1, max(len(m.items)-1, 0))

			return nil
		case key.Matches(msg, m.keys.Accept):
			if len(m.items) > 0 {
				m.accept(m.items[m.selected])

				return nil
			}

			m.closePopup()

			return nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stop()

		return tea.Quit

	case key.Matches(msg, m.keys.Save):
		m.saved = true
		m.stop()

		return tea.Quit

	case key.Matches(msg, m.keys.Complete):
		return m.request()

	case key.Matches(msg, m.keys.Up):
		m.buf.Move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.buf.Move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.buf.Move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.buf.Move(0, 1)
	case key.Matches(msg, m.keys.Home):
		m.buf.Home()
	case key.Matches(msg, m.keys.End):
		m.buf.End()

	case key.Matches(msg, m.keys.Delete):
		if m.buf.Backspace() {
			m.textChanged()
		}

	case key.Matches(msg, m.keys.Newline):
		m.buf.Newline()
		m.textChanged()

	case msg.Type == tea.KeySpace:
		m.buf.Insert(" ")
		m.textChanged()

	case msg.Type == tea.KeyRunes:
		m.buf.Insert(string(msg.Runes))
		m.textChanged()

	default:
		return nil
	}

	m.cursor.Trigger()

	return nil
}

func (m *Model) textChanged() {
	m.retrigger.TextChanged()
}

// request starts a completion fetch for the cursor position.
func (m *Model) request() tea.Cmd {
	row, col := m.buf.Cursor()
	line := m.buf.Line(row)

	req := completion.Request{
		Text:   m.buf.Text(),
		Line:   row,
		Column: col,
		Prefix: m.buf.WordBeforeCursor(),
	}

	_, snippet := completion.SnippetNameAt(line, col)

	m.seq++
	m.loading = true
	m.open.Store(true)

	seq, engine, ctx, timeout := m.seq, m.engine, m.ctx, m.timeout

	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return resultsMsg{
			seq:        seq,
			candidates: engine.Complete(ctx, req),
			snippet:    snippet,
		}
	}

	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *Model) handleResults(msg resultsMsg) {
	if msg.seq != m.seq {
		m.logger.Debug("Dropping stale completion results", zap.Int("seq", msg.seq))

		return
	}

	m.loading = false

	if !m.open.Load() {
		return
	}

	m.items = completion.Dedupe(m.filter.Apply(msg.candidates))
	m.snippet = msg.snippet
	m.selected = 0
}

// accept inserts c in place of the text it completes, measured on the buffer
// as it is now; the user may have typed since the request was sent.
// Snippet references are closed if they are not already.
func (m *Model) accept(c nqls.Candidate) {
	insert := c.Name
	replace := len([]rune(m.buf.WordBeforeCursor()))

	if m.snippet {
		row, col := m.buf.Cursor()
		line := m.buf.Line(row)

		if name, ok := completion.SnippetNameAt(line, col); ok {
			replace = len([]rune(name))
		}

		if !strings.HasPrefix(strings.TrimLeft(string([]rune(line)[col:]), " "), "}}") {
			insert += "}}"
		}
	}

	m.buf.ReplaceBeforeCursor(replace, insert)
	m.closePopup()
	m.textChanged()
	m.cursor.Trigger()
}

func (m *Model) closePopup() {
	m.open.Store(false)
	m.items = nil
	m.selected = 0
	m.loading = false
	m.seq++
}

func (m *Model) stop() {
	m.closePopup()
	m.cursor.Stop()
	m.retrigger.Stop()
}

func (m *Model) View() string {
	var b strings.Builder

	row, col := m.buf.Cursor()
	gutter := len(fmt.Sprint(m.buf.LineCount()))

	for i := range m.buf.LineCount() {
		b.WriteString(m.styles.Gutter.Render(fmt.Sprintf("%*d ", gutter, i+1)))
		b.WriteString(m.renderLine(i, row, col))
		b.WriteString("\n")

		if i == row && m.open.Load() {
			popup := lipgloss.NewStyle().MarginLeft(gutter + 1 + col).Render(m.renderPopup())
			b.WriteString(popup)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m *Model) renderLine(i, row, col int) string {
	line := []rune(m.buf.Line(i))
	if i != row {
		return string(line)
	}

	if col >= len(line) {
		return string(line) + m.styles.Cursor.Render(" ")
	}

	return string(line[:col]) + m.styles.Cursor.Render(string(line[col])) + string(line[col+1:])
}

func (m *Model) renderPopup() string {
	if m.loading && len(m.items) == 0 {
		return m.styles.Popup.Render(m.spinner.View() + " loading")
	}

	if len(m.items) == 0 {
		return m.styles.Popup.Render(m.styles.Meta.Render("no completions"))
	}

	start := max(0, m.selected-maxPopupItems+1)
	end := min(len(m.items), start+maxPopupItems)

	lines := make([]string, 0, end-start)

	for i := start; i < end; i++ {
		item := m.items[i]

		label := item.DisplayValue
		if label == "" {
			label = item.Name
		}

		pointer, style := "  ", m.styles.Item
		if i == m.selected {
			pointer, style = m.styles.SymbolPointer+" ", m.styles.Selected
		}

		line := pointer + style.Render(label)
		if item.Meta != "" {
			line += "  " + m.styles.Meta.Render(item.Meta)
		}

		lines = append(lines, line)
	}

	return m.styles.Popup.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderStatus() string {
	parts := []string{}

	if m.state == completion.StateSnippet {
		parts = append(parts, m.styles.Snippet.Render("snippet")+" "+m.snippetFilter)
	}

	if m.loading {
		parts = append(parts, m.spinner.View())
	}

	parts = append(parts, m.styles.Status.Render("ctrl+space complete · ctrl+s save · ctrl+c discard"))

	return strings.Join(parts, "  ")
}
