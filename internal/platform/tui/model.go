package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/env"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

// Model is the Bubble Tea model for interactive play. Every vocabulary
// key is one env.Step; a finished episode is written to the store once.
type Model struct {
	env      *env.Env
	store    *storage.Store
	logger   *log.Logger
	nextSeed func() uint64

	screen  *core.Screen
	keys    KeyMap
	help    help.Model
	reward  float64
	message string
	savedID string
	saved   bool
	err     error

	quitting bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithLogger routes play events to logger.
func WithLogger(logger *log.Logger) ModelOption {
	return func(m *Model) { m.logger = logger }
}

// WithSeedSource sets the seed used when the player starts a new episode.
func WithSeedSource(next func() uint64) ModelOption {
	return func(m *Model) { m.nextSeed = next }
}

// NewModel resets e and wraps it for play. store may be nil.
func NewModel(e *env.Env, store *storage.Store, opts ...ModelOption) (Model, error) {
	h, w := e.ScreenSize()
	m := Model{
		env:      e,
		store:    store,
		logger:   log.New(io.Discard),
		nextSeed: func() uint64 { return uint64(time.Now().UnixNano()) },
		screen:   core.NewScreen(w, h),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if _, err := e.Reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Init implements tea.Model. Play is turn based, so nothing is scheduled.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Restart):
		if m.env.Done() {
			m.restart()
		}
		return m, nil
	}

	action, ok := m.keys.Action(msg)
	if !ok || m.env.Done() {
		return m, nil
	}
	res, err := m.env.Step(action)
	if err != nil {
		m.err = err
		m.logger.Error("step failed", "action", action, "error", err)
		return m, nil
	}
	m.reward += res.Reward
	m.message = ""
	if res.Reward > 0 {
		m.message = fmt.Sprintf("You found %d gold pieces.", int(res.Reward))
	}
	if res.Done {
		m.finish()
	}
	return m, nil
}

// finish records the episode. Store errors are reported in the view but
// never interrupt play.
func (m *Model) finish() {
	m.message = fmt.Sprintf("Episode over (%s). Press r for a new dungeon.", m.env.EndReason())
	if m.saved || m.store == nil {
		return
	}
	m.saved = true
	rec, err := m.env.Record(m.reward)
	if err == nil {
		m.savedID, err = m.store.SaveEpisode(rec)
	}
	if err != nil {
		m.err = err
		m.logger.Warn("could not save episode", "error", err)
		return
	}
	m.logger.Info("episode saved", "id", m.savedID, "reward", m.reward, "reason", rec.EndReason)
}

func (m *Model) restart() {
	m.env.Seed(m.nextSeed())
	if _, err := m.env.Reset(); err != nil {
		m.err = err
		return
	}
	m.reward, m.message, m.saved, m.savedID, m.err = 0, "", false, "", nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	drawState(m.screen, m.env.State(), m.message)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("reward %.0f  steps %d/%d", m.reward, m.env.Steps(), m.env.MaxSteps())))
	if m.savedID != "" {
		b.WriteString(helpStyle.Render("  saved " + m.savedID))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Reward returns the reward accumulated in the current episode.
func (m Model) Reward() float64 { return m.reward }

// SavedID returns the store id of the last saved episode, or "".
func (m Model) SavedID() string { return m.savedID }

// Run plays e in the terminal until the user quits.
func Run(e *env.Env, store *storage.Store, opts ...ModelOption) error {
	m, err := NewModel(e, store, opts...)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
