package tui

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/games/rogue"
)

// CheckReplaySupport reports core.ErrUnsupportedPlatform when the animated
// replay cannot run: on Windows, or when stdout is not a terminal.
func CheckReplaySupport() error {
	if runtime.GOOS == "windows" {
		return fmt.Errorf("%w: replay is not available on %s", core.ErrUnsupportedPlatform, runtime.GOOS)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%w: replay needs a terminal on stdout", core.ErrUnsupportedPlatform)
	}
	return nil
}

var (
	replayPause  = key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause"))
	replayFaster = key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster"))
	replaySlower = key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower"))
	replayQuit   = key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit"))
)

// ReplayModel feeds a recorded episode to a fresh engine, one keystroke
// per tick.
type ReplayModel struct {
	game     *rogue.Game
	keys     string
	pos      int
	rate     int
	paused   bool
	err      error
	screen   *core.Screen
	quitting bool
}

// NewReplayModel builds a replay of a history produced by the rogue engine.
func NewReplayModel(data []byte, rate int) (ReplayModel, error) {
	h, err := rogue.ParseHistory(data)
	if err != nil {
		return ReplayModel{}, err
	}
	g, err := h.NewGame()
	if err != nil {
		return ReplayModel{}, err
	}
	if rate <= 0 {
		rate = DefaultReplayRate
	}
	rows, cols := g.ScreenSize()
	return ReplayModel{game: g, keys: h.Keys, rate: rate, screen: core.NewScreen(cols, rows)}, nil
}

// Init implements tea.Model.
func (m ReplayModel) Init() tea.Cmd {
	return tickCmd(m.rate)
}

// Update implements tea.Model.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, replayQuit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, replayPause):
			m.paused = !m.paused
		case key.Matches(msg, replayFaster):
			m.rate = core.Min(m.rate*2, 240)
		case key.Matches(msg, replaySlower):
			m.rate = core.Max(m.rate/2, 1)
		}
		return m, nil
	case TickMsg:
		if !m.paused {
			m.advance()
		}
		return m, tickCmd(m.rate)
	}
	return m, nil
}

// advance feeds the next recorded key.
func (m *ReplayModel) advance() {
	if m.Finished() || m.err != nil {
		return
	}
	if _, err := m.game.React(m.keys[m.pos]); err != nil {
		m.err = err
		return
	}
	m.pos++
}

// Finished reports whether every recorded key has been fed.
func (m ReplayModel) Finished() bool {
	return m.pos >= len(m.keys)
}

// Position returns the number of keys fed so far.
func (m ReplayModel) Position() int { return m.pos }

// View implements tea.Model.
func (m ReplayModel) View() string {
	if m.quitting {
		return ""
	}
	drawState(m.screen, m.game.PreviousResult(), "")

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	state := "playing"
	switch {
	case m.err != nil:
		state = m.err.Error()
	case m.Finished():
		state = "finished: " + m.game.EndReason()
	case m.paused:
		state = "paused"
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("replay %d/%d keys  %d/s  %s", m.pos, len(m.keys), m.rate, state)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause  +/- speed  q quit"))
	return b.String()
}

// RunReplay animates a recorded episode in the terminal.
func RunReplay(data []byte, rate int) error {
	if err := CheckReplaySupport(); err != nil {
		return err
	}
	m, err := NewReplayModel(data, rate)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
