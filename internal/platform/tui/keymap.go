package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/rogue-gym/internal/core"
)

// KeyMap holds the play bindings. Movement accepts both the vi keys the
// engine consumes and the arrow keys.
type KeyMap struct {
	Left      key.Binding
	Down      key.Binding
	Up        key.Binding
	Right     key.Binding
	DownRight key.Binding
	DownLeft  key.Binding
	UpRight   key.Binding
	UpLeft    key.Binding
	Rest      key.Binding
	Descend   key.Binding
	Search    key.Binding
	Restart   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Down, k.Up, k.Right, k.Descend, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Down, k.Up, k.Right},
		{k.UpLeft, k.UpRight, k.DownLeft, k.DownRight},
		{k.Rest, k.Search, k.Descend},
		{k.Restart, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default play bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Right:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		DownRight: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "down-right")),
		DownLeft:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "down-left")),
		UpRight:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "up-right")),
		UpLeft:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "up-left")),
		Rest:      key.NewBinding(key.WithKeys("."), key.WithHelp(".", "rest")),
		Descend:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "descend")),
		Search:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "search")),
		Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new episode")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Action maps a key message to an engine action.
func (k KeyMap) Action(msg tea.KeyMsg) (core.Action, bool) {
	bindings := [core.ActionCount]key.Binding{
		core.ActionNoop:      k.Rest,
		core.ActionLeft:      k.Left,
		core.ActionDown:      k.Down,
		core.ActionUp:        k.Up,
		core.ActionRight:     k.Right,
		core.ActionDownRight: k.DownRight,
		core.ActionDownLeft:  k.DownLeft,
		core.ActionUpRight:   k.UpRight,
		core.ActionUpLeft:    k.UpLeft,
		core.ActionDescend:   k.Descend,
		core.ActionSearch:    k.Search,
	}
	for a, b := range bindings {
		if key.Matches(msg, b) {
			return core.Action(a), true
		}
	}
	return core.ActionNoop, false
}
