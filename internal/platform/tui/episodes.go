package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/registry"
	"github.com/vovakirdan/rogue-gym/internal/storage"
)

// Episode browser layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show the engine sidebar
	sidebarWidth       = 20
	maxEpisodes        = 100
)

// EpisodesKeyMap defines the key bindings for the episode browser.
type EpisodesKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextEngine key.Binding
	PrevEngine key.Binding
	Select     key.Binding
	Quit       key.Binding
}

// ShortHelp implements help.KeyMap.
func (k EpisodesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextEngine, k.Select, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k EpisodesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextEngine, k.PrevEngine},
		{k.Select, k.Quit},
	}
}

// DefaultEpisodesKeyMap returns default key bindings.
func DefaultEpisodesKeyMap() EpisodesKeyMap {
	return EpisodesKeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "scroll up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "scroll down")),
		NextEngine: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next engine")),
		PrevEngine: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev engine")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "replay")),
		Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// EpisodesModel is the Bubble Tea model for browsing stored episodes.
type EpisodesModel struct {
	engines  []registry.EngineInfo
	cursor   int
	store    *storage.Store
	episodes []storage.Episode
	loadErr  error
	table    table.Model
	help     help.Model
	keys     EpisodesKeyMap
	width    int
	height   int
	selected string
	quitting bool
}

// NewEpisodesModel creates a browser over store.
func NewEpisodesModel(store *storage.Store, width, height int) EpisodesModel {
	m := EpisodesModel{
		engines: registry.List(),
		store:   store,
		keys:    DefaultEpisodesKeyMap(),
		help:    help.New(),
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	if len(m.engines) > 0 {
		m.load(m.engines[0].ID)
	}
	return m
}

func (m *EpisodesModel) showSidebar() bool {
	return m.width >= minWidthForSidebar
}

func (m *EpisodesModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Reward", Width: 8},
		{Title: "Level", Width: 5},
		{Title: "Gold", Width: 6},
		{Title: "Steps", Width: 6},
		{Title: "End", Width: 16},
		{Title: "Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(core.Max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// load fetches the best episodes of engine.
func (m *EpisodesModel) load(engine string) {
	m.episodes, m.loadErr = nil, nil
	if m.store != nil {
		m.episodes, m.loadErr = m.store.TopEpisodes(engine, maxEpisodes)
	}
	m.table.SetRows(episodeRows(m.episodes))
	m.table.GotoTop()
}

// episodeRows formats episodes as table rows, best first.
func episodeRows(episodes []storage.Episode) []table.Row {
	rows := make([]table.Row, len(episodes))
	for i, ep := range episodes {
		end := ep.EndReason
		if end == "" {
			end = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%.0f", ep.Reward),
			fmt.Sprintf("%d", ep.DungeonLevel),
			fmt.Sprintf("%d", ep.Gold),
			fmt.Sprintf("%d", ep.Steps),
			end,
			ep.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// Init implements tea.Model.
func (m EpisodesModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m EpisodesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			if i := m.table.Cursor(); i >= 0 && i < len(m.episodes) {
				m.selected = m.episodes[i].ID
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.NextEngine):
			if len(m.engines) > 0 {
				m.cursor = (m.cursor + 1) % len(m.engines)
				m.load(m.engines[m.cursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevEngine):
			if len(m.engines) > 0 {
				m.cursor = (m.cursor + len(m.engines) - 1) % len(m.engines)
				m.load(m.engines[m.cursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.table.SetRows(episodeRows(m.episodes))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m EpisodesModel) View() string {
	if m.quitting || m.selected != "" {
		return ""
	}

	var b strings.Builder
	title := "EPISODES"
	if len(m.engines) > 0 {
		title = fmt.Sprintf("EPISODES - %s", m.engines[m.cursor].Title)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	content := boxStyle.Render(m.tableContent())
	if m.showSidebar() {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), "  ", content)
	}
	b.WriteString(content)

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m EpisodesModel) sidebar() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString("Engines\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")
	for i, e := range m.engines {
		line := "  " + e.Title
		if i == m.cursor {
			line = titleStyle.Render("> " + e.Title)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return style.Render(sb.String())
}

func (m EpisodesModel) tableContent() string {
	switch {
	case m.loadErr != nil:
		return noticeStyle.Render(m.loadErr.Error())
	case len(m.episodes) == 0:
		return helpStyle.Render("No episodes recorded yet.\nPlay or run an episode to fill the table.")
	}
	return m.table.View()
}

// Selected returns the id of the episode chosen for replay, or "".
func (m EpisodesModel) Selected() string {
	return m.selected
}

// RunEpisodes runs the episode browser and returns the id of the episode
// the user chose to replay, or "" when they quit.
func RunEpisodes(store *storage.Store, width, height int) (string, error) {
	p := tea.NewProgram(NewEpisodesModel(store, width, height), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := finalModel.(EpisodesModel)
	if !ok {
		return "", nil
	}
	return m.Selected(), nil
}
