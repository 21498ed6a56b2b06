package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-env/internal/registry"
	"github.com/vovakirdan/snake-env/internal/storage"
)

// Episode browser layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show the environment sidebar
	sidebarWidth       = 20
	maxEpisodes        = 100
)

// EpisodesKeyMap defines the key bindings for the episode browser.
type EpisodesKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextEnv key.Binding
	PrevEnv key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k EpisodesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextEnv, k.PrevEnv, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k EpisodesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextEnv, k.PrevEnv},
		{k.Back, k.Quit},
	}
}

// DefaultEpisodesKeyMap returns default key bindings.
func DefaultEpisodesKeyMap() EpisodesKeyMap {
	return EpisodesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextEnv: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/l", "next board"),
		),
		PrevEnv: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab/h", "prev board"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// EpisodesModel is the Bubble Tea model for browsing recorded episodes.
type EpisodesModel struct {
	envs        []registry.EnvInfo
	envCursor   int
	store       *storage.Store
	episodes    []storage.Episode
	stats       *storage.EnvStats
	table       table.Model
	help        help.Model
	keys        EpisodesKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewEpisodesModel creates a new episode browser, starting at startID when
// it names a registered environment.
func NewEpisodesModel(store *storage.Store, startID string, width, height int) EpisodesModel {
	envs := registry.List()

	h := help.New()
	h.ShowAll = false

	m := EpisodesModel{
		envs:        envs,
		store:       store,
		keys:        DefaultEpisodesKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	for i, e := range envs {
		if e.ID == startID {
			m.envCursor = i
		}
	}

	m.table = m.createTable()
	if len(m.envs) > 0 {
		m.loadEpisodes(m.envs[m.envCursor].ID)
	}

	return m
}

// createTable creates a new table sized for the current window.
func (m *EpisodesModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Reward", Width: 7},
		{Title: "Steps", Width: 8},
		{Title: "Length", Width: 7},
		{Title: "Cause", Width: 11},
		{Title: "Source", Width: 8},
		{Title: "Date", Width: 13},
	}

	height := m.height - 10 // header, stats, help and margins
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("22")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadEpisodes loads the best episodes and stats for an environment.
func (m *EpisodesModel) loadEpisodes(envID string) {
	m.episodes = nil
	m.stats = nil

	if m.store != nil {
		if eps, err := m.store.TopEpisodes(envID, maxEpisodes); err == nil {
			m.episodes = eps
		}
		if st, err := m.store.GetEnvStats(envID); err == nil {
			m.stats = st
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current episodes.
func (m *EpisodesModel) updateTableRows() {
	rows := make([]table.Row, len(m.episodes))
	for i, ep := range m.episodes {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("%d", ep.Reward),
			fmt.Sprintf("%d", ep.Length),
			fmt.Sprintf("%d", ep.SnakeLength),
			ep.Cause,
			ep.Source,
			ep.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the episode browser.
func (m EpisodesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the episode browser.
func (m EpisodesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextEnv):
			if len(m.envs) > 0 {
				m.envCursor = (m.envCursor + 1) % len(m.envs)
				m.loadEpisodes(m.envs[m.envCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevEnv):
			if len(m.envs) > 0 {
				m.envCursor = (m.envCursor - 1 + len(m.envs)) % len(m.envs)
				m.loadEpisodes(m.envs[m.envCursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the episode browser.
func (m EpisodesModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "EPISODES"
	if len(m.envs) > 0 {
		title = fmt.Sprintf("EPISODES - %s", m.envs[m.envCursor].Title)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(centerText(m.statsLine(), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// statsLine summarizes the selected environment.
func (m EpisodesModel) statsLine() string {
	if m.stats == nil || m.stats.Episodes == 0 {
		return "no episodes"
	}
	return fmt.Sprintf("%d episodes  %d wins  best %d  avg reward %.2f  avg steps %.1f  longest %d",
		m.stats.Episodes, m.stats.Wins, m.stats.BestReward,
		m.stats.AvgReward, m.stats.AvgLength, m.stats.MaxSnakeLength)
}

// renderWideLayout renders the browser with a sidebar for board selection.
func (m EpisodesModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Boards\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, e := range m.envs {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.envCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + e.ID))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()),
		"  ",
		tableStyle.Render(m.renderTableContent()),
	)
}

// renderNarrowLayout renders the browser with board tabs above the table.
func (m EpisodesModel) renderNarrowLayout() string {
	var b strings.Builder

	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("22")).
		Padding(0, 1)

	tabs := make([]string, len(m.envs))
	for i, e := range m.envs {
		if i == m.envCursor {
			tabs[i] = activeTabStyle.Render(e.ID)
		} else {
			tabs[i] = tabStyle.Render(" " + e.ID + " ")
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m EpisodesModel) renderTableContent() string {
	if len(m.episodes) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No episodes recorded yet.\nPlay or run a rollout with --save.")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m EpisodesModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m EpisodesModel) IsQuitting() bool {
	return m.quitting
}

// RunEpisodes runs the episode browser.
// Returns true if user wants to go back to menu, false if quitting.
func RunEpisodes(store *storage.Store, startID string, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewEpisodesModel(store, startID, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(EpisodesModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
