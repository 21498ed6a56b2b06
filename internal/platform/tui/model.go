package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/env"
	"github.com/vovakirdan/snake-env/internal/games/snake"
	"github.com/vovakirdan/snake-env/internal/registry"
	"github.com/vovakirdan/snake-env/internal/storage"
)

// PlayEnv is an environment that can be played interactively.
type PlayEnv interface {
	registry.Env
	Snapshot() snake.Snapshot
}

// PlayOptions configures an interactive play session.
type PlayOptions struct {
	Store  *storage.Store // nil disables episode recording
	Logger *log.Logger
	Source string // recorded as the episode source
	Seed   int64  // recorded with each episode
}

// Model is the Bubble Tea model for playing one environment from the keyboard.
type Model struct {
	env        PlayEnv
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	source     string
	seed       int64
	episodes   int
	lastReward int
	holdTicks  int // ticks left before the automatic reset
	paused     bool
	standalone bool // back quits the program instead of returning to a menu
	quitting   bool
	backToMenu bool
}

// NewModel creates a new Bubble Tea model for the given environment.
func NewModel(e PlayEnv, cfg core.RuntimeConfig, opts PlayOptions) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	source := opts.Source
	if source == "" {
		source = storage.SourceHuman
	}

	return Model{
		env:        e,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      opts.Store,
		logger:     logger,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		source:     source,
		seed:       opts.Seed,
		standalone: true,
	}
}

// Init starts the tick loop. The environment is already reset.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.keyMapper.MapKeyToControl(msg) {
	case ControlPause:
		m.paused = !m.paused
	case ControlReset:
		m.env.Reset(nil)
		m.holdTicks = 0
		m.inputFrame.Clear()
	case ControlBack:
		m.backToMenu = true
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleResize processes window resize events. The board keeps its size;
// only the drawing area changes.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	return m, nil
}

// handleTick advances the environment by one step.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	next := tickCmd(m.config.TickRate)

	if m.paused {
		return m, next
	}

	// Hold the final frame briefly, then start the next episode.
	if m.holdTicks > 0 {
		m.holdTicks--
		if m.holdTicks == 0 {
			m.env.Reset(nil)
		}
		m.inputFrame.Clear()
		return m, next
	}

	action := m.inputFrame.Resolve()
	m.inputFrame.Clear()

	_, _, terminated, _, info, err := m.env.Step(int(action))
	if err != nil {
		m.logger.Error("step failed", "action", action, "error", err)
		return m, next
	}

	if terminated && info.FinalInfo != nil {
		m.recordEpisode(info.FinalInfo)
		m.holdTicks = holdDuration(m.config.TickRate)
	}

	return m, next
}

// holdDuration is one second of ticks.
func holdDuration(tickRate int) int {
	if tickRate < 1 {
		return 1
	}
	return tickRate
}

// recordEpisode stores a finished episode. Storage is best-effort.
func (m *Model) recordEpisode(final *core.EpisodeInfo) {
	m.episodes++
	m.lastReward = final.EpisodicReward

	snap := m.env.Snapshot()
	m.logger.Debug("episode finished",
		"env", m.env.ID(),
		"reward", final.EpisodicReward,
		"steps", final.EpisodicLength,
		"cause", snap.Cause,
	)

	if m.store == nil {
		return
	}
	_, err := m.store.SaveEpisode(storage.Episode{
		EnvID:       m.env.ID(),
		GridSize:    m.env.GridSize(),
		Reward:      final.EpisodicReward,
		Length:      final.EpisodicLength,
		SnakeLength: snap.Len,
		Cause:       snap.Cause.String(),
		Source:      m.source,
		Seed:        m.seed,
	})
	if err != nil {
		m.logger.Warn("could not save episode", "error", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.env.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".snake-env", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.env.ID(), timestamp))

	//nolint:errcheck // Best-effort save, play continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.env.Render(m.screen)
	m.renderFooter()

	return RenderScreen(m.screen)
}

// renderFooter draws the status line on the last screen row, if free.
func (m Model) renderFooter() {
	_, minH := env.MinScreen(m.env.GridSize())
	if m.screen.Height() <= minH {
		return
	}

	status := fmt.Sprintf(" Episodes: %d  Last: %d", m.episodes, m.lastReward)
	if m.paused {
		status += "  PAUSED"
	}
	status += "  |  Arrows/WASD/hjkl: steer  P: pause  R: reset  Q: quit"
	m.screen.DrawText(0, m.screen.Height()-1, status)
}

// Episodes returns the number of finished episodes.
func (m Model) Episodes() int {
	return m.episodes
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given environment.
func Run(e PlayEnv, cfg core.RuntimeConfig, opts PlayOptions) error {
	model := NewModel(e, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
