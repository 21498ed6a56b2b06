package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/games/snake"
	"github.com/vovakirdan/snake-env/internal/registry"
	"github.com/vovakirdan/snake-env/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.snake-env/host_key.
	HostKeyPath string

	// DBPath is the path to the episodes database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the number of steps per second in each session.
	TickRate int

	// Rewards is the reward table of every session environment.
	Rewards snake.Rewards

	// Logger receives server and session events. Nil logs to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.snake-env/episodes.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    10,
		Rewards:     snake.DefaultRewards(),
	}
}

// SSHServer serves interactive play over SSH. Every session owns its own
// environment instance.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	logger = logger.WithPrefix("snake-ssh")

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open episodes database", "error", err)
		// Continue without storage
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".snake-env", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	model := NewSessionModel(SessionOptions{
		Store:   s.store,
		Logger:  s.logger.With("user", sshSession.User()),
		Rewards: s.config.Rewards,
		Config:  cfg,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionOptions configures a session model.
type SessionOptions struct {
	Store   *storage.Store
	Logger  *log.Logger
	Rewards snake.Rewards
	Config  core.RuntimeConfig
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewPlay
	viewEpisodes
)

// SessionModel manages the session flow: menu -> play or episodes -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	opts     SessionOptions
	view     sessionView
	menu     MenuModel
	play     *Model
	episodes *EpisodesModel
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	return SessionModel{
		opts: opts,
		menu: NewMenuModel(opts.Store, opts.Config),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Config.ScreenW = wsm.Width
		m.opts.Config.ScreenH = wsm.Height
	}

	switch m.view {
	case viewPlay:
		return m.updatePlay(msg)
	case viewEpisodes:
		return m.updateEpisodes(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode. The menu signals its choice
// with tea.Quit, which the session swallows.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsEpisodes():
		cfg := m.opts.Config
		episodes := NewEpisodesModel(m.opts.Store, "", cfg.ScreenW, cfg.ScreenH)
		m.episodes = &episodes
		m.view = viewEpisodes
		return m, nil

	case m.menu.Selected() != nil:
		play, err := m.newPlay(m.menu.Selected().EnvID)
		if err != nil {
			m.opts.Logger.Error("cannot start environment", "error", err)
			m.menu = NewMenuModel(m.opts.Store, m.opts.Config)
			return m, nil
		}
		m.play = play
		m.view = viewPlay
		return m, m.play.Init()
	}

	return m, cmd
}

// newPlay creates a fresh environment for this session.
func (m SessionModel) newPlay(envID string) (*Model, error) {
	created, err := registry.Create(envID, registry.Options{
		Rewards: m.opts.Rewards,
		Seed:    m.opts.Config.Seed,
		Logger:  m.opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	e, ok := created.(PlayEnv)
	if !ok {
		created.Close()
		return nil, fmt.Errorf("tui: environment %q cannot be played", envID)
	}

	model := NewModel(e, m.opts.Config, PlayOptions{
		Store:  m.opts.Store,
		Logger: m.opts.Logger,
		Source: storage.SourceSSH,
		Seed:   m.opts.Config.Seed,
	})
	model.standalone = false
	return &model, nil
}

// updatePlay handles updates while playing.
func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.play.Update(msg)
	if playModel, ok := newModel.(Model); ok {
		m.play = &playModel
	}

	if m.play.IsQuitting() {
		m.play.env.Close()
		m.quitting = true
		return m, tea.Quit
	}

	if m.play.BackToMenu() {
		m.play.env.Close()
		m.play = nil
		m.view = viewMenu
		m.menu = NewMenuModel(m.opts.Store, m.opts.Config)
		return m, m.menu.Init()
	}

	return m, cmd
}

// updateEpisodes handles updates in the episode browser.
func (m SessionModel) updateEpisodes(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.episodes.Update(msg)
	if epModel, ok := newModel.(EpisodesModel); ok {
		m.episodes = &epModel
	}

	if m.episodes.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.episodes.IsGoingBack() {
		m.episodes = nil
		m.view = viewMenu
		m.menu = NewMenuModel(m.opts.Store, m.opts.Config)
		return m, m.menu.Init()
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewPlay:
		return m.play.View()
	case viewEpisodes:
		return m.episodes.View()
	default:
		return m.menu.View()
	}
}
