package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/env"
	"github.com/vovakirdan/snake-env/internal/games/snake"
	"github.com/vovakirdan/snake-env/internal/storage"
)

func newPlayModel(t *testing.T, store *storage.Store) Model {
	t.Helper()
	e, err := env.New(env.Options{ID: "snake-small", Size: 8, Rewards: snake.DefaultRewards(), Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 10, Seed: 1}
	return NewModel(e, cfg, PlayOptions{Store: store, Seed: 1})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, TickMsg(time.Now()))
}

func TestModelSteersFromKeys(t *testing.T) {
	m := newPlayModel(t, nil)

	m = update(t, m, runeKey('a'))
	m = tick(t, m)

	snap := m.env.Snapshot()
	if snap.Heading != core.DirLeft {
		t.Errorf("Heading = %v, expected left", snap.Heading)
	}
	if snap.Head != core.Pos(4, 3) {
		t.Errorf("Head = %v, expected (4,3)", snap.Head)
	}

	// No key keeps the heading.
	m = tick(t, m)
	if got := m.env.Snapshot().Head; got != core.Pos(4, 2) {
		t.Errorf("Head = %v, expected (4,2)", got)
	}
}

func TestModelRecordsAndAutoResets(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m := newPlayModel(t, store)

	// Heading up from (4,4) leaves the board on the fifth step.
	for i := 0; i < 5; i++ {
		m = tick(t, m)
	}
	if m.env.Snapshot().State != snake.StateTerminated {
		t.Fatalf("Expected terminated episode, got %+v", m.env.Snapshot())
	}
	if m.Episodes() != 1 {
		t.Errorf("Episodes() = %d, expected 1", m.Episodes())
	}

	eps, err := store.TopEpisodes("snake-small", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 {
		t.Fatalf("Expected 1 stored episode, got %d", len(eps))
	}
	if eps[0].Cause != "wall" || eps[0].Source != storage.SourceHuman || eps[0].Length != 5 {
		t.Errorf("Stored episode = %+v", eps[0])
	}

	// The final frame is held for one second of ticks, then a new episode starts.
	for i := 0; i < 10; i++ {
		m = tick(t, m)
	}
	snap := m.env.Snapshot()
	if snap.State != snake.StateActive || snap.Steps != 0 {
		t.Errorf("Expected a fresh episode, got %+v", snap)
	}
	if m.Episodes() != 1 {
		t.Errorf("Episode counted twice: %d", m.Episodes())
	}
}

func TestModelPause(t *testing.T) {
	m := newPlayModel(t, nil)

	m = update(t, m, runeKey('p'))
	m = tick(t, m)
	if m.env.Snapshot().Steps != 0 {
		t.Error("Paused model should not step")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("Expected PAUSED in the status line")
	}

	m = update(t, m, runeKey('p'))
	m = tick(t, m)
	if m.env.Snapshot().Steps != 1 {
		t.Errorf("Steps = %d, expected 1 after unpause", m.env.Snapshot().Steps)
	}
}

func TestModelReset(t *testing.T) {
	m := newPlayModel(t, nil)
	m = tick(t, m)
	m = tick(t, m)

	m = update(t, m, runeKey('r'))
	if m.env.Snapshot().Steps != 0 {
		t.Error("Reset key should start a new episode")
	}
}

func TestModelQuit(t *testing.T) {
	m := newPlayModel(t, nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if !next.(Model).IsQuitting() {
		t.Error("Model should be quitting")
	}
	if next.(Model).View() != "" {
		t.Error("Quitting model should render nothing")
	}
}

func TestModelBackInsideSession(t *testing.T) {
	m := newPlayModel(t, nil)
	m.standalone = false

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Error("Back inside a session should not quit the program")
	}
	if !next.(Model).BackToMenu() {
		t.Error("Expected back-to-menu")
	}
}

func TestModelResize(t *testing.T) {
	m := newPlayModel(t, nil)
	m = tick(t, m)

	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 15})
	if m.screen.Width() != 40 || m.screen.Height() != 15 {
		t.Errorf("Screen = %dx%d, expected 40x15", m.screen.Width(), m.screen.Height())
	}
	if m.env.Snapshot().Steps != 1 {
		t.Error("Resize should not restart the episode")
	}
}

func TestRenderScreenText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawText(0, 0, "ab")
	s.SetColored(2, 0, 'x', core.ColorRed)
	s.SetColored(3, 0, 'y', core.ColorRed)

	out := RenderScreen(s)
	for _, want := range []string{"ab", "xy"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderScreen() = %q, missing %q", out, want)
		}
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Expected 2 rows, got %q", out)
	}
}
