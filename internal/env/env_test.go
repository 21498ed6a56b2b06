package env

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/games/snake"
	"github.com/vovakirdan/snake-env/internal/registry"
)

func newTestEnv(t *testing.T, size int, seed int64) *Env {
	t.Helper()
	e, err := New(Options{Size: size, Rewards: snake.DefaultRewards(), Seed: seed})
	if err != nil {
		t.Fatalf("New(size=%d) failed: %v", size, err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func countCode(obs core.Observation, code snake.Cell) int {
	n := 0
	for _, v := range obs {
		if v == int16(code) {
			n++
		}
	}
	return n
}

func TestPresetsRegistered(t *testing.T) {
	tests := []struct {
		id   string
		size int
	}{
		{"snake", 32},
		{"snake-small", 8},
		{"snake-tiny", 2},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			info, ok := registry.Lookup(tt.id)
			if !ok {
				t.Fatalf("Preset %q not registered", tt.id)
			}
			if info.GridSize != tt.size {
				t.Errorf("GridSize = %d, expected %d", info.GridSize, tt.size)
			}

			e, err := registry.Create(tt.id, registry.DefaultOptions())
			if err != nil {
				t.Fatalf("Create(%q) failed: %v", tt.id, err)
			}
			defer e.Close()
			if e.ID() != tt.id {
				t.Errorf("ID() = %q, expected %q", e.ID(), tt.id)
			}
		})
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := registry.Create("no-such-env", registry.DefaultOptions()); err == nil {
		t.Error("Expected error for unknown environment")
	}
}

func TestNewRejectsTinyGrid(t *testing.T) {
	_, err := New(Options{Size: 1, Rewards: snake.DefaultRewards()})
	if !errors.Is(err, snake.ErrGridTooSmall) {
		t.Errorf("New(size=1) error = %v, expected ErrGridTooSmall", err)
	}
}

func TestSpaces(t *testing.T) {
	e := newTestEnv(t, 8, 1)

	obsSpace := e.ObservationSpace()
	if obsSpace.Size() != 64 {
		t.Errorf("Observation size = %d, expected 64", obsSpace.Size())
	}
	if obsSpace.Low != 0 || obsSpace.High != 3 {
		t.Errorf("Observation bounds = [%d,%d], expected [0,3]", obsSpace.Low, obsSpace.High)
	}
	if obsSpace.Dtype != "int16" {
		t.Errorf("Dtype = %q, expected int16", obsSpace.Dtype)
	}
	if e.ActionSpace().N != 5 {
		t.Errorf("Action space N = %d, expected 5", e.ActionSpace().N)
	}
}

func TestResetObservation(t *testing.T) {
	e := newTestEnv(t, 8, 3)

	obs, info := e.Reset(nil)
	if info.FinalInfo != nil {
		t.Error("Reset should not report final info")
	}
	if !e.ObservationSpace().Contains(obs) {
		t.Fatalf("Observation outside declared space: %v", obs)
	}
	if countCode(obs, snake.CellHead) != 1 {
		t.Errorf("Expected one head, got %d", countCode(obs, snake.CellHead))
	}
	if countCode(obs, snake.CellFood) != 1 {
		t.Errorf("Expected one food, got %d", countCode(obs, snake.CellFood))
	}
	if countCode(obs, snake.CellBody) != 0 {
		t.Errorf("Expected no body cells, got %d", countCode(obs, snake.CellBody))
	}
	// Center of an 8x8 board is (4,4).
	if obs[4*8+4] != int16(snake.CellHead) {
		t.Errorf("Head not at center: %v", obs)
	}
	food := e.Food()
	if obs[food.Row*8+food.Col] != int16(snake.CellFood) {
		t.Errorf("Food() = %v does not match observation", food)
	}
}

func TestResetSeedReproducible(t *testing.T) {
	a := newTestEnv(t, 8, 100)
	b := newTestEnv(t, 8, 200)

	seed := int64(42)
	obsA, _ := a.Reset(&seed)
	obsB, _ := b.Reset(&seed)
	if !slices.Equal(obsA, obsB) {
		t.Fatal("Same reset seed should give the same observation")
	}

	actions := []int{0, 2, 2, 1, 1, 3, 4, 0}
	for i, act := range actions {
		oa, ra, ta, _, _, errA := a.Step(act)
		ob, rb, tb, _, _, errB := b.Step(act)
		if errA != nil || errB != nil {
			t.Fatalf("Step %d errors: %v, %v", i, errA, errB)
		}
		if ra != rb || ta != tb || !slices.Equal(oa, ob) {
			t.Fatalf("Step %d diverged", i)
		}
	}
}

func TestStepInvalidAction(t *testing.T) {
	e := newTestEnv(t, 8, 1)
	before := e.Snapshot()

	for _, act := range []int{-1, 5, 99} {
		_, _, _, _, _, err := e.Step(act)
		if !errors.Is(err, ErrInvalidAction) {
			t.Errorf("Step(%d) error = %v, expected ErrInvalidAction", act, err)
		}
	}

	if e.Snapshot() != before {
		t.Error("Invalid actions should not change the episode")
	}
}

func TestStepObservationIsFresh(t *testing.T) {
	e := newTestEnv(t, 8, 1)

	first, _, _, _, _, err := e.Step(int(core.ActionNone))
	if err != nil {
		t.Fatal(err)
	}
	kept := slices.Clone(first)

	if _, _, _, _, _, err := e.Step(int(core.ActionNone)); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(first, kept) {
		t.Error("Returned observation was modified by a later step")
	}
}

func TestWallEndsEpisode(t *testing.T) {
	e := newTestEnv(t, 8, 1)

	// From (4,4) heading up the head leaves the board on the fifth move.
	var (
		reward     int
		terminated bool
		info       core.Info
		err        error
	)
	for i := 0; i < 5; i++ {
		_, reward, terminated, _, info, err = e.Step(int(core.ActionUp))
		if err != nil {
			t.Fatal(err)
		}
		if i < 4 && terminated {
			t.Fatalf("Terminated early at step %d", i+1)
		}
	}

	if !terminated {
		t.Fatal("Expected termination at the wall")
	}
	if reward != -1 {
		t.Errorf("Collision reward = %d, expected -1", reward)
	}
	if info.FinalInfo == nil {
		t.Fatal("Expected final info on the terminating step")
	}
	if info.FinalInfo.EpisodicLength != 5 {
		t.Errorf("EpisodicLength = %d, expected 5", info.FinalInfo.EpisodicLength)
	}
	if info.FinalInfo.EpisodicReward != -1 {
		t.Errorf("EpisodicReward = %d, expected -1", info.FinalInfo.EpisodicReward)
	}
	if e.Snapshot().Cause != snake.CauseWall {
		t.Errorf("Cause = %v, expected wall", e.Snapshot().Cause)
	}

	// Stepping again reports termination without repeating final info.
	_, reward, terminated, _, info, err = e.Step(int(core.ActionLeft))
	if err != nil {
		t.Fatal(err)
	}
	if !terminated || reward != 0 || info.FinalInfo != nil {
		t.Errorf("After termination: terminated=%v reward=%d final=%v", terminated, reward, info.FinalInfo)
	}

	obs, _ := e.Reset(nil)
	if countCode(obs, snake.CellHead) != 1 || e.Snapshot().Steps != 0 {
		t.Error("Reset should start a fresh episode")
	}
}

func TestTruncatedNeverSet(t *testing.T) {
	e := newTestEnv(t, 4, 5)
	actions := []int{0, 3, 1, 1, 2, 2, 0, 0, 3, 4}
	for _, act := range actions {
		_, _, _, truncated, _, err := e.Step(act)
		if err != nil {
			t.Fatal(err)
		}
		if truncated {
			t.Fatal("Truncated should always be false")
		}
	}
}

func TestRenderBoard(t *testing.T) {
	e := newTestEnv(t, 8, 1)
	screen := core.NewScreen(80, 24)
	e.Render(screen)

	if !strings.Contains(screen.Row(0), "Reward: 0") {
		t.Errorf("HUD row = %q", screen.Row(0))
	}

	// 80 columns fit two columns per cell: board is 18 wide at x=31.
	if screen.Get(31, 1) != '┌' {
		t.Errorf("Expected box corner at (31,1), got %q", screen.Get(31, 1))
	}
	if screen.Get(31+17, 1+9) != '┘' {
		t.Errorf("Expected box corner at (48,10), got %q", screen.Get(48, 10))
	}

	head := screen.GetCell(31+1+4*2, 1+1+4)
	if head.Rune != '█' || head.Color != core.ColorBrightGreen {
		t.Errorf("Head cell = %+v", head)
	}

	food := e.Food()
	fc := screen.GetCell(31+1+food.Col*2, 1+1+food.Row)
	if fc.Color != core.ColorRed {
		t.Errorf("Food cell = %+v", fc)
	}
}

func TestRenderTooSmall(t *testing.T) {
	e := newTestEnv(t, 8, 1)
	screen := core.NewScreen(20, 5)
	e.Render(screen)

	if !strings.Contains(screen.String(), "Window too small") {
		t.Errorf("Expected too-small message, got:\n%s", screen.String())
	}
}

func TestRenderGameOver(t *testing.T) {
	e := newTestEnv(t, 8, 1)
	for i := 0; i < 5; i++ {
		_, _, _, _, _, _ = e.Step(int(core.ActionUp))
	}

	screen := core.NewScreen(80, 24)
	e.Render(screen)
	if !strings.Contains(screen.String(), "Game Over") {
		t.Errorf("Expected game over overlay, got:\n%s", screen.String())
	}
}

func TestPresetSizeOverride(t *testing.T) {
	e, err := registry.Create("snake", registry.Options{Size: 12, Rewards: snake.DefaultRewards()})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if e.GridSize() != 12 {
		t.Errorf("GridSize() = %d, expected 12", e.GridSize())
	}
	if e.Title() != "Snake 12x12" {
		t.Errorf("Title() = %q", e.Title())
	}
	if _, err := registry.Create("snake", registry.Options{Size: 1}); err == nil {
		t.Error("Expected error for a 1x1 board")
	}
}
