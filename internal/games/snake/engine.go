// Package snake implements the single-player snake simulation: an N×N board,
// a ring-buffer body and uniform food placement, advanced one step per
// controller action.
package snake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/snake-env/internal/core"
)

// ErrGridTooSmall is returned for boards with fewer than two cells per side.
var ErrGridTooSmall = errors.New("snake: grid size must be at least 2")

// MinGridSize is the smallest supported board side.
const MinGridSize = 2

// State is the episode lifecycle state.
type State int

const (
	StateActive State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateTerminated {
		return "terminated"
	}
	return "active"
}

// Cause tells why an episode terminated.
type Cause int

const (
	CauseNone      Cause = iota
	CauseWall            // head left the board
	CauseSelf            // head ran into the body
	CauseBoardFull       // no empty cell left for food: the snake won
)

func (c Cause) String() string {
	switch c {
	case CauseWall:
		return "wall"
	case CauseSelf:
		return "self"
	case CauseBoardFull:
		return "board_full"
	default:
		return "none"
	}
}

// Rewards holds the per-step reward policy.
type Rewards struct {
	Collision int
	Score     int
	Winner    int
	// ScoreOnGrowth pays Score for eating food. Off by default: eating food
	// without winning pays 0.
	ScoreOnGrowth bool
}

// DefaultRewards returns the reference reward table.
func DefaultRewards() Rewards {
	return Rewards{
		Collision: -1,
		Score:     1,
		Winner:    10,
	}
}

// Config configures a new Engine.
type Config struct {
	Size    int
	Rewards Rewards
	Seed    int64
}

// EpisodeSummary is reported when an episode ends.
type EpisodeSummary struct {
	Reward int // cumulative reward
	Steps  int // steps taken, including the terminating one
}

// StepResult is what one Step returns besides the board itself.
type StepResult struct {
	Reward     int
	Terminated bool
	Truncated  bool // always false, episodes have no time limit
	Cause      Cause
	Summary    *EpisodeSummary // set only when Terminated
}

// Engine owns one board, one body and one food placer.
type Engine struct {
	size    int
	rewards Rewards

	grid   *Grid
	path   *Path
	placer *ApplePlacer

	heading core.Direction
	food    core.Position
	state   State
	cause   Cause

	reward int
	steps  int
}

// NewEngine builds an engine and resets it to the first episode.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Size < MinGridSize {
		return nil, fmt.Errorf("%w: got %d", ErrGridTooSmall, cfg.Size)
	}

	e := &Engine{
		size:    cfg.Size,
		rewards: cfg.Rewards,
		grid:    NewGrid(cfg.Size),
		path:    NewPath(cfg.Size * cfg.Size),
		placer:  NewApplePlacer(cfg.Seed),
	}
	e.Reset()
	return e, nil
}

// Seed restarts the food placement sequence. Takes effect from the next
// placement, typically the one done by Reset.
func (e *Engine) Seed(seed int64) {
	e.placer.Seed(seed)
}

// Reset starts a new episode: empty board, length-1 snake at the center
// heading up, one food cell, zeroed counters.
func (e *Engine) Reset() {
	center := core.Pos(e.size/2, e.size/2)

	e.grid.Fill(CellEmpty)
	e.grid.Set(center, CellHead)
	e.path.Reset(center)

	e.heading = core.DirUp
	e.state = StateActive
	e.cause = CauseNone
	e.reward = 0
	e.steps = 0

	// Boards of at least 2×2 always have a free cell here.
	e.food, _ = e.placer.Place(e.grid)
}

// Step applies one action. Collisions and wins end the episode; they are
// reported in the result, never as errors. Panics on an action code outside
// the action space.
func (e *Engine) Step(action core.Action) StepResult {
	if !core.ValidAction(int(action)) {
		panic(fmt.Sprintf("snake: invalid action %d", int(action)))
	}
	if e.state == StateTerminated {
		return StepResult{Terminated: true, Cause: e.cause, Summary: e.Summary()}
	}

	if d, ok := action.Direction(); ok {
		e.heading = d
	}

	res := e.move()

	e.reward += res.Reward
	e.steps++
	if res.Terminated {
		e.state = StateTerminated
		e.cause = res.Cause
		res.Summary = e.Summary()
	}
	return res
}

// move resolves the head movement for the current heading.
func (e *Engine) move() StepResult {
	head := e.path.Head()
	next := head.Add(e.heading.Offset())

	if !e.grid.InBounds(next) {
		return StepResult{Reward: e.rewards.Collision, Terminated: true, Cause: CauseWall}
	}
	target := e.grid.Get(next)
	if target.IsSnake() {
		return StepResult{Reward: e.rewards.Collision, Terminated: true, Cause: CauseSelf}
	}

	grew := target == CellFood
	if tail, ok := e.path.Advance(next, grew); ok {
		e.grid.Set(tail, CellEmpty)
	}
	if e.path.Len() > 1 {
		e.grid.Set(head, CellBody)
	}
	e.grid.Set(next, CellHead)

	if !grew {
		return StepResult{}
	}

	food, ok := e.placer.Place(e.grid)
	e.food = food
	if !ok {
		return StepResult{Reward: e.rewards.Winner, Terminated: true, Cause: CauseBoardFull}
	}
	if e.rewards.ScoreOnGrowth {
		return StepResult{Reward: e.rewards.Score}
	}
	return StepResult{}
}

// Summary returns the running episode totals.
func (e *Engine) Summary() *EpisodeSummary {
	return &EpisodeSummary{Reward: e.reward, Steps: e.steps}
}

// Grid exposes the board read-only.
func (e *Engine) Grid() GridView {
	return e.grid
}

// Observation appends the flattened board to dst.
func (e *Engine) Observation(dst []int16) []int16 {
	return e.grid.Flatten(dst)
}

// Size returns the board side length.
func (e *Engine) Size() int {
	return e.size
}

// Head returns the head position.
func (e *Engine) Head() core.Position {
	return e.path.Head()
}

// Food returns the food position, core.NoPosition once the board is full.
func (e *Engine) Food() core.Position {
	return e.food
}

// Heading returns the direction of travel.
func (e *Engine) Heading() core.Direction {
	return e.heading
}

// Len returns the snake length.
func (e *Engine) Len() int {
	return e.path.Len()
}

// Body appends the snake segments, head first, to dst.
func (e *Engine) Body(dst []core.Position) []core.Position {
	return e.path.Segments(dst)
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Cause returns why the episode ended, CauseNone while active.
func (e *Engine) Cause() Cause {
	return e.cause
}

// DebugState returns a string representation of the engine state.
func (e *Engine) DebugState() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Steps: %d, Reward: %d, State: %s\n", e.steps, e.reward, e.state)
	fmt.Fprintf(&b, "Len: %d, Heading: %s, Ring index: %d\n", e.path.Len(), e.heading, e.path.HeadIndex())
	fmt.Fprintf(&b, "Head: %v, Food: %v\n", e.path.Head(), e.food)
	for r := 0; r < e.size; r++ {
		for c := 0; c < e.size; c++ {
			b.WriteByte(".ohx"[e.grid.Get(core.Pos(r, c))])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
