// Package env wraps the snake engine in the reset/step contract used by
// controllers and training harnesses.
package env

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/games/snake"
	"github.com/vovakirdan/snake-env/internal/registry"
)

// ErrInvalidAction is returned by Step for action codes outside [0,4].
var ErrInvalidAction = errors.New("env: invalid action")

// Options configures a new Env.
type Options struct {
	ID      string
	Title   string
	Size    int
	Rewards snake.Rewards
	Seed    int64
	Logger  *log.Logger
}

// Env is a single-episode-at-a-time snake environment.
// An Env is not safe for concurrent use; run one instance per goroutine.
type Env struct {
	id     string
	title  string
	engine *snake.Engine
	logger *log.Logger
	closed bool
}

var _ registry.Env = (*Env)(nil)

// New creates an environment and starts its first episode.
func New(opts Options) (*Env, error) {
	engine, err := snake.NewEngine(snake.Config{
		Size:    opts.Size,
		Rewards: opts.Rewards,
		Seed:    opts.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.ID == "" {
		opts.ID = "snake"
	}
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("Snake %dx%d", opts.Size, opts.Size)
	}

	return &Env{
		id:     opts.ID,
		title:  opts.Title,
		engine: engine,
		logger: logger.With("env", opts.ID),
	}, nil
}

// ID returns the environment identifier.
func (e *Env) ID() string {
	return e.id
}

// Title returns the display name.
func (e *Env) Title() string {
	return e.title
}

// GridSize returns the board side length.
func (e *Env) GridSize() int {
	return e.engine.Size()
}

// Reset starts a new episode. A non-nil seed restarts food placement from
// that seed first.
func (e *Env) Reset(seed *int64) (core.Observation, core.Info) {
	if seed != nil {
		e.engine.Seed(*seed)
	}
	e.engine.Reset()
	return e.observation(), core.Info{}
}

// Step applies one action and returns the gym-style tuple. info.FinalInfo is
// set only when the episode terminated on this step.
func (e *Env) Step(action int) (obs core.Observation, reward int, terminated, truncated bool, info core.Info, err error) {
	if !core.ValidAction(action) {
		return nil, 0, false, false, core.Info{}, fmt.Errorf("%w: %d", ErrInvalidAction, action)
	}

	active := e.engine.State() == snake.StateActive
	res := e.engine.Step(core.Action(action))
	if active && res.Terminated && res.Summary != nil {
		info.FinalInfo = &core.EpisodeInfo{
			EpisodicReward: res.Summary.Reward,
			EpisodicLength: res.Summary.Steps,
		}
		e.logEpisodeEnd(res)
	}

	return e.observation(), res.Reward, res.Terminated, res.Truncated, info, nil
}

func (e *Env) logEpisodeEnd(res snake.StepResult) {
	if res.Cause == snake.CauseBoardFull {
		e.logger.Info("winner", "reward", res.Summary.Reward, "steps", res.Summary.Steps)
		return
	}
	e.logger.Debug("episode ended",
		"cause", res.Cause,
		"reward", res.Summary.Reward,
		"steps", res.Summary.Steps,
		"length", e.engine.Len(),
	)
}

func (e *Env) observation() core.Observation {
	n := e.engine.Size()
	return core.Observation(e.engine.Observation(make([]int16, 0, n*n)))
}

// ObservationSpace declares N² int16 values in [0,3].
func (e *Env) ObservationSpace() core.BoxSpace {
	n := e.engine.Size()
	return core.BoxSpace{
		Low:   int16(snake.CellEmpty),
		High:  int16(snake.MaxCell),
		Shape: []int{n * n},
		Dtype: "int16",
	}
}

// ActionSpace declares the five discrete actions.
func (e *Env) ActionSpace() core.DiscreteSpace {
	return core.DiscreteSpace{N: core.NumActions}
}

// Food returns the current food cell, core.NoPosition when none is placed.
func (e *Env) Food() core.Position {
	return e.engine.Food()
}

// Snapshot returns the engine snapshot.
func (e *Env) Snapshot() snake.Snapshot {
	return e.engine.Snapshot()
}

// Engine exposes the underlying simulation.
func (e *Env) Engine() *snake.Engine {
	return e.engine
}

// Close marks the environment closed. It holds no external resources.
func (e *Env) Close() error {
	e.closed = true
	return nil
}
