// Package rollout runs batches of headless episodes with a controller policy.
// Each worker owns its own environment instance; episodes are handed out
// over a channel and their results are returned in episode order.
package rollout

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-env/internal/agent"
	"github.com/vovakirdan/snake-env/internal/games/snake"
	"github.com/vovakirdan/snake-env/internal/registry"
)

// CauseMaxSteps marks episodes cut off by the step limit.
const CauseMaxSteps = "max_steps"

// ctxCheckInterval is how many steps run between cancellation checks.
const ctxCheckInterval = 256

// Config describes one batch.
type Config struct {
	EnvID    string
	Size     int // 0 keeps the environment's board size
	Episodes int
	Workers  int
	MaxSteps int // 0 = until termination
	Policy   string
	Seed     int64 // episode i is reset with Seed+i
	Rewards  snake.Rewards
	Logger   *log.Logger
}

// Result is the outcome of one episode.
type Result struct {
	Episode     int
	Seed        int64
	Reward      int
	Steps       int
	SnakeLength int
	Cause       string
}

// Won reports whether the snake filled the board.
func (r Result) Won() bool {
	return r.Cause == snake.CauseBoardFull.String()
}

// Run plays cfg.Episodes episodes. Results do not depend on the worker count.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Episodes < 0 {
		return nil, fmt.Errorf("rollout: negative episode count %d", cfg.Episodes)
	}
	if !registry.Exists(cfg.EnvID) {
		return nil, fmt.Errorf("rollout: unknown environment %q", cfg.EnvID)
	}
	if _, err := agent.New(cfg.Policy, cfg.Seed); err != nil {
		return nil, fmt.Errorf("rollout: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	workers := max(1, min(cfg.Workers, cfg.Episodes))

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Episodes; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]Result, cfg.Episodes)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := runWorker(ctx, cfg, logger.With("worker", worker), jobs, results); err != nil {
				fail(err)
			}
		}(w)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, fmt.Errorf("rollout: %w", err)
	}
	return results, nil
}

// runWorker plays episodes from jobs on one environment instance.
func runWorker(ctx context.Context, cfg Config, logger *log.Logger, jobs <-chan int, results []Result) error {
	e, err := registry.Create(cfg.EnvID, registry.Options{
		Size:    cfg.Size,
		Rewards: cfg.Rewards,
		Seed:    cfg.Seed,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("rollout: %w", err)
	}
	defer e.Close()

	for i := range jobs {
		seed := cfg.Seed + int64(i)
		policy, err := agent.New(cfg.Policy, seed)
		if err != nil {
			return fmt.Errorf("rollout: %w", err)
		}

		res, err := playEpisode(ctx, e, policy, seed, cfg.MaxSteps)
		if err != nil {
			return err
		}
		res.Episode = i
		results[i] = res

		logger.Debug("episode done",
			"episode", i,
			"reward", res.Reward,
			"steps", res.Steps,
			"cause", res.Cause,
		)
	}
	return nil
}

type snapshotter interface {
	Snapshot() snake.Snapshot
}

// playEpisode runs one episode to termination or the step limit.
func playEpisode(ctx context.Context, e registry.Env, policy agent.Policy, seed int64, maxSteps int) (Result, error) {
	n := e.GridSize()
	obs, _ := e.Reset(&seed)
	policy.Reset()

	res := Result{Seed: seed}
	for {
		if maxSteps > 0 && res.Steps >= maxSteps {
			res.Cause = CauseMaxSteps
			fillFinal(e, &res)
			return res, nil
		}
		if res.Steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("rollout: %w", err)
			}
		}

		var (
			reward     int
			terminated bool
			err        error
		)
		obs, reward, terminated, _, _, err = e.Step(policy.Act(obs, n))
		if err != nil {
			return res, fmt.Errorf("rollout: step %d: %w", res.Steps, err)
		}
		res.Reward += reward
		res.Steps++

		if terminated {
			fillFinal(e, &res)
			return res, nil
		}
	}
}

// fillFinal copies the end-of-episode details the gym tuple does not carry.
func fillFinal(e registry.Env, res *Result) {
	s, ok := e.(snapshotter)
	if !ok {
		return
	}
	snap := s.Snapshot()
	res.SnakeLength = snap.Len
	if snap.State == snake.StateTerminated {
		res.Cause = snap.Cause.String()
	}
}
