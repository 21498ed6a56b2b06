// Package agent provides simple controller policies for headless rollouts.
// Policies see only the flattened observation, the same data an external
// learner receives.
package agent

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/vovakirdan/snake-env/internal/core"
)

// Policy picks an action code for an observation of an n×n board.
type Policy interface {
	Name() string
	Act(obs core.Observation, n int) int
	// Reset clears per-episode state.
	Reset()
}

type constructor func(seed int64) Policy

var policies = map[string]constructor{
	"random": func(seed int64) Policy { return NewRandom(seed) },
	"greedy": func(seed int64) Policy { return NewGreedy(seed) },
}

// New returns the named policy.
func New(name string, seed int64) (Policy, error) {
	c, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("agent: unknown policy %q", name)
	}
	return c(seed), nil
}

// Names lists the available policies, sorted.
func Names() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Random samples uniformly from the action space.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random policy.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Name() string { return "random" }

func (r *Random) Act(core.Observation, int) int {
	return r.rng.Intn(core.NumActions)
}

func (r *Random) Reset() {}
