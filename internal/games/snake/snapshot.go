package snake

import "github.com/vovakirdan/snake-env/internal/core"

// Snapshot captures the engine state for determinism testing and debugging.
type Snapshot struct {
	Steps     int
	Reward    int
	Len       int
	RingIndex int
	Head      core.Position
	Food      core.Position
	Heading   core.Direction
	State     State
	Cause     Cause
}

// Snapshot returns the current engine snapshot.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Steps:     e.steps,
		Reward:    e.reward,
		Len:       e.path.Len(),
		RingIndex: e.path.HeadIndex(),
		Head:      e.path.Head(),
		Food:      e.food,
		Heading:   e.heading,
		State:     e.state,
		Cause:     e.cause,
	}
}
