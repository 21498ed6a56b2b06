package agent

import (
	"math/rand"

	"github.com/vovakirdan/snake-env/internal/core"
)

// Observation codes, mirrored from the board encoding.
const (
	obsEmpty = 0
	obsHead  = 2
	obsFood  = 3
)

// Greedy always moves toward the food along a safe cell, consequences
// beyond the next step ignored. Ties keep the previous direction. With no
// safe move it picks a random direction.
type Greedy struct {
	rng     *rand.Rand
	heading core.Direction
}

// NewGreedy creates a greedy policy.
func NewGreedy(seed int64) *Greedy {
	return &Greedy{rng: rand.New(rand.NewSource(seed)), heading: core.DirUp}
}

func (g *Greedy) Name() string { return "greedy" }

// Reset restores the initial heading.
func (g *Greedy) Reset() {
	g.heading = core.DirUp
}

func (g *Greedy) Act(obs core.Observation, n int) int {
	head, food, ok := locate(obs, n)
	if !ok {
		return int(core.ActionNone)
	}

	best := -1
	bestDist := 0
	for i, d := range core.Directions {
		next := head.Add(d.Offset())
		if !safe(obs, n, next) {
			continue
		}
		dist := next.Manhattan(food)
		if !food.Valid() {
			dist = 0
		}
		switch {
		case best < 0, dist < bestDist:
			best, bestDist = i, dist
		case dist == bestDist && d == g.heading:
			best = i
		}
	}

	if best < 0 {
		g.heading = core.Directions[g.rng.Intn(len(core.Directions))]
	} else {
		g.heading = core.Directions[best]
	}
	return int(g.heading.Action())
}

// locate finds the head and the food; food is core.NoPosition when absent.
func locate(obs core.Observation, n int) (head, food core.Position, ok bool) {
	head, food = core.NoPosition, core.NoPosition
	for i, v := range obs {
		switch v {
		case obsHead:
			head = core.Pos(i/n, i%n)
			ok = true
		case obsFood:
			food = core.Pos(i/n, i%n)
		}
	}
	return head, food, ok
}

func safe(obs core.Observation, n int, p core.Position) bool {
	if p.Row < 0 || p.Row >= n || p.Col < 0 || p.Col >= n {
		return false
	}
	v := obs[p.Row*n+p.Col]
	return v == obsEmpty || v == obsFood
}
