package snake

import (
	"math/rand"

	"github.com/vovakirdan/snake-env/internal/core"
)

// ApplePlacer drops food on a uniformly random empty cell.
type ApplePlacer struct {
	rng  *rand.Rand
	free []core.Position // scratch, reused between calls
}

// NewApplePlacer creates a placer with its own seeded generator.
func NewApplePlacer(seed int64) *ApplePlacer {
	return &ApplePlacer{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Seed restarts the generator sequence.
func (a *ApplePlacer) Seed(seed int64) {
	a.rng.Seed(seed)
}

// Int63 draws from the placer's generator. Used to derive follow-up seeds.
func (a *ApplePlacer) Int63() int64 {
	return a.rng.Int63()
}

// Place writes CellFood on a random empty cell of g and returns it.
// ok is false when no empty cell is left, which is the win condition.
func (a *ApplePlacer) Place(g *Grid) (pos core.Position, ok bool) {
	if cap(a.free) < g.Size()*g.Size() {
		a.free = make([]core.Position, 0, g.Size()*g.Size())
	}
	a.free = g.CellsWithCode(CellEmpty, a.free[:0])
	if len(a.free) == 0 {
		return core.NoPosition, false
	}

	pos = a.free[a.rng.Intn(len(a.free))]
	g.Set(pos, CellFood)
	return pos, true
}
