package core

// Observation is a flattened board, one cell code per entry, row-major.
type Observation []int16

// EpisodeInfo is reported once per finished episode.
type EpisodeInfo struct {
	EpisodicReward int
	EpisodicLength int
}

// Info carries the auxiliary data returned by reset and step.
// FinalInfo is set only on the step that terminates an episode.
type Info struct {
	FinalInfo *EpisodeInfo
}

// BoxSpace declares a bounded integer observation space.
type BoxSpace struct {
	Low   int16
	High  int16
	Shape []int
	Dtype string
}

// Size returns the number of elements in one observation.
func (b BoxSpace) Size() int {
	n := 1
	for _, d := range b.Shape {
		n *= d
	}
	return n
}

// Contains reports whether obs has the declared size and bounds.
func (b BoxSpace) Contains(obs Observation) bool {
	if len(obs) != b.Size() {
		return false
	}
	for _, v := range obs {
		if v < b.Low || v > b.High {
			return false
		}
	}
	return true
}

// DiscreteSpace declares the actions 0..N-1.
type DiscreteSpace struct {
	N int
}

// Contains reports whether a is a valid action.
func (d DiscreteSpace) Contains(a int) bool {
	return a >= 0 && a < d.N
}
