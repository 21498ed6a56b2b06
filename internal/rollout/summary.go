package rollout

// Summary aggregates a batch of results.
type Summary struct {
	Episodes       int
	Wins           int
	Truncated      int
	BestReward     int
	MeanReward     float64
	MeanSteps      float64
	MaxSnakeLength int
}

// Summarize aggregates results. An empty batch yields a zero Summary.
func Summarize(results []Result) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}

	s.Episodes = len(results)
	s.BestReward = results[0].Reward

	var rewards, steps int
	for _, r := range results {
		rewards += r.Reward
		steps += r.Steps
		s.BestReward = max(s.BestReward, r.Reward)
		s.MaxSnakeLength = max(s.MaxSnakeLength, r.SnakeLength)
		switch {
		case r.Won():
			s.Wins++
		case r.Cause == CauseMaxSteps:
			s.Truncated++
		}
	}

	s.MeanReward = float64(rewards) / float64(s.Episodes)
	s.MeanSteps = float64(steps) / float64(s.Episodes)
	return s
}
