package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// DefaultSnakeConfig returns the default snake configuration.
func DefaultSnakeConfig() SnakeConfig {
	return SnakeConfig{
		Grid: GridConfig{
			Size: 32,
		},
		Rewards: RewardsConfig{
			Collision:     -1,
			Score:         1,
			Winner:        10,
			ScoreOnGrowth: false,
		},
		Render: RenderConfig{
			ScreenWidth: 80,
			TickRate:    10,
		},
		Rollout: RolloutConfig{
			Episodes: 100,
			Workers:  4,
			MaxSteps: 10000,
			Policy:   "greedy",
		},
	}
}
