// Package config provides YAML-based environment configuration loading and
// board presets for the snake environment.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a loaded configuration cannot be used.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// SnakeConfig contains all configuration for the snake environment.
type SnakeConfig struct {
	Grid    GridConfig    `yaml:"grid"`
	Rewards RewardsConfig `yaml:"rewards"`
	Render  RenderConfig  `yaml:"render"`
	Rollout RolloutConfig `yaml:"rollout"`
}

// GridConfig defines the board.
type GridConfig struct {
	Size int `yaml:"size"` // side length N, at least 2
}

// RewardsConfig defines the reward table.
type RewardsConfig struct {
	Collision     int  `yaml:"collision"`
	Score         int  `yaml:"score"`
	Winner        int  `yaml:"winner"`
	ScoreOnGrowth bool `yaml:"score_on_growth"`
}

// RenderConfig defines interactive play parameters.
type RenderConfig struct {
	ScreenWidth int `yaml:"screen_width"`
	TickRate    int `yaml:"tick_rate"` // steps per second
}

// RolloutConfig defines headless batch runs.
type RolloutConfig struct {
	Episodes int    `yaml:"episodes"`
	Workers  int    `yaml:"workers"`
	MaxSteps int    `yaml:"max_steps"` // 0 = until termination
	Policy   string `yaml:"policy"`
}

// Validate checks the values the environment depends on.
func (c SnakeConfig) Validate() error {
	switch {
	case c.Grid.Size < 2:
		return fmt.Errorf("%w: grid.size must be at least 2, got %d", ErrInvalidConfig, c.Grid.Size)
	case c.Render.TickRate <= 0:
		return fmt.Errorf("%w: render.tick_rate must be positive, got %d", ErrInvalidConfig, c.Render.TickRate)
	case c.Rollout.Workers < 1:
		return fmt.Errorf("%w: rollout.workers must be at least 1, got %d", ErrInvalidConfig, c.Rollout.Workers)
	case c.Rollout.Episodes < 0:
		return fmt.Errorf("%w: rollout.episodes must not be negative, got %d", ErrInvalidConfig, c.Rollout.Episodes)
	case c.Rollout.MaxSteps < 0:
		return fmt.Errorf("%w: rollout.max_steps must not be negative, got %d", ErrInvalidConfig, c.Rollout.MaxSteps)
	}
	return nil
}

// BoardPreset represents a named board size.
type BoardPreset string

const (
	BoardTiny      BoardPreset = "tiny"
	BoardSmall     BoardPreset = "small"
	BoardReference BoardPreset = "reference"
)

// SizeForPreset returns the grid size for a board preset, 0 if unknown.
func SizeForPreset(preset BoardPreset) int {
	switch preset {
	case BoardTiny:
		return 2
	case BoardSmall:
		return 8
	case BoardReference:
		return 32
	default:
		return 0
	}
}

// ApplyBoardPreset overrides the grid size with a preset.
func ApplyBoardPreset(cfg *SnakeConfig, preset BoardPreset) error {
	size := SizeForPreset(preset)
	if size == 0 {
		return fmt.Errorf("%w: unknown board preset %q", ErrInvalidConfig, preset)
	}
	cfg.Grid.Size = size
	return nil
}
