// snake is a command-line host for the N×N Snake environment.
//
// Usage:
//
//	snake list                 - List registered environments
//	snake play [env]           - Play from the keyboard (menu if no env)
//	snake rollout [env]        - Run headless episodes with a policy
//	snake episodes [env]       - Show recorded episodes
//	snake serve                - Start SSH server for remote play
//	snake config               - Print the default configuration
//
// Global flags:
//
//	--seed <value>      - Set RNG seed for reproducible episodes
//	--db <path>         - Set database path (default: ~/.snake-env/episodes.db)
//	--config <path>     - Use a custom YAML configuration
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-env/internal/config"
	// Import env to register the presets
	_ "github.com/vovakirdan/snake-env/internal/env"
	"github.com/vovakirdan/snake-env/internal/games/snake"
)

// defaultEnvID is the environment used when no ID is given.
const defaultEnvID = "snake"

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake N×N - a deterministic Snake environment",
	Long: `Snake N×N is a grid Snake simulation with a gym-style step interface.
Episodes can be played from the keyboard, over SSH, or headless with a
controller policy.

Available commands:
  list      - Show all registered environments
  play      - Play an environment from the keyboard
  rollout   - Run headless episodes with a policy
  episodes  - View recorded episodes
  serve     - Start SSH server for remote play
  config    - Print the default configuration

Examples:
  snake list
  snake play snake-small
  snake rollout --policy greedy --episodes 1000 --workers 8
  snake episodes snake-small
  snake serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.snake-env/episodes.db", "Path to episodes database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(rolloutCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the process logger from --log-level.
func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "snake",
		Level:           level,
	})
	return logger, nil
}

// loadConfig loads the configuration honoring --config.
func loadConfig() (config.SnakeConfig, error) {
	return config.LoadSnake(flagConfig)
}

// rewardsFromConfig converts the configured reward table.
func rewardsFromConfig(cfg config.SnakeConfig) snake.Rewards {
	return snake.Rewards{
		Collision:     cfg.Rewards.Collision,
		Score:         cfg.Rewards.Score,
		Winner:        cfg.Rewards.Winner,
		ScoreOnGrowth: cfg.Rewards.ScoreOnGrowth,
	}
}

// sizeFor returns the board size override for an environment.
// Only the reference environment follows grid.size; the other presets are fixed.
func sizeFor(envID string, cfg config.SnakeConfig) int {
	if envID == defaultEnvID {
		return cfg.Grid.Size
	}
	return 0
}

// resolveSeed returns --seed, or a time-based seed when it is 0.
func resolveSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// fatalf prints an error and exits.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// setup loads the logger and configuration shared by every command.
func setup() (*log.Logger, config.SnakeConfig) {
	logger, err := newLogger()
	if err != nil {
		fatalf("%v", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	logger.Debug("config loaded", "grid", cfg.Grid.Size, "tick_rate", cfg.Render.TickRate)
	return logger, cfg
}
