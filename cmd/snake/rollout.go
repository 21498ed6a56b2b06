package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-env/internal/agent"
	"github.com/vovakirdan/snake-env/internal/registry"
	"github.com/vovakirdan/snake-env/internal/rollout"
	"github.com/vovakirdan/snake-env/internal/storage"
)

var (
	flagEpisodes int
	flagWorkers  int
	flagPolicy   string
	flagMaxSteps int
	flagSave     bool
)

var rolloutCmd = &cobra.Command{
	Use:   "rollout [env]",
	Short: "Run headless episodes with a controller policy",
	Long: `Run a batch of episodes without a terminal. Episode i is seeded with
--seed + i, so a batch is reproducible for any --workers value.

Unset flags fall back to the rollout section of the configuration.

Policies:
  ` + strings.Join(agent.Names(), ", ") + `

Examples:
  snake rollout
  snake rollout snake-small --policy random --episodes 500
  snake rollout snake-tiny --seed 42 --workers 8 --save`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRollout,
}

func init() {
	rolloutCmd.Flags().IntVar(&flagEpisodes, "episodes", 0, "Number of episodes")
	rolloutCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Parallel workers")
	rolloutCmd.Flags().StringVar(&flagPolicy, "policy", "", "Controller policy: "+strings.Join(agent.Names(), ", "))
	rolloutCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 0, "Step limit per episode (0 = until termination)")
	rolloutCmd.Flags().BoolVar(&flagSave, "save", false, "Record episodes in the database")
}

func runRollout(cmd *cobra.Command, args []string) {
	logger, cfg := setup()

	envID := defaultEnvID
	if len(args) == 1 {
		envID = args[0]
	}
	info, ok := registry.Lookup(envID)
	if !ok {
		fatalf("unknown environment %q (run 'snake list')", envID)
	}

	flags := cmd.Flags()
	if flags.Changed("episodes") {
		cfg.Rollout.Episodes = flagEpisodes
	}
	if flags.Changed("workers") {
		cfg.Rollout.Workers = flagWorkers
	}
	if flags.Changed("policy") {
		cfg.Rollout.Policy = flagPolicy
	}
	if flags.Changed("max-steps") {
		cfg.Rollout.MaxSteps = flagMaxSteps
	}
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	gridSize := info.GridSize
	if size := sizeFor(envID, cfg); size > 0 {
		gridSize = size
	}

	rc := rollout.Config{
		EnvID:    envID,
		Size:     sizeFor(envID, cfg),
		Episodes: cfg.Rollout.Episodes,
		Workers:  cfg.Rollout.Workers,
		MaxSteps: cfg.Rollout.MaxSteps,
		Policy:   cfg.Rollout.Policy,
		Seed:     resolveSeed(),
		Rewards:  rewardsFromConfig(cfg),
		Logger:   logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("rollout started",
		"env", envID,
		"episodes", rc.Episodes,
		"workers", rc.Workers,
		"policy", rc.Policy,
		"seed", rc.Seed,
	)

	start := time.Now()
	results, err := rollout.Run(ctx, rc)
	if err != nil {
		fatalf("%v", err)
	}
	elapsed := time.Since(start)

	if flagSave {
		if err := saveResults(envID, gridSize, rc.Policy, results); err != nil {
			fatalf("%v", err)
		}
	}

	printSummary(envID, gridSize, rc, rollout.Summarize(results), elapsed)
}

// saveResults records a batch under the policy name.
func saveResults(envID string, gridSize int, policy string, results []rollout.Result) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	eps := make([]storage.Episode, len(results))
	for i, r := range results {
		eps[i] = storage.Episode{
			EnvID:       envID,
			GridSize:    gridSize,
			Reward:      r.Reward,
			Length:      r.Steps,
			SnakeLength: r.SnakeLength,
			Cause:       r.Cause,
			Source:      policy,
			Seed:        r.Seed,
		}
	}
	return store.SaveEpisodes(eps)
}

func printSummary(envID string, gridSize int, rc rollout.Config, s rollout.Summary, elapsed time.Duration) {
	fmt.Printf("Rollout - %s (%dx%d), policy %s, seed %d\n", envID, gridSize, gridSize, rc.Policy, rc.Seed)
	fmt.Println()

	if s.Episodes == 0 {
		fmt.Println("No episodes run.")
		return
	}

	fmt.Printf("  %-16s %d\n", "Episodes", s.Episodes)
	fmt.Printf("  %-16s %d\n", "Wins", s.Wins)
	fmt.Printf("  %-16s %d\n", "Step limit hit", s.Truncated)
	fmt.Printf("  %-16s %d\n", "Best reward", s.BestReward)
	fmt.Printf("  %-16s %.2f\n", "Mean reward", s.MeanReward)
	fmt.Printf("  %-16s %.1f\n", "Mean steps", s.MeanSteps)
	fmt.Printf("  %-16s %d\n", "Longest snake", s.MaxSnakeLength)
	fmt.Printf("  %-16s %s\n", "Elapsed", elapsed.Round(time.Millisecond))
}
