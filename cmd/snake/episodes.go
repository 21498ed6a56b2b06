package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snake-env/internal/platform/tui"
	"github.com/vovakirdan/snake-env/internal/registry"
	"github.com/vovakirdan/snake-env/internal/storage"
)

var (
	flagInteractive bool
	flagLimit       int
	flagClear       bool
)

var episodesCmd = &cobra.Command{
	Use:   "episodes [env]",
	Short: "Show recorded episodes",
	Long: `Display the best recorded episodes of an environment, or the most
recent episodes across all environments when no ID is given.

Examples:
  snake episodes
  snake episodes snake-small
  snake episodes snake-small --limit 25
  snake episodes --interactive
  snake episodes snake-tiny --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEpisodes,
}

func init() {
	episodesCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Open the interactive episode browser")
	episodesCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of episodes to show")
	episodesCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded episodes of an environment")
}

func runEpisodes(cmd *cobra.Command, args []string) {
	envID := ""
	if len(args) == 1 {
		envID = args[0]
		if !registry.Exists(envID) {
			fatalf("unknown environment %q (run 'snake list')", envID)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatalf("opening episodes database: %v", err)
	}
	defer store.Close()

	switch {
	case flagClear:
		clearEpisodes(store, envID)
	case flagInteractive:
		browseEpisodes(store, envID)
	case envID == "":
		printRecent(store)
	default:
		printTop(store, envID)
	}
}

func browseEpisodes(store *storage.Store, envID string) {
	if envID == "" {
		envID = defaultEnvID
	}
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	if _, err := tui.RunEpisodes(store, envID, width, height); err != nil {
		fatalf("%v", err)
	}
}

func clearEpisodes(store *storage.Store, envID string) {
	if envID == "" {
		fatalf("--clear needs an environment ID")
	}

	fmt.Printf("Delete all recorded episodes of %s? [y/N] ", envID)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		fmt.Println("Aborted.")
		return
	}

	n, err := store.ClearEpisodes(envID)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Deleted %d episodes.\n", n)
}

func printTop(store *storage.Store, envID string) {
	info, _ := registry.Lookup(envID)

	eps, err := store.TopEpisodes(envID, flagLimit)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Best Episodes - %s\n", info.Title)
	fmt.Println()

	if len(eps) == 0 {
		fmt.Println("No episodes recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'snake play %s' or run 'snake rollout %s --save'.\n", envID, envID)
		return
	}

	fmt.Printf("  %-4s  %-6s  %-6s  %-6s  %-10s  %-8s  %s\n", "Rank", "Reward", "Steps", "Length", "Cause", "Source", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %-6s  %-10s  %-8s  %s\n", "----", "------", "-----", "------", "-----", "------", "----")
	for i, ep := range eps {
		fmt.Printf("  %-4d  %-6d  %-6d  %-6d  %-10s  %-8s  %s\n",
			i+1, ep.Reward, ep.Length, ep.SnakeLength, ep.Cause, ep.Source, ep.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetEnvStats(envID)
	if err == nil && stats.Episodes > 0 {
		fmt.Println()
		fmt.Printf("%d episodes, %d wins, avg reward %.2f, avg steps %.1f\n",
			stats.Episodes, stats.Wins, stats.AvgReward, stats.AvgLength)
	}
}

func printRecent(store *storage.Store) {
	eps, err := store.RecentEpisodes(flagLimit)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Println("Recent Episodes")
	fmt.Println()

	if len(eps) == 0 {
		fmt.Println("No episodes recorded yet.")
		return
	}

	fmt.Printf("  %-12s  %-6s  %-6s  %-10s  %-8s  %s\n", "Env", "Reward", "Steps", "Cause", "Source", "Date")
	fmt.Printf("  %-12s  %-6s  %-6s  %-10s  %-8s  %s\n", "---", "------", "-----", "-----", "------", "----")
	for _, ep := range eps {
		fmt.Printf("  %-12s  %-6d  %-6d  %-10s  %-8s  %s\n",
			ep.EnvID, ep.Reward, ep.Length, ep.Cause, ep.Source, ep.CreatedAt.Format("2006-01-02 15:04"))
	}
}
