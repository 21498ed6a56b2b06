package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-env/internal/registry"
	"github.com/vovakirdan/snake-env/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered environments",
	Long:  `Shows every registered environment with its board size and best recorded reward.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	envs := registry.List()

	if len(envs) == 0 {
		fmt.Println("No environments registered.")
		return
	}

	// Best rewards are optional; the list works without a database.
	store, err := storage.Open(flagDBPath)
	if err == nil {
		defer store.Close()
	}

	fmt.Println("Available environments:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, e := range envs {
		maxIDLen = max(maxIDLen, len(e.ID))
	}

	fmt.Printf("  %-*s  %-14s  %-5s  %s\n", maxIDLen, "ID", "Title", "Size", "Best")
	fmt.Printf("  %-*s  %-14s  %-5s  %s\n", maxIDLen, "--", "-----", "----", "----")

	for _, e := range envs {
		best := "-"
		if err == nil {
			if reward, ok, err := store.BestReward(e.ID); err == nil && ok {
				best = strconv.Itoa(reward)
			}
		}
		fmt.Printf("  %-*s  %-14s  %-5d  %s\n", maxIDLen, e.ID, e.Title, e.GridSize, best)
	}

	fmt.Println()
	fmt.Println("Run 'snake play <id>' to play an environment.")
}
