package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snake-env/internal/config"
	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/platform/tui"
	"github.com/vovakirdan/snake-env/internal/registry"
	"github.com/vovakirdan/snake-env/internal/storage"
)

var (
	flagFPS   int
	flagBoard string
)

var playCmd = &cobra.Command{
	Use:   "play [env]",
	Short: "Play an environment from the keyboard",
	Long: `Play an environment in the terminal. Without an environment ID an
interactive picker is shown.

Each tick reads the held direction key and advances one step. A finished
episode is recorded, held on screen for a second, then a new one starts.

Controls:
  Arrows/WASD/hjkl  - Steer
  P/Space           - Pause
  R                 - Reset episode
  Ctrl+S            - Save screenshot
  B/Esc             - Back
  Q/Ctrl+C          - Quit

Board presets (apply to the 'snake' environment):
  tiny       - 2x2
  small      - 8x8
  reference  - 32x32

Examples:
  snake play
  snake play snake-small
  snake play snake --board small
  snake play snake-small --fps 5`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagFPS, "fps", 0, "Steps per second (0 = render.tick_rate from config)")
	playCmd.Flags().StringVar(&flagBoard, "board", "", "Board preset: tiny, small, reference")
}

func runPlay(cmd *cobra.Command, args []string) {
	logger, cfg := setup()

	if flagBoard != "" {
		if err := config.ApplyBoardPreset(&cfg, config.BoardPreset(flagBoard)); err != nil {
			fatalf("%v", err)
		}
	}

	rt := runtimeConfig(cfg)

	// Episodes are best-effort: play continues without a database.
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open episodes database", "path", flagDBPath, "err", err)
		store = nil
	}

	if len(args) == 1 {
		err = playEnv(args[0], cfg, rt, store, logger)
	} else {
		err = playMenu(cfg, rt, store, logger)
	}

	if store != nil {
		store.Close()
	}
	if err != nil {
		fatalf("%v", err)
	}
}

// runtimeConfig sizes the screen from the terminal, falling back to the config width.
func runtimeConfig(cfg config.SnakeConfig) core.RuntimeConfig {
	rt := core.DefaultConfig()
	rt.ScreenW = cfg.Render.ScreenWidth
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rt.ScreenW = w
		rt.ScreenH = h
	}
	rt.TickRate = cfg.Render.TickRate
	if flagFPS > 0 {
		rt.TickRate = flagFPS
	}
	rt.Seed = resolveSeed()
	return rt
}

// playEnv runs one environment until the player quits or goes back.
func playEnv(envID string, cfg config.SnakeConfig, rt core.RuntimeConfig, store *storage.Store, logger *log.Logger) error {
	if !registry.Exists(envID) {
		return fmt.Errorf("unknown environment %q (run 'snake list')", envID)
	}

	created, err := registry.Create(envID, registry.Options{
		Size:    sizeFor(envID, cfg),
		Rewards: rewardsFromConfig(cfg),
		Seed:    rt.Seed,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer created.Close()

	e, ok := created.(tui.PlayEnv)
	if !ok {
		return fmt.Errorf("environment %q cannot be played", envID)
	}

	logger.Info("playing", "env", envID, "size", e.GridSize(), "seed", rt.Seed)
	return tui.Run(e, rt, tui.PlayOptions{
		Store:  store,
		Logger: logger,
		Source: storage.SourceHuman,
		Seed:   rt.Seed,
	})
}

// playMenu loops between the picker, the episode browser and play.
func playMenu(cfg config.SnakeConfig, rt core.RuntimeConfig, store *storage.Store, logger *log.Logger) error {
	for {
		result, err := tui.RunMenu(store, rt)
		if err != nil {
			return err
		}
		rt = result.Config

		if result.Quit {
			return nil
		}

		if result.WantsEpisodes {
			goBack, err := tui.RunEpisodes(store, defaultEnvID, rt.ScreenW, rt.ScreenH)
			if err != nil {
				return err
			}
			if !goBack {
				return nil
			}
			continue
		}

		if result.EnvID == "" {
			return nil
		}

		if err := playEnv(result.EnvID, cfg, rt, store, logger); err != nil {
			logger.Error("play failed", "env", result.EnvID, "err", err)
		}

		// New seed for the next pick unless --seed pinned it
		rt.Seed = resolveSeed()
	}
}
