package env

import (
	"fmt"

	"github.com/vovakirdan/snake-env/internal/registry"
)

// Preset is a named board configuration.
type Preset struct {
	ID    string
	Title string
	Size  int
}

// Presets lists the registered environments.
var Presets = []Preset{
	{ID: "snake", Title: "Snake 32x32", Size: 32},
	{ID: "snake-small", Title: "Snake 8x8", Size: 8},
	{ID: "snake-tiny", Title: "Snake 2x2", Size: 2},
}

func init() {
	for _, p := range Presets {
		registry.Register(p.ID, factory(p))
	}
}

func factory(p Preset) registry.Factory {
	return func(opts registry.Options) (registry.Env, error) {
		size, title := p.Size, p.Title
		if opts.Size > 0 && opts.Size != p.Size {
			size, title = opts.Size, fmt.Sprintf("Snake %dx%d", opts.Size, opts.Size)
		}
		return New(Options{
			ID:      p.ID,
			Title:   title,
			Size:    size,
			Rewards: opts.Rewards,
			Seed:    opts.Seed,
			Logger:  opts.Logger,
		})
	}
}
