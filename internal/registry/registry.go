// Package registry provides a global registry for environment factories.
// Environment packages register their presets in init() functions, allowing
// the platform to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-env/internal/core"
	"github.com/vovakirdan/snake-env/internal/games/snake"
)

// Env is the controller-facing contract of a snake environment.
// Environments contain pure logic with no terminal dependencies; the platform
// handles input mapping, timing and display.
type Env interface {
	// ID returns a unique identifier (e.g., "snake", "snake-small").
	// Used for CLI commands and episode storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// GridSize returns the board side length N.
	GridSize() int

	// Reset starts a new episode, reseeding food placement when seed is set.
	Reset(seed *int64) (core.Observation, core.Info)

	// Step applies one action code in [0,4]. Invalid codes return an error
	// and leave the episode untouched.
	Step(action int) (obs core.Observation, reward int, terminated, truncated bool, info core.Info, err error)

	// ObservationSpace and ActionSpace declare the data contract.
	ObservationSpace() core.BoxSpace
	ActionSpace() core.DiscreteSpace

	// Render draws the current board into the provided screen buffer.
	Render(dst *core.Screen)

	// Close releases resources held by the environment.
	Close() error
}

// Options configures a new environment instance.
type Options struct {
	Size    int // 0 keeps the registered board size
	Rewards snake.Rewards
	Seed    int64
	Logger  *log.Logger
}

// DefaultOptions returns options with the reference rewards.
func DefaultOptions() Options {
	return Options{Rewards: snake.DefaultRewards()}
}

// EnvInfo contains metadata about a registered environment.
type EnvInfo struct {
	ID       string
	Title    string
	GridSize int
}

// Factory creates a new instance of an environment.
type Factory func(opts Options) (Env, error)

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]EnvInfo)
	mu        sync.RWMutex
)

// Register adds an environment factory to the registry.
// Typically called from an environment package's init() function.
// Panics if the ID is already registered or the factory fails with defaults.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: environment %q already registered", id))
	}

	// Get metadata by creating a temporary instance
	e, err := f(DefaultOptions())
	if err != nil {
		panic(fmt.Sprintf("registry: environment %q: %v", id, err))
	}
	defer e.Close()

	factories[id] = f
	infos[id] = EnvInfo{
		ID:       id,
		Title:    e.Title(),
		GridSize: e.GridSize(),
	}
}

// List returns information about all registered environments, sorted by ID.
func List() []EnvInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]EnvInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new environment by its ID.
// Returns an error if the ID is not registered.
func Create(id string, opts Options) (Env, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown environment %q", id)
	}
	return f(opts)
}

// Lookup returns the metadata of a registered environment.
func Lookup(id string) (EnvInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[id]
	return info, ok
}

// Exists checks if an environment with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
