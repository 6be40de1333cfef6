package config

import "context"

// Loader is the interface for a format-specific scene loader.
type Loader interface {
	// Load reads every scene file reachable from the given paths and merges
	// them into a single format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
