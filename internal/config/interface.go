package config

import "context"

// Loader is the interface for a format-specific catalog loader.
type Loader interface {
	// Load reads catalog documents from the given paths and translates them
	// into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Saver is implemented by loaders that can write a model back to the
// location it was read from.
type Saver interface {
	Save(ctx context.Context, m *Model) error
}
