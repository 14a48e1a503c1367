package reconcile

import "context"

// Adapter defines how to load and compare one kind of entity. The desired
// side usually comes from memory, the present side from a remote target.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g. "atlas_states").
	Name() string

	// LoadWant returns the desired entities indexed by key.
	LoadWant(ctx context.Context) (map[string]Item, error)

	// LoadHave returns the entities the target holds, indexed by key.
	// Implementations should list in bulk and avoid per-item lookups.
	LoadHave(ctx context.Context) (map[string]Item, error)

	// ResolveName returns a display name. Either item may be nil.
	ResolveName(want, have Item) string

	// CompareFields lists differing fields as "field: want=X have=Y".
	// Both items are non-nil when this is called.
	CompareFields(want, have Item) []string
}

// Mutator is implemented by adapters whose target can be written.
type Mutator interface {
	// Put writes the desired items (creates and updates) to the target.
	Put(ctx context.Context, items map[string]Item) error

	// Delete removes keys from the target.
	Delete(ctx context.Context, keys []string) error
}
