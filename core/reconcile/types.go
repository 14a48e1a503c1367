package reconcile

import (
	"fmt"
	"time"
)

// Item is one entity as a source sees it. Adapters define the concrete type.
type Item any

// Result is the reconciliation output for a single key.
type Result struct {
	// Key identifies the entity in both sources.
	Key string `json:"key"`

	// Name is the display name of the entity, when the adapter has one.
	Name string `json:"name,omitempty"`

	// Wanted reports whether the entity is in the desired state.
	Wanted bool `json:"wanted"`

	// Present reports whether the entity exists in the target.
	Present bool `json:"present"`

	// Mismatch describes field differences, e.g. "owner: want=FRA have=GER".
	Mismatch []string `json:"mismatch"`
}

// InSync reports whether the target already matches the desired entity.
func (r Result) InSync() bool {
	return r.Wanted && r.Present && len(r.Mismatch) == 0
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate writes an entity the target lacks.
	ActionCreate ActionType = "create"
	// ActionUpdate rewrites an entity whose fields differ.
	ActionUpdate ActionType = "update"
	// ActionDelete removes an entity that is no longer wanted.
	ActionDelete ActionType = "delete"
)

// Action represents a planned mutation.
type Action struct {
	Type   ActionType `json:"type"`
	Key    string     `json:"key"`
	Reason string     `json:"reason"`

	// Item is the desired entity for create and update actions.
	Item Item `json:"-"`
}

// Plan contains reconciliation results and planned actions.
type Plan struct {
	Results []Result `json:"results"`
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// Summary provides aggregate counts for a plan.
type Summary struct {
	Total      int `json:"total"`
	InSync     int `json:"in_sync"`
	Missing    int `json:"missing"`
	Stale      int `json:"stale"`
	Mismatches int `json:"mismatches"`

	// PurgeActions counts planned deletions.
	PurgeActions int `json:"purge_actions"`
	// SyncActions counts planned creations and updates.
	SyncActions int `json:"sync_actions"`
}

// Options controls which actions a plan contains and whether they run.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// DoPurge plans deletion of entities that are no longer wanted.
	DoPurge bool

	// DoSync plans creation of missing and update of mismatched entities.
	DoSync bool
}

// Spec bundles an adapter with its cache settings.
type Spec struct {
	Adapter Adapter

	// Scope distinguishes specs sharing an adapter name, e.g. the
	// snapshot sequence and export prefix.
	Scope string

	// Cache stores built indices. Nil disables caching.
	Cache *Cache

	// CacheTTL is the time-to-live for cached indices. Zero disables caching.
	CacheTTL time.Duration
}

// CacheKey returns the key indices of this spec are cached under.
func (s *Spec) CacheKey() string {
	return fmt.Sprintf("%s|%s", s.Adapter.Name(), s.Scope)
}
