package reconcile

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Indices holds both sides of a reconciliation.
type Indices struct {
	Want map[string]Item
	Have map[string]Item

	// Built is the timestamp when these indices were loaded.
	Built time.Time

	// TTL is the time-to-live for these indices.
	TTL time.Duration
}

// IsExpired returns true if the indices have outlived their TTL.
func (c *Indices) IsExpired() bool {
	if c.TTL == 0 {
		return true
	}
	return time.Since(c.Built) > c.TTL
}

// Cache holds built indices keyed by Spec.CacheKey.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Indices
	sf      singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Indices)}
}

// BuildIndices loads both sides concurrently. It does not store them; use
// GetOrBuild for that.
func BuildIndices(ctx context.Context, spec *Spec) (*Indices, error) {
	var want, have map[string]Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		want, err = spec.Adapter.LoadWant(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		have, err = spec.Adapter.LoadHave(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Indices{Want: want, Have: have, Built: time.Now(), TTL: spec.CacheTTL}, nil
}

// GetOrBuild returns the cached indices of spec, building them when they
// are missing or expired. Concurrent callers share one build.
func GetOrBuild(ctx context.Context, spec *Spec) (*Indices, error) {
	c := spec.Cache
	if c == nil || spec.CacheTTL == 0 {
		return BuildIndices(ctx, spec)
	}
	key := spec.CacheKey()

	// Fast path
	c.mu.RLock()
	idx, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !idx.IsExpired() {
		return idx, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		idx, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && !idx.IsExpired() {
			return idx, nil
		}

		built, err := BuildIndices(ctx, spec)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Indices), nil
}

// Invalidate drops every cached index of the adapter, whatever its scope.
// Call it after writing to the target.
func (c *Cache) Invalidate(adapter string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, adapter+"|") {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
