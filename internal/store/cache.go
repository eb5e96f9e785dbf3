package store

import (
	"context"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/HendryAvila/spinforge/internal/assembly"
	"github.com/HendryAvila/spinforge/internal/engine"
	"github.com/HendryAvila/spinforge/internal/grammar"
)

// Backend is what CachedSource reads through to.
type Backend interface {
	engine.Source
	engine.Library
}

// CachedSource keeps recently fetched blocks and variants in memory.
// Blocks are fetched once per template field set, so a long article job
// hits the database only for the first article. Misses, including
// ErrNotFound, are never cached. Entries expire after the TTL; writers in
// the same process call Purge.
type CachedSource struct {
	Backend
	blocks   *expirable.LRU[string, assembly.Block]
	variants *expirable.LRU[string, grammar.Variant]
}

var (
	_ engine.Source  = (*CachedSource)(nil)
	_ engine.Library = (*CachedSource)(nil)
)

// NewCachedSource wraps b with LRU caches of size entries each. A size
// of zero or less means DefaultCacheSize; a ttl of zero or less never
// expires entries.
func NewCachedSource(b Backend, size int, ttl time.Duration) *CachedSource {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedSource{
		Backend:  b,
		blocks:   expirable.NewLRU[string, assembly.Block](size, nil, ttl),
		variants: expirable.NewLRU[string, grammar.Variant](size, nil, ttl),
	}
}

// FetchBlock returns a block from the cache or the backend.
func (c *CachedSource) FetchBlock(ctx context.Context, id string) (assembly.Block, error) {
	if b, ok := c.blocks.Get(id); ok {
		return b, nil
	}
	b, err := c.Backend.FetchBlock(ctx, id)
	if err != nil {
		return assembly.Block{}, err
	}
	c.blocks.Add(id, b)
	return b, nil
}

// FetchVariant returns a copy of a cached variant, or reads it through.
func (c *CachedSource) FetchVariant(ctx context.Context, avatarID, key string) (grammar.Variant, error) {
	ck := avatarID + "\x00" + key
	if v, ok := c.variants.Get(ck); ok {
		return maps.Clone(v), nil
	}
	v, err := c.Backend.FetchVariant(ctx, avatarID, key)
	if err != nil {
		return nil, err
	}
	c.variants.Add(ck, v)
	return maps.Clone(v), nil
}

// Purge drops every cached entry.
func (c *CachedSource) Purge() {
	c.blocks.Purge()
	c.variants.Purge()
}

// Len reports the number of cached blocks and variants.
func (c *CachedSource) Len() (blocks, variants int) {
	return c.blocks.Len(), c.variants.Len()
}
