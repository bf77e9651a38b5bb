// Package tagcache implements the two-level tag memoisation table
// a cache keyed on: dictionary → tag query → resolved tag (or a recorded
// miss). It wraps a bounded github.com/hashicorp/golang-lru/v2 cache so
// a long-running process doesn't re-resolve the same tag names on every
// request while still bounding memory use.
package tagcache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kanjidict/dictcore/pkg/dictcore/model"
	"github.com/kanjidict/dictcore/pkg/dictcore/store"
)

type key struct {
	dictionary string
	query      string
}

// entry holds a resolved tag, or nil to record a cache miss (a miss is
// still worth caching: a tag lookup miss is not an error and resolves to the
// default tag every time).
type entry struct {
	tag *model.Tag
}

// Cache is the process-scoped tag memoisation table. It is safe for
// concurrent use.
type Cache struct {
	lru *lru.Cache[key, entry]
}

// DefaultSize is the cache capacity used when callers don't override it.
// Tag vocabularies are small and fixed per dictionary (a few hundred
// part-of-speech/field/dialect names), so this comfortably covers many
// dictionaries' full tag sets at once.
const DefaultSize = 4096

// New creates a tag cache with the given capacity (DefaultSize if size
// is <= 0).
func New(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	c, _ := lru.New[key, entry](size) // only errors on size <= 0, already guarded
	return &Cache{lru: c}
}

// Purge drops every cached entry — the clear_database_caches() hook
// called when dictionary data changes underneath the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Get returns the cached tag for (dictionary, query) and whether it was
// present. A present entry with a nil tag means a cached miss.
func (c *Cache) Get(dictionary, query string) (*model.Tag, bool) {
	e, ok := c.lru.Get(key{dictionary, query})
	if !ok {
		return nil, false
	}
	return e.tag, true
}

// Set records the resolution of (dictionary, query), including misses
// (tag == nil).
func (c *Cache) Set(dictionary, query string, tag *model.Tag) {
	c.lru.Add(key{dictionary, query}, entry{tag: tag})
}

// Resolve looks up the tags for every (dictionary, query) pair not
// already cached via a single coalesced FindTagMetaBulk call, satisfying
// the shared-resource policy: "a cache miss triggers at most one
// database read per key per call — duplicates within a call are
// coalesced into one batch." Results are returned index-parallel with
// queries, using model.DefaultTag for any pair whose resolution yields
// no tag record.
func (c *Cache) Resolve(ctx context.Context, st store.Store, queries []store.TagQuery) ([]model.Tag, error) {
	out := make([]model.Tag, len(queries))
	var misses []store.TagQuery
	missIndex := make(map[key][]int) // dedup within this call

	for i, q := range queries {
		k := key{q.Dictionary, q.Query}
		if tag, ok := c.Get(q.Dictionary, q.Query); ok {
			out[i] = resolveOrDefault(tag, q.Query)
			continue
		}
		if _, seen := missIndex[k]; !seen {
			misses = append(misses, q)
		}
		missIndex[k] = append(missIndex[k], i)
	}

	if len(misses) == 0 {
		return out, nil
	}

	resolved, err := st.FindTagMetaBulk(ctx, misses)
	if err != nil {
		return nil, err
	}

	for i, q := range misses {
		tag := resolved[i]
		c.Set(q.Dictionary, q.Query, tag)
		for _, idx := range missIndex[key{q.Dictionary, q.Query}] {
			out[idx] = resolveOrDefault(tag, q.Query)
		}
	}

	return out, nil
}

func resolveOrDefault(tag *model.Tag, name string) model.Tag {
	if tag == nil {
		return model.DefaultTag(name)
	}
	return *tag
}
