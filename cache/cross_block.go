// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"go.uber.org/zap"

	"github.com/luxfi/movevm/module"
	"github.com/luxfi/movevm/types"
)

// CrossBlockCache is the verified-module cache that survives block
// boundaries. A single lock guards the underlying module cache: Get, Put,
// and the invalidation operations have bounded critical sections, while
// Traverse holds the lock for the whole walk so at most one thread verifies
// a given module before it becomes visible to all.
//
// Construct one per process and thread it into the block executor; tests
// construct their own.
type CrossBlockCache struct {
	log     log.Logger
	metrics *cacheMetrics

	mu    sync.Mutex
	cache *moduleCache
}

func NewCrossBlockCache(log log.Logger) *CrossBlockCache {
	return &CrossBlockCache{
		log:     log,
		metrics: newCacheMetrics(),
		cache:   newModuleCache(),
	}
}

// Get returns the cached entry for the key, if any.
func (c *CrossBlockCache) Get(key ids.ID) (*module.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.modules[key]
	if ok {
		c.metrics.hits.Inc()
	} else {
		c.metrics.misses.Inc()
	}
	return entry, ok
}

// Put inserts or overwrites the entry for the key.
func (c *CrossBlockCache) Put(key ids.ID, entry *module.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.modules[key] = entry
}

// Traverse verifies the module stored as entry under (address, name) along
// with all its transitive dependencies, caching every verified module. The
// visited set is fresh per call: cycle detection is per-traversal, and
// entries verified by earlier traversals are never re-walked.
func (c *CrossBlockCache) Traverse(
	entry *module.Entry,
	address types.Address,
	name string,
	view types.StateView,
	r *module.Runtime,
) (*module.Module, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.traversals.Inc()
	visited := set.NewSet[ids.ID](len(c.cache.modules) + 1)
	return c.cache.traverse(entry, address, name, view, visited, r)
}

// MarkInvalid flags the cache as stale. Cheap: entries are cleared at the
// next block boundary, not here. Call whenever committed state changes in a
// way that could affect module semantics, e.g. a module publish.
func (c *CrossBlockCache) MarkInvalid() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.invalidated = true
}

func (c *CrossBlockCache) IsInvalidated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.invalidated
}

// FlushIfInvalidated clears the cache iff it was marked invalid. Run once
// per block boundary, before that block's executions begin.
func (c *CrossBlockCache) FlushIfInvalidated() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache.flushIfInvalidated() {
		c.metrics.flushes.Inc()
		c.log.Info("flushed invalidated module cache")
	}
}

// Flush unconditionally clears the cache. Forced resets only.
func (c *CrossBlockCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.flush()
	c.metrics.flushes.Inc()
	c.log.Debug("flushed module cache", zap.String("reason", "forced"))
}

// Len returns the number of cached entries.
func (c *CrossBlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.cache.modules)
}
