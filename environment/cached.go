// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import (
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"go.uber.org/zap"

	"github.com/luxfi/movevm/types"
)

// Cache holds the most recently built environment and its fingerprint, so
// block boundaries reuse the environment (and its native table) while the
// chain configuration is unchanged. Construct one per process and thread it
// into the block executor; tests construct their own.
type Cache struct {
	log log.Logger

	mu          sync.Mutex
	fingerprint ids.ID
	env         *Environment
}

func NewCache(log log.Logger) *Cache {
	return &Cache{
		log: log,
	}
}

// FetchWithDelayedFieldOptimization returns the cached environment if its
// configuration matches what the snapshot would produce, otherwise builds,
// caches, and returns a new one. Call only at block boundaries.
func (c *Cache) FetchWithDelayedFieldOptimization(view types.StateView) *Environment {
	env := NewEnvironmentWithDelayedFieldOptimization(view)
	fp := env.Fingerprint()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.env != nil && c.fingerprint == fp {
		return c.env
	}

	c.log.Info("environment configuration changed",
		zap.Stringer("fingerprint", fp),
		zap.Stringer("chainID", env.ChainID()),
	)
	c.fingerprint = fp
	c.env = env
	return env
}

// Reset drops the cached environment. Test teardown only.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.env = nil
	c.fingerprint = ids.Empty
}
