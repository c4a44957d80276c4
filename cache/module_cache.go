// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cache holds the verified-module caches: the lock-protected
// cross-block cache with its invalidation protocol, and the lock-free
// framework preload snapshot.
package cache

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/movevm/module"
	"github.com/luxfi/movevm/types"
)

var (
	// ErrLinker reports a declared dependency whose bytes are absent from
	// the state snapshot.
	ErrLinker = errors.New("linker error: module not found")

	// ErrCyclicDependency reports a dependency cycle, naming the module the
	// traversal started from.
	ErrCyclicDependency = errors.New("cyclic module dependency")
)

// moduleCache maps storage keys to module entries and carries the
// invalidation flag. It is owned exclusively by CrossBlockCache; every
// method requires the owner's lock to be held.
type moduleCache struct {
	invalidated bool
	modules     map[ids.ID]*module.Entry
}

func newModuleCache() *moduleCache {
	return &moduleCache{
		modules: make(map[ids.ID]*module.Entry),
	}
}

func (c *moduleCache) flush() {
	c.invalidated = false
	c.modules = make(map[ids.ID]*module.Entry)
}

// flushIfInvalidated clears the cache iff it was marked invalid, and reports
// whether it did.
func (c *moduleCache) flushIfInvalidated() bool {
	if !c.invalidated {
		return false
	}
	c.flush()
	return true
}

// frame is one module on the traversal stack: its locally verified form and
// the progress through its declared dependencies.
type frame struct {
	key      ids.ID
	entry    *module.Entry
	local    *module.LocallyVerifiedModule
	deps     []types.ModuleID
	next     int
	verified []*module.Module
}

// traverse verifies entry and all its transitive dependencies, inserting the
// verified entries into the cache. The walk is an explicit worklist over the
// declared dependency graph: visited tracks the keys in progress for this
// invocation only, so a membership hit is a cycle. Verified entries are
// staged locally and committed only when the whole walk succeeds; a failed
// walk leaves the cache untouched.
func (c *moduleCache) traverse(
	entry *module.Entry,
	address types.Address,
	name string,
	view types.StateView,
	visited set.Set[ids.ID],
	r *module.Runtime,
) (*module.Module, error) {
	rootID := types.NewModuleID(address, name)

	// A traversal that lost the race to a concurrent one finds the verified
	// root already committed and reuses it.
	if cached, ok := c.modules[rootID.Key()]; ok {
		if m, ok := cached.Module(); ok {
			return m, nil
		}
	}

	push := func(entry *module.Entry, id types.ModuleID) (*frame, error) {
		cm := entry.Compiled()
		if err := r.CheckModuleAddressAndName(cm, id.Address, id.Name); err != nil {
			return nil, err
		}
		local, err := r.BuildLocallyVerifiedModule(cm, entry.Size(), entry.Hash())
		if err != nil {
			return nil, err
		}
		deps := local.ImmediateDependencies()
		return &frame{
			key:      id.Key(),
			entry:    entry,
			local:    local,
			deps:     deps,
			verified: make([]*module.Module, 0, len(deps)),
		}, nil
	}

	root, err := push(entry, rootID)
	if err != nil {
		return nil, err
	}
	visited.Add(root.key)

	staged := make(map[ids.ID]*module.Entry)
	stack := []*frame{root}
	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if f.next < len(f.deps) {
			dep := f.deps[f.next]
			f.next++
			depKey := dep.Key()

			// Already verified, either in this walk or by a previous one.
			if stagedEntry, ok := staged[depKey]; ok {
				m, _ := stagedEntry.Module()
				f.verified = append(f.verified, m)
				continue
			}
			depEntry, cached := c.modules[depKey]
			if cached {
				if m, ok := depEntry.Module(); ok {
					f.verified = append(f.verified, m)
					continue
				}
			} else {
				stateValue, err := view.GetStateValue(depKey)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", types.ErrStorage, err)
				}
				if stateValue == nil {
					return nil, fmt.Errorf("%w: %s", ErrLinker, dep)
				}
				depEntry, err = module.NewEntry(r, stateValue)
				if err != nil {
					return nil, err
				}
			}

			if visited.Contains(depKey) {
				return nil, fmt.Errorf("%w: detected while verifying %s", ErrCyclicDependency, rootID)
			}
			visited.Add(depKey)

			depFrame, err := push(depEntry, dep)
			if err != nil {
				return nil, err
			}
			stack = append(stack, depFrame)
			continue
		}

		// All dependencies of this frame are verified; run the final
		// dependency-aware checks and stage the result.
		m, err := r.BuildVerifiedModule(f.local, f.verified)
		if err != nil {
			return nil, err
		}
		staged[f.key] = f.entry.AsVerified(m)

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			for key, verifiedEntry := range staged {
				c.modules[key] = verifiedEntry
			}
			return m, nil
		}
		parent := stack[len(stack)-1]
		parent.verified = append(parent.verified, m)
	}

	// The loop always returns from the root frame.
	panic("unreachable")
}
