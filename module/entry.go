// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/movevm/types"
)

// Entry is an immutable storage entry for a module: the raw state value plus
// either its unverified compiled form or, once verification has run, the
// verified module handle. An entry transitions unverified -> verified exactly
// once, by constructing a new entry via AsVerified.
type Entry struct {
	bytes    []byte
	hash     ids.ID
	compiled *CompiledModule
	verified *Module
}

// NewEntry builds an unverified entry from a raw state value, parsing it
// through the runtime's deserialization cache.
func NewEntry(r *Runtime, stateValue []byte) (*Entry, error) {
	compiled, hash, err := r.parseModule(stateValue)
	if err != nil {
		return nil, err
	}
	return &Entry{
		bytes:    stateValue,
		hash:     hash,
		compiled: compiled,
	}, nil
}

// NewVerifiedEntry wraps a state value whose verified module is already
// known, e.g. when warming the framework preload cache.
func NewVerifiedEntry(stateValue []byte, m *Module) *Entry {
	return &Entry{
		bytes:    stateValue,
		hash:     m.Hash(),
		compiled: m.Compiled(),
		verified: m,
	}
}

func (e *Entry) Bytes() []byte {
	return e.bytes
}

func (e *Entry) Hash() ids.ID {
	return e.hash
}

func (e *Entry) Size() uint64 {
	return uint64(len(e.bytes))
}

func (e *Entry) Compiled() *CompiledModule {
	return e.compiled
}

func (e *Entry) Verified() bool {
	return e.verified != nil
}

// Module returns the verified module handle, or false if the entry has not
// been verified yet.
func (e *Entry) Module() (*Module, bool) {
	return e.verified, e.verified != nil
}

// AsVerified returns a new verified entry for the same bytes. The receiver
// is left untouched.
func (e *Entry) AsVerified(m *Module) *Entry {
	return &Entry{
		bytes:    e.bytes,
		hash:     e.hash,
		compiled: e.compiled,
		verified: m,
	}
}

// LocallyVerifiedModule has passed the dependency-independent checks and is
// waiting for its dependencies to be verified.
type LocallyVerifiedModule struct {
	compiled *CompiledModule
	size     uint64
	hash     ids.ID
}

// ImmediateDependencies returns the declared dependencies in declaration
// order.
func (m *LocallyVerifiedModule) ImmediateDependencies() []types.ModuleID {
	return m.compiled.Dependencies
}

func (m *LocallyVerifiedModule) ID() types.ModuleID {
	return m.compiled.ID()
}

// Module is a fully verified module: it and all its transitive dependencies
// have passed both local and link-time checks. Immutable, shared by pointer.
type Module struct {
	compiled *CompiledModule
	size     uint64
	hash     ids.ID
	deps     []*Module
}

func (m *Module) ID() types.ModuleID {
	return m.compiled.ID()
}

func (m *Module) Compiled() *CompiledModule {
	return m.compiled
}

func (m *Module) Hash() ids.ID {
	return m.hash
}

func (m *Module) Size() uint64 {
	return m.size
}

// Dependencies returns the verified handles of the immediate dependencies,
// in declaration order.
func (m *Module) Dependencies() []*Module {
	return m.deps
}
