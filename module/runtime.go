// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package module

import (
	"errors"
	"fmt"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/cache/metercacher"
	"github.com/luxfi/constants"
	"github.com/luxfi/ids"
	"github.com/luxfi/metric"

	"github.com/luxfi/movevm/types"
)

// parsedCacheSize bounds the deserialization cache. Entries are keyed by
// content hash, so republishing identical bytes is free to re-parse.
const parsedCacheSize = 512

var (
	ErrModuleAddressNameMismatch = errors.New("module address or name mismatch")
	ErrLinkFailure               = errors.New("module link failure")

	errSelfDependency      = errors.New("module depends on itself")
	errDuplicateDependency = errors.New("duplicate dependency declaration")
)

// Config is the behavioral configuration of the module runtime. It is part
// of the environment fingerprint: any change to it forces new verification.
type Config struct {
	MaxModuleSize   uint64 `serialize:"true"`
	MaxDependencies uint32 `serialize:"true"`
	MaxNameLength   uint32 `serialize:"true"`
	MaxTypeDepth    uint32 `serialize:"true"`
	MaxTypeSize     uint64 `serialize:"true"`

	// DelayedFieldOptimization exchanges aggregator reads for lazy
	// materialization. Only the block executor enables it, and only when the
	// corresponding feature is active.
	DelayedFieldOptimization bool `serialize:"true"`
}

func DefaultConfig() Config {
	return Config{
		MaxModuleSize:   constants.MiB,
		MaxDependencies: 256,
		MaxNameLength:   128,
		MaxTypeDepth:    20,
		MaxTypeSize:     128,
	}
}

// NativeFunction is an engine-provided implementation of a declared native.
// The table is assembled once per environment; the execution engine is the
// only caller.
type NativeFunction func(args ...[]byte) ([]byte, error)

// Runtime is the runtime environment threaded through every verification
// step: VM config, the native function table, and a deserialization cache.
type Runtime struct {
	config  Config
	natives map[string]NativeFunction
	parsed  cache.Cacher[ids.ID, *CompiledModule]
}

func NewRuntime(config Config, natives map[string]NativeFunction) *Runtime {
	return &Runtime{
		config:  config,
		natives: natives,
		parsed:  lru.NewCache[ids.ID, *CompiledModule](parsedCacheSize),
	}
}

// NewMeteredRuntime is NewRuntime with a metered deserialization cache.
func NewMeteredRuntime(
	config Config,
	natives map[string]NativeFunction,
	namespace string,
	registerer metric.Registerer,
) (*Runtime, error) {
	registry, ok := registerer.(metric.Registry)
	if !ok {
		return nil, errors.New("registerer must implement metric.Registry")
	}
	parsed, err := metercacher.New[ids.ID, *CompiledModule](
		namespace,
		registry,
		lru.NewCache[ids.ID, *CompiledModule](parsedCacheSize),
	)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		config:  config,
		natives: natives,
		parsed:  parsed,
	}, nil
}

func (r *Runtime) Config() Config {
	return r.config
}

func (r *Runtime) Native(name string) (NativeFunction, bool) {
	fn, ok := r.natives[name]
	return fn, ok
}

func (r *Runtime) NumNatives() int {
	return len(r.natives)
}

// EnableDelayedFieldOptimization returns a derived runtime with the flag
// set, sharing the native table and deserialization cache.
func (r *Runtime) EnableDelayedFieldOptimization() *Runtime {
	config := r.config
	config.DelayedFieldOptimization = true
	return &Runtime{
		config:  config,
		natives: r.natives,
		parsed:  r.parsed,
	}
}

// parseModule decodes a state value into its compiled form, serving repeated
// parses of identical bytes from the cache.
func (r *Runtime) parseModule(stateValue []byte) (*CompiledModule, ids.ID, error) {
	if uint64(len(stateValue)) > r.config.MaxModuleSize {
		return nil, ids.Empty, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrMalformedModule, len(stateValue), r.config.MaxModuleSize)
	}

	hash := ids.Checksum256(stateValue)
	if cm, ok := r.parsed.Get(hash); ok {
		return cm, hash, nil
	}

	cm, err := Parse(stateValue, r.config)
	if err != nil {
		return nil, ids.Empty, err
	}
	r.parsed.Put(hash, cm)
	return cm, hash, nil
}

// CheckModuleAddressAndName requires the compiled module's declared identity
// to match the identity it is stored under. A mismatch is a verification
// failure, never auto-corrected.
func (r *Runtime) CheckModuleAddressAndName(cm *CompiledModule, address types.Address, name string) error {
	if cm.Address != address || cm.Name != name {
		return fmt.Errorf(
			"%w: declared %s, expected %s",
			ErrModuleAddressNameMismatch,
			cm.ID(),
			types.NewModuleID(address, name),
		)
	}
	return nil
}

// BuildLocallyVerifiedModule runs the structural checks that need no
// dependencies.
func (r *Runtime) BuildLocallyVerifiedModule(cm *CompiledModule, size uint64, hash ids.ID) (*LocallyVerifiedModule, error) {
	self := cm.ID()
	seen := make(map[ids.ID]struct{}, len(cm.Dependencies))
	for _, dep := range cm.Dependencies {
		if dep == self {
			return nil, fmt.Errorf("%w: %s", errSelfDependency, self)
		}
		key := dep.Key()
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s declares %s twice", errDuplicateDependency, self, dep)
		}
		seen[key] = struct{}{}
	}
	return &LocallyVerifiedModule{
		compiled: cm,
		size:     size,
		hash:     hash,
	}, nil
}

// BuildVerifiedModule links a locally verified module against its verified
// dependencies. The handles must match the declaration list exactly, in
// order.
func (r *Runtime) BuildVerifiedModule(lvm *LocallyVerifiedModule, deps []*Module) (*Module, error) {
	declared := lvm.compiled.Dependencies
	if len(deps) != len(declared) {
		return nil, fmt.Errorf(
			"%w: %s expects %d dependencies, linked %d",
			ErrLinkFailure,
			lvm.ID(),
			len(declared),
			len(deps),
		)
	}
	for i, dep := range deps {
		if dep.ID() != declared[i] {
			return nil, fmt.Errorf(
				"%w: %s dependency %d is %s, declared %s",
				ErrLinkFailure,
				lvm.ID(),
				i,
				dep.ID(),
				declared[i],
			)
		}
	}
	return &Module{
		compiled: lvm.compiled,
		size:     lvm.size,
		hash:     lvm.hash,
		deps:     deps,
	}, nil
}
