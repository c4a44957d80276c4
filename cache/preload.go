// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/utils"
	"go.uber.org/zap"

	"github.com/luxfi/movevm/module"
	"github.com/luxfi/movevm/types"
)

// CodeStorage resolves verified framework modules when warming the preload
// cache. (nil, nil) means the module is not part of the snapshot.
type CodeStorage interface {
	FetchVerifiedModule(address types.Address, name string) (*module.Module, error)
}

// frameworkModules lists the framework modules read on almost every
// transaction, in dependency order. The list is hand-maintained: a framework
// upgrade that changes module names or their dependency order must update it
// in the same change.
var frameworkModules = []string{
	// Core stdlib.
	"vector",
	"signer",
	"error",
	"hash",
	"features",
	"serializer",
	"option",
	"string",
	"fixed_point32",

	// Extended stdlib.
	"type_info",
	"ed25519",
	"from_bytes",
	"multi_ed25519",
	"table",
	"bls12381",
	"math64",
	"fixed_point64",
	"math128",
	"math_fixed64",
	"table_with_length",
	"copyable_any",
	"simple_map",
	"bn254_algebra",
	"crypto_algebra",
	"keccak",

	// Execution framework.
	"guid",
	"system_addresses",
	"chain_id",
	"timestamp",
	"event",
	"create_signer",
	"account",
	"aggregator",
	"aggregator_factory",
	"optional_aggregator",
	"transaction_context",
	"randomness",
	"object",
	"aggregator_v2",
	"function_info",
	"fungible_asset",
	"dispatchable_fungible_asset",
	"primary_fungible_store",
	"coin",
	"native_coin",
	"native_account",
	"chain_status",
	"staking_config",
	"stake",
	"transaction_fee",
	"validation",
	"reconfiguration_state",
	"state_storage",
	"storage_gas",
	"reconfiguration",
	"config_buffer",
	"randomness_config",
	"keyless_account",
	"consensus_config",
	"execution_config",
	"validator_consensus_info",
	"dkg",
	"gas_schedule",
	"util",
	"jwk_consensus_config",
	"jwks",
	"reconfiguration_with_dkg",
	"block",
	"code",
}

// preloadMarker is the module whose presence proves the snapshot is warm.
// It is validated on every transaction, so it is always part of a loaded
// framework.
const preloadMarker = "validation"

type preloadSnapshot struct {
	modules map[ids.ID]*module.Entry
}

// FrameworkPreloader keeps an atomically swappable snapshot of the verified
// framework modules, so the hot path reads them without taking a lock.
// Rebuilds happen at most once per genuinely new framework version.
type FrameworkPreloader struct {
	log      log.Logger
	snapshot utils.Atomic[*preloadSnapshot]
}

func NewFrameworkPreloader(log log.Logger) *FrameworkPreloader {
	return &FrameworkPreloader{
		log: log,
	}
}

// EnsureLoaded makes the preload snapshot warm for the given state. If the
// current snapshot already contains the marker module this is a single
// atomic load. Otherwise a complete replacement mapping is built and swapped
// in: concurrent readers see either the old snapshot or the new one, never a
// partial build.
//
// Framework modules absent from the snapshot are skipped, not errors: a
// caller falling through to the cross-block cache resolves them there, or
// fails with a linker error if they are truly absent at execution time.
func (p *FrameworkPreloader) EnsureLoaded(view types.StateView, storage CodeStorage) error {
	markerKey := types.NewModuleID(types.FrameworkAddress, preloadMarker).Key()
	if snapshot := p.snapshot.Get(); snapshot != nil {
		if _, ok := snapshot.modules[markerKey]; ok {
			return nil
		}
	}

	modules := make(map[ids.ID]*module.Entry, len(frameworkModules))
	for _, name := range frameworkModules {
		id := types.NewModuleID(types.FrameworkAddress, name)

		stateValue, err := view.GetStateValue(id.Key())
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrStorage, err)
		}
		verified, err := storage.FetchVerifiedModule(id.Address, id.Name)
		if err != nil {
			return err
		}
		if stateValue == nil || verified == nil {
			continue
		}
		modules[id.Key()] = module.NewVerifiedEntry(stateValue, verified)
	}

	p.snapshot.Set(&preloadSnapshot{
		modules: modules,
	})
	p.log.Info("rebuilt framework preload cache",
		zap.Int("modules", len(modules)),
	)
	return nil
}

// Get returns the preloaded entry for the key, if any. Lock-free.
func (p *FrameworkPreloader) Get(key ids.ID) (*module.Entry, bool) {
	snapshot := p.snapshot.Get()
	if snapshot == nil {
		return nil, false
	}
	entry, ok := snapshot.modules[key]
	return entry, ok
}
