// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import (
	"github.com/luxfi/movevm/module"
)

// GasHook observes the cost charged by each native invocation. Used by gas
// calibration tooling only.
type GasHook func(name string, cost uint64)

// nativeBuilder assembles the native function table for an environment. The
// registered closures capture the resolved gas parameters, so a new table is
// built whenever the parameters change.
type nativeBuilder struct {
	gasFeatureVersion uint64
	gasParams         GasParameters
	features          Features
	timedFeatures     TimedFeatures
	gasHook           GasHook
}

func (b *nativeBuilder) build(purpose Purpose) map[string]module.NativeFunction {
	natives := make(map[string]module.NativeFunction)

	register := func(name string, perByte bool) {
		base := b.gasParams.NativeBase
		natives[name] = func(args ...[]byte) ([]byte, error) {
			cost := base
			if perByte {
				for _, arg := range args {
					cost += b.gasParams.NativePerByte * uint64(len(arg))
				}
			}
			if b.gasHook != nil {
				b.gasHook(name, cost)
			}
			return nil, nil
		}
	}

	register("hash.sha2_256", true)
	register("hash.sha3_256", true)
	register("hash.keccak256", true)
	register("signer.borrow_address", false)
	register("serializer.to_bytes", true)
	register("serializer.serialized_size", true)
	register("string.check_utf8", true)
	register("string.index_of", true)
	register("type_info.type_of", false)
	register("event.write_to_event_store", true)
	register("transaction_context.generate_unique_address", false)
	register("aggregator_v2.create_aggregator", false)
	register("aggregator_v2.try_add", false)
	register("aggregator_v2.try_sub", false)
	register("object.exists_at", false)

	// Gas feature version 12 moved serialized-size estimation on-chain.
	if b.gasFeatureVersion >= 12 {
		register("serializer.constant_serialized_size", false)
	}
	if b.features.Enabled(FeatureDispatchableFungibleAsset) {
		register("function_info.check_dispatch_type_compatibility", false)
		register("dispatchable_fungible_asset.dispatch", false)
	}
	if b.timedFeatures.Enabled(TimedFeatureEntryCompatibility) {
		register("code.check_entry_compatibility", true)
	}

	// The signer-creation native is reserved for governance simulation. It
	// must never be reachable in regular execution.
	if purpose == PurposeGovernanceSimulation {
		register("account.create_signer", false)
	}

	return natives
}
