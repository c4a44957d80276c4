// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/movevm/module"
	"github.com/luxfi/movevm/types"
)

// Purpose states what an environment is built for. It is fixed at
// construction and decides which natives are registered.
type Purpose uint8

const (
	PurposeExecution Purpose = iota
	PurposeGovernanceSimulation
)

// Options tunes environment construction. The zero value is what regular
// execution uses.
type Options struct {
	Purpose Purpose

	// GasHook, when set, observes the cost of every native invocation.
	GasHook GasHook

	// TimedFeaturesOverride replaces the activation schedule. Replay and
	// test tooling only.
	TimedFeaturesOverride TimedFeaturesOverride

	// LoaderV2Override forces the loader-v2 feature on or off regardless of
	// the on-chain vector. When nil the feature is force-enabled, which is
	// the production default during the rollout.
	LoaderV2Override *bool
}

// Environment is the immutable snapshot of all configuration that affects
// module verification and execution. It is fully determined by the state
// snapshot it was built from: two environments built from snapshots with
// identical relevant configuration have equal fingerprints.
type Environment struct {
	chainID ChainID

	features      Features
	timedFeatures TimedFeatures

	gasFeatureVersion uint64
	gasParams         GasParametersResult
	storageGasParams  StorageGasParametersResult

	runtime *module.Runtime
	purpose Purpose

	fingerprint ids.ID
}

// NewEnvironment builds an environment for regular execution.
func NewEnvironment(view types.StateView) *Environment {
	return New(view, Options{})
}

// NewEnvironmentWithGasHook builds an environment whose natives report their
// cost to the hook. Gas calibration only.
func NewEnvironmentWithGasHook(view types.StateView, hook GasHook) *Environment {
	return New(view, Options{
		GasHook: hook,
	})
}

// NewEnvironmentForGovernanceSimulation builds an environment with the
// signer-creation native injected. Must not be used for regular execution.
func NewEnvironmentForGovernanceSimulation(view types.StateView) *Environment {
	return New(view, Options{
		Purpose: PurposeGovernanceSimulation,
	})
}

// NewEnvironmentWithDelayedFieldOptimization builds an execution environment
// and enables the delayed-field optimization if the feature is active.
func NewEnvironmentWithDelayedFieldOptimization(view types.StateView) *Environment {
	return NewEnvironment(view).TryEnableDelayedFieldOptimization()
}

// New builds an environment from a state snapshot. Construction never fails:
// every piece of absent configuration has a documented default, and gas
// resolution failures are recorded on the environment rather than returned.
func New(view types.StateView, opts Options) *Environment {
	features := fetchFeatures(view)
	if opts.LoaderV2Override != nil {
		if *opts.LoaderV2Override {
			features.Enable(FeatureLoaderV2)
		} else {
			features.Disable(FeatureLoaderV2)
		}
	} else {
		features.Enable(FeatureLoaderV2)
	}

	chainID := fetchChainID(view)
	timestamp := fetchReconfigurationTime(view)
	timedFeatures := BuildTimedFeatures(chainID, timestamp, opts.TimedFeaturesOverride)

	gasParams, storageGasParams, gasFeatureVersion := resolveGasParameters(view)

	// Type-size limits follow the resolved schedule; without one the
	// defaults apply, mirroring the zeroed native costs.
	config := module.DefaultConfig()
	if gasParams.Ok() {
		if depth := gasParams.Params.TypeMaxDepth; depth != 0 {
			config.MaxTypeDepth = uint32(depth)
		}
		if size := gasParams.Params.TypeBaseSize; size != 0 {
			config.MaxTypeSize = size
		}
	}

	builder := &nativeBuilder{
		gasFeatureVersion: gasFeatureVersion,
		gasParams:         gasParams.Params,
		features:          features,
		timedFeatures:     timedFeatures,
		gasHook:           opts.GasHook,
	}
	natives := builder.build(opts.Purpose)

	runtime := module.NewRuntime(config, natives)

	env := &Environment{
		chainID:           chainID,
		features:          features,
		timedFeatures:     timedFeatures,
		gasFeatureVersion: gasFeatureVersion,
		gasParams:         gasParams,
		storageGasParams:  storageGasParams,
		runtime:           runtime,
		purpose:           opts.Purpose,
	}
	env.fingerprint = fingerprint(env)
	return env
}

func (e *Environment) ChainID() ChainID {
	return e.chainID
}

// Features returns a copy of the active feature set. Mutating the copy
// never affects the environment or its fingerprint.
func (e *Environment) Features() Features {
	return e.features.Clone()
}

func (e *Environment) TimedFeatures() TimedFeatures {
	return e.timedFeatures
}

// VMConfig returns the runtime's behavioral configuration.
func (e *Environment) VMConfig() module.Config {
	return e.runtime.Config()
}

func (e *Environment) GasFeatureVersion() uint64 {
	return e.gasFeatureVersion
}

// GasParameters returns the resolved gas parameters, or the recorded reason
// they were not found on-chain.
func (e *Environment) GasParameters() GasParametersResult {
	return e.gasParams
}

func (e *Environment) StorageGasParameters() StorageGasParametersResult {
	return e.storageGasParams
}

func (e *Environment) Runtime() *module.Runtime {
	return e.runtime
}

func (e *Environment) Purpose() Purpose {
	return e.purpose
}

// Fingerprint identifies the environment's configuration. Equal fingerprints
// mean the environments are interchangeable for caching.
func (e *Environment) Fingerprint() ids.ID {
	return e.fingerprint
}

// TryEnableDelayedFieldOptimization returns an environment with the
// optimization enabled iff the delayed-fields feature is active. The
// receiver is never mutated; calling this twice is idempotent.
func (e *Environment) TryEnableDelayedFieldOptimization() *Environment {
	if !e.features.Enabled(FeatureDelayedFields) {
		return e
	}
	if e.runtime.Config().DelayedFieldOptimization {
		return e
	}

	derived := *e
	derived.runtime = e.runtime.EnableDelayedFieldOptimization()
	derived.fingerprint = fingerprint(&derived)
	return &derived
}
