// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/movevm/types"
)

func TestNewEnvironmentDefaults(t *testing.T) {
	require := require.New(t)

	// An empty view models genesis: no configuration at all.
	env := NewEnvironment(types.NewMemView())

	require.Equal(ChainTest, env.ChainID())

	// Baseline features plus the force-enabled loader v2.
	expected := DefaultFeatures()
	expected.Enable(FeatureLoaderV2)
	require.Equal(expected.Bytes(), env.Features().Bytes())
	require.Equal(PurposeExecution, env.Purpose())
	require.False(env.VMConfig().DelayedFieldOptimization)

	// Missing gas configuration is recorded, not fatal.
	require.False(env.GasParameters().Ok())
	require.NotEmpty(env.GasParameters().Err)
	require.Zero(env.GasParameters().Params.NativeBase)
	require.False(env.StorageGasParameters().Ok())
	require.Zero(env.GasFeatureVersion())
}

func TestNewEnvironmentFromState(t *testing.T) {
	require := require.New(t)

	view := types.NewMemView()
	WriteChainID(view, ChainMainnet)
	WriteReconfigurationTime(view, 1714158000000000)

	features := DefaultFeatures()
	features.Enable(FeatureDelayedFields)
	WriteFeatures(view, features)

	require.NoError(WriteGasSchedule(view, &GasSchedule{
		FeatureVersion: 14,
		Entries: []GasEntry{
			{Key: "natives.base", Value: 300},
			{Key: "natives.per_byte", Value: 3},
			{Key: "misc.abstract_size", Value: 40},
			{Key: "types.base_size", Value: 64},
			{Key: "types.max_depth", Value: 10},
			{Key: "storage.per_item_read", Value: 300},
			{Key: "storage.per_byte_read", Value: 3},
			{Key: "storage.per_item_write", Value: 5000},
			{Key: "storage.per_byte_write", Value: 50},
		},
	}))

	env := NewEnvironment(view)
	require.Equal(ChainMainnet, env.ChainID())
	require.True(env.Features().Enabled(FeatureDelayedFields))
	require.Equal(uint64(14), env.GasFeatureVersion())
	require.True(env.GasParameters().Ok())
	require.Equal(uint64(300), env.GasParameters().Params.NativeBase)
	require.True(env.StorageGasParameters().Ok())
	require.Equal(uint64(5000), env.StorageGasParameters().Params.PerItemWrite)

	// Type limits follow the schedule.
	require.Equal(uint32(10), env.VMConfig().MaxTypeDepth)
	require.Equal(uint64(64), env.VMConfig().MaxTypeSize)

	// The reconfiguration time is past the mainnet activations.
	require.True(env.TimedFeatures().Enabled(TimedFeatureVerifierMetering))
	require.True(env.TimedFeatures().Enabled(TimedFeatureModuleComplexityCheck))
	require.False(env.TimedFeatures().Enabled(TimedFeatureEntryCompatibility))
}

func TestConfigStateKeysDistinct(t *testing.T) {
	require := require.New(t)

	keys := []ids.ID{
		FeaturesStateKey,
		ChainIDStateKey,
		ReconfigurationTimeStateKey,
		GasScheduleStateKey,
	}
	seen := make(map[ids.ID]struct{}, len(keys))
	for _, key := range keys {
		require.NotEqual(ids.Empty, key)
		_, ok := seen[key]
		require.False(ok)
		seen[key] = struct{}{}
	}
}

func TestGasScheduleMissingEntry(t *testing.T) {
	require := require.New(t)

	view := types.NewMemView()
	require.NoError(WriteGasSchedule(view, &GasSchedule{
		FeatureVersion: 14,
		Entries: []GasEntry{
			{Key: "natives.base", Value: 300},
		},
	}))

	env := NewEnvironment(view)
	require.False(env.GasParameters().Ok())
	require.Contains(env.GasParameters().Err, "not found")
	// Construction still succeeds with zeroed parameters.
	require.Zero(env.GasParameters().Params.NativePerByte)
}

func TestTryEnableDelayedFieldOptimization(t *testing.T) {
	require := require.New(t)

	// Feature absent: the toggle must not flip the flag.
	env := NewEnvironment(types.NewMemView())
	require.Same(env, env.TryEnableDelayedFieldOptimization())
	require.False(env.VMConfig().DelayedFieldOptimization)

	// Feature present: the flag flips, the original is untouched, and a
	// second call is a no-op.
	view := types.NewMemView()
	features := DefaultFeatures()
	features.Enable(FeatureDelayedFields)
	WriteFeatures(view, features)

	env = NewEnvironment(view)
	enabled := env.TryEnableDelayedFieldOptimization()
	require.NotSame(env, enabled)
	require.True(enabled.VMConfig().DelayedFieldOptimization)
	require.False(env.VMConfig().DelayedFieldOptimization)
	require.Same(enabled, enabled.TryEnableDelayedFieldOptimization())
}

func TestFeaturesAccessorIsACopy(t *testing.T) {
	require := require.New(t)

	env := NewEnvironment(types.NewMemView())
	fp := env.Fingerprint()

	mutated := env.Features()
	mutated.Enable(FeatureWebAuthnSignature)
	require.True(mutated.Enabled(FeatureWebAuthnSignature))

	// The environment's own set and fingerprint are untouched.
	require.False(env.Features().Enabled(FeatureWebAuthnSignature))
	require.Equal(fp, env.Fingerprint())
}

func TestLoaderV2Override(t *testing.T) {
	require := require.New(t)

	disabled := false
	env := New(types.NewMemView(), Options{
		LoaderV2Override: &disabled,
	})
	require.False(env.Features().Enabled(FeatureLoaderV2))

	// The override wins over the on-chain vector.
	view := types.NewMemView()
	features := DefaultFeatures()
	features.Enable(FeatureLoaderV2)
	WriteFeatures(view, features)

	env = New(view, Options{
		LoaderV2Override: &disabled,
	})
	require.False(env.Features().Enabled(FeatureLoaderV2))
}

func TestGovernanceSimulationNatives(t *testing.T) {
	require := require.New(t)

	view := types.NewMemView()

	execution := NewEnvironment(view)
	_, ok := execution.Runtime().Native("account.create_signer")
	require.False(ok)

	simulation := NewEnvironmentForGovernanceSimulation(view)
	require.Equal(PurposeGovernanceSimulation, simulation.Purpose())
	_, ok = simulation.Runtime().Native("account.create_signer")
	require.True(ok)
}

func TestGasHook(t *testing.T) {
	require := require.New(t)

	var (
		hookedName string
		hookedCost uint64
	)
	env := NewEnvironmentWithGasHook(types.NewMemView(), func(name string, cost uint64) {
		hookedName = name
		hookedCost = cost
	})

	native, ok := env.Runtime().Native("hash.sha2_256")
	require.True(ok)
	_, err := native([]byte("payload"))
	require.NoError(err)
	require.Equal("hash.sha2_256", hookedName)
	// Zeroed gas parameters: the hook still fires with zero cost.
	require.Zero(hookedCost)
}

func TestTimedFeaturesOverride(t *testing.T) {
	require := require.New(t)

	view := types.NewMemView()
	WriteChainID(view, ChainMainnet)

	// Timestamp 0 on mainnet: nothing active.
	env := NewEnvironment(view)
	require.False(env.TimedFeatures().Enabled(TimedFeatureVerifierMetering))

	env = New(view, Options{
		TimedFeaturesOverride: OverrideEnableAll,
	})
	require.True(env.TimedFeatures().Enabled(TimedFeatureVerifierMetering))
	require.True(env.TimedFeatures().Enabled(TimedFeatureEntryCompatibility))
}

func TestTimedFeaturesTestChain(t *testing.T) {
	require := require.New(t)

	// Everything is active from the start on test chains.
	env := NewEnvironment(types.NewMemView())
	for f := TimedFeature(0); f < numTimedFeatures; f++ {
		require.True(env.TimedFeatures().Enabled(f))
	}
}
