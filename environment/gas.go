// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"

	"github.com/luxfi/movevm/types"
)

const gasCodecVersion = 0

var gasCodec codec.Manager

func init() {
	gasCodec = codec.NewManager(math.MaxInt)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&GasSchedule{}),
		gasCodec.RegisterCodec(gasCodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}

// GasSchedule is the on-chain gas schedule: a versioned list of named costs.
type GasSchedule struct {
	FeatureVersion uint64     `serialize:"true"`
	Entries        []GasEntry `serialize:"true"`
}

type GasEntry struct {
	Key   string `serialize:"true"`
	Value uint64 `serialize:"true"`
}

// GasParameters are the execution-side costs resolved from the schedule.
type GasParameters struct {
	NativeBase       uint64
	NativePerByte    uint64
	MiscAbstractSize uint64
	TypeBaseSize     uint64
	TypeMaxDepth     uint64
}

// StorageGasParameters are the storage-side costs resolved from the
// schedule.
type StorageGasParameters struct {
	PerItemRead  uint64
	PerByteRead  uint64
	PerItemWrite uint64
	PerByteWrite uint64
}

// GasParametersResult records either resolved parameters or the reason they
// could not be resolved. Missing gas configuration is data, not a failure:
// the environment is always constructible (genesis has no schedule).
type GasParametersResult struct {
	Params GasParameters
	Err    string
}

func (r GasParametersResult) Ok() bool {
	return r.Err == ""
}

type StorageGasParametersResult struct {
	Params StorageGasParameters
	Err    string
}

func (r StorageGasParametersResult) Ok() bool {
	return r.Err == ""
}

// resolveGasParameters reads the gas schedule from state and resolves both
// parameter sets for the schedule's feature version. All failures are
// recorded as strings on the results; callers fall back to zeroed
// parameters.
func resolveGasParameters(view types.StateView) (GasParametersResult, StorageGasParametersResult, uint64) {
	fail := func(reason string) (GasParametersResult, StorageGasParametersResult, uint64) {
		return GasParametersResult{Err: reason}, StorageGasParametersResult{Err: reason}, 0
	}

	b, err := view.GetStateValue(GasScheduleStateKey)
	if err != nil {
		return fail(fmt.Sprintf("reading gas schedule: %v", err))
	}
	if b == nil {
		return fail("gas schedule not found on-chain")
	}

	schedule := &GasSchedule{}
	parsedVersion, err := gasCodec.Unmarshal(b, schedule)
	if err != nil {
		return fail(fmt.Sprintf("decoding gas schedule: %v", err))
	}
	if parsedVersion != gasCodecVersion {
		return fail(fmt.Sprintf("wrong gas schedule codec version %d", parsedVersion))
	}

	costs := make(map[string]uint64, len(schedule.Entries))
	for _, entry := range schedule.Entries {
		costs[entry.Key] = entry.Value
	}

	lookupErr := ""
	lookup := func(key string) uint64 {
		value, ok := costs[key]
		if !ok && lookupErr == "" {
			lookupErr = fmt.Sprintf("gas schedule entry %q not found", key)
		}
		return value
	}

	params := GasParameters{
		NativeBase:       lookup("natives.base"),
		NativePerByte:    lookup("natives.per_byte"),
		MiscAbstractSize: lookup("misc.abstract_size"),
		TypeBaseSize:     lookup("types.base_size"),
		TypeMaxDepth:     lookup("types.max_depth"),
	}
	storageParams := StorageGasParameters{
		PerItemRead:  lookup("storage.per_item_read"),
		PerByteRead:  lookup("storage.per_byte_read"),
		PerItemWrite: lookup("storage.per_item_write"),
		PerByteWrite: lookup("storage.per_byte_write"),
	}
	if lookupErr != "" {
		return fail(lookupErr)
	}

	return GasParametersResult{Params: params},
		StorageGasParametersResult{Params: storageParams},
		schedule.FeatureVersion
}
