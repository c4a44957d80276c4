// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/movevm/types"
	"github.com/luxfi/movevm/utils/wrappers"
)

// Well-known state keys for the on-chain configuration the environment is
// built from. Absence of any of them resolves to a documented default, never
// to an error.
var (
	FeaturesStateKey            = configStateKey("features")
	ChainIDStateKey             = configStateKey("chain_id")
	ReconfigurationTimeStateKey = configStateKey("configuration")
	GasScheduleStateKey         = configStateKey("gas_schedule")
)

func configStateKey(name string) ids.ID {
	return ids.Checksum256([]byte("config/" + name))
}

// fetchFeatures returns the on-chain feature vector, or the baseline default
// when it is absent or unreadable.
func fetchFeatures(view types.StateView) Features {
	b, err := view.GetStateValue(FeaturesStateKey)
	if err != nil || len(b) == 0 {
		return DefaultFeatures()
	}
	return FeaturesFromBytes(b)
}

func fetchChainID(view types.StateView) ChainID {
	b, err := view.GetStateValue(ChainIDStateKey)
	if err != nil || len(b) != wrappers.IntLen {
		return ChainTest
	}
	p := wrappers.Packer{Bytes: b}
	return ChainID(p.UnpackInt())
}

func fetchReconfigurationTime(view types.StateView) uint64 {
	b, err := view.GetStateValue(ReconfigurationTimeStateKey)
	if err != nil || len(b) != wrappers.LongLen {
		return 0
	}
	p := wrappers.Packer{Bytes: b}
	return p.UnpackLong()
}

// WriteFeatures stores a feature vector. Genesis and test tooling only.
func WriteFeatures(view *types.MemView, f Features) {
	view.Set(FeaturesStateKey, f.Bytes())
}

func WriteChainID(view *types.MemView, chainID ChainID) {
	p := wrappers.Packer{MaxSize: wrappers.IntLen}
	p.PackInt(uint32(chainID))
	view.Set(ChainIDStateKey, p.Bytes)
}

func WriteReconfigurationTime(view *types.MemView, timestamp uint64) {
	p := wrappers.Packer{MaxSize: wrappers.LongLen}
	p.PackLong(timestamp)
	view.Set(ReconfigurationTimeStateKey, p.Bytes)
}

func WriteGasSchedule(view *types.MemView, schedule *GasSchedule) error {
	b, err := gasCodec.Marshal(gasCodecVersion, schedule)
	if err != nil {
		return err
	}
	view.Set(GasScheduleStateKey, b)
	return nil
}
