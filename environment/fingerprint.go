// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/ids"

	"github.com/luxfi/movevm/module"
)

const fingerprintCodecVersion = 0

var fingerprintCodec codec.Manager

func init() {
	fingerprintCodec = codec.NewManager(math.MaxInt)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&fingerprintMaterial{}),
		fingerprintCodec.RegisterCodec(fingerprintCodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}

// fingerprintMaterial is everything that distinguishes two environments for
// caching purposes. Gas parameter values are deliberately absent: they are
// derived from the schedule the gas feature version already identifies.
type fingerprintMaterial struct {
	ChainID           uint32        `serialize:"true"`
	Features          []byte        `serialize:"true"`
	TimedFeatures     []byte        `serialize:"true"`
	GasFeatureVersion uint64        `serialize:"true"`
	VMConfig          module.Config `serialize:"true"`
}

// fingerprint serializes the distinguishing configuration and hashes it.
// The value types here are serializable by construction, so a failure is a
// programming error, not a recoverable condition.
func fingerprint(e *Environment) ids.ID {
	material := &fingerprintMaterial{
		ChainID:           uint32(e.chainID),
		Features:          e.features.Bytes(),
		TimedFeatures:     e.timedFeatures.Bytes(),
		GasFeatureVersion: e.gasFeatureVersion,
		VMConfig:          e.runtime.Config(),
	}
	b, err := fingerprintCodec.Marshal(fingerprintCodecVersion, material)
	if err != nil {
		panic(fmt.Sprintf("environment configs must serialize: %v", err))
	}
	return ids.Checksum256(b)
}
