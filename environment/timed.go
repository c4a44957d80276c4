// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

import "github.com/luxfi/math/set"

// TimedFeature is a flag gated by the last reconfiguration timestamp rather
// than by the on-chain feature vector. Values are wire-stable.
type TimedFeature int

const (
	TimedFeatureVerifierMetering TimedFeature = iota
	TimedFeatureModuleComplexityCheck
	TimedFeatureEntryCompatibility

	numTimedFeatures
)

// TimedFeaturesOverride replaces the activation schedule wholesale. Used by
// replay and testing tools, never in production.
type TimedFeaturesOverride int

const (
	OverrideNone TimedFeaturesOverride = iota
	OverrideEnableAll
	OverrideDisableAll
)

// timedFeatureActivations holds the activation timestamps in microseconds
// since epoch. On any chain other than mainnet and testnet every timed
// feature is considered active from the start.
var timedFeatureActivations = [numTimedFeatures]struct {
	mainnet, testnet uint64
}{
	TimedFeatureVerifierMetering:      {mainnet: 1679445600000000, testnet: 1679050800000000},
	TimedFeatureModuleComplexityCheck: {mainnet: 1714158000000000, testnet: 1713726000000000},
	TimedFeatureEntryCompatibility:    {mainnet: 1730454000000000, testnet: 1730022000000000},
}

// TimedFeatures is the set of timed features active in an environment.
type TimedFeatures struct {
	bits set.Bits
}

// BuildTimedFeatures resolves the active timed features for a chain at the
// given reconfiguration timestamp (microseconds).
func BuildTimedFeatures(chainID ChainID, timestamp uint64, override TimedFeaturesOverride) TimedFeatures {
	bits := set.NewBits()
	switch override {
	case OverrideEnableAll:
		for f := TimedFeature(0); f < numTimedFeatures; f++ {
			bits.Add(int(f))
		}
	case OverrideDisableAll:
	default:
		for f := TimedFeature(0); f < numTimedFeatures; f++ {
			var activation uint64
			switch chainID {
			case ChainMainnet:
				activation = timedFeatureActivations[f].mainnet
			case ChainTestnet:
				activation = timedFeatureActivations[f].testnet
			}
			if timestamp >= activation {
				bits.Add(int(f))
			}
		}
	}
	return TimedFeatures{
		bits: bits,
	}
}

func (f TimedFeatures) Enabled(feature TimedFeature) bool {
	return f.bits.Contains(int(feature))
}

func (f TimedFeatures) Bytes() []byte {
	return f.bits.Bytes()
}
