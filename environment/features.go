// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package environment builds the immutable per-block configuration snapshot
// that module verification and execution depend on, fingerprints it, and
// caches it across blocks.
package environment

import "github.com/luxfi/math/set"

// Feature is an on-chain feature flag. Values are wire-stable: they index a
// bit in the on-chain feature vector and must never be reordered.
type Feature int

const (
	FeatureDelayedFields Feature = iota
	FeatureModuleEventMigration
	FeatureResourceGroupsV2
	FeatureDispatchableFungibleAsset
	FeatureConcurrentFungibleBalance
	FeatureWebAuthnSignature
	FeatureLoaderV2

	numFeatures
)

// Features is the set of feature flags active in an environment.
type Features struct {
	bits set.Bits
}

// DefaultFeatures is the baseline used when state has no feature vector,
// e.g. at genesis.
func DefaultFeatures() Features {
	return Features{
		bits: set.NewBits(
			int(FeatureModuleEventMigration),
			int(FeatureResourceGroupsV2),
		),
	}
}

func FeaturesFromBytes(b []byte) Features {
	return Features{
		bits: set.BitsFromBytes(b),
	}
}

// Clone returns an independent copy of the set.
func (f Features) Clone() Features {
	return FeaturesFromBytes(f.bits.Bytes())
}

func (f Features) Enabled(feature Feature) bool {
	return f.bits.Contains(int(feature))
}

func (f Features) Enable(feature Feature) {
	f.bits.Add(int(feature))
}

func (f Features) Disable(feature Feature) {
	f.bits.Remove(int(feature))
}

// Bytes returns the canonical byte encoding used for both on-chain storage
// and fingerprinting.
func (f Features) Bytes() []byte {
	return f.bits.Bytes()
}
