// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package environment

// ChainID distinguishes networks. State with no chain id configured (e.g.
// genesis) is treated as ChainTest.
type ChainID uint32

const (
	ChainMainnet ChainID = 1
	ChainTestnet ChainID = 2
	ChainTest    ChainID = 4
)

func (c ChainID) String() string {
	switch c {
	case ChainMainnet:
		return "mainnet"
	case ChainTestnet:
		return "testnet"
	case ChainTest:
		return "test"
	default:
		return "custom"
	}
}
