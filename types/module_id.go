// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/movevm/utils/wrappers"
)

// ModuleID is the identity of an on-chain module: the publisher address plus
// the module name.
type ModuleID struct {
	Address Address `serialize:"true"`
	Name    string  `serialize:"true"`
}

func NewModuleID(address Address, name string) ModuleID {
	return ModuleID{
		Address: address,
		Name:    name,
	}
}

// Key derives the storage key for this module. The encoding length-prefixes
// the name, so two distinct (address, name) pairs never collide.
func (id ModuleID) Key() ids.ID {
	p := wrappers.Packer{
		MaxSize: len(id.Address) + wrappers.ShortLen + len(id.Name),
	}
	p.PackFixedBytes(id.Address[:])
	p.PackStr(id.Name)

	return ids.Checksum256(p.Bytes)
}

func (id ModuleID) String() string {
	return id.Address.String() + "::" + id.Name
}
