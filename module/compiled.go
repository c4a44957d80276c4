// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package module defines compiled-module artifacts, the storage entries the
// caches hold, and the runtime environment that verifies them.
package module

import (
	"errors"
	"fmt"

	"github.com/luxfi/movevm/types"
)

var (
	ErrMalformedModule = errors.New("malformed module")

	errWrongCodecVersion = errors.New("wrong module codec version")
)

// CompiledModule is the deserialized form of an on-chain module: its own
// identity, the modules it links against in declaration order, and the code
// section the execution engine interprets.
type CompiledModule struct {
	Address      types.Address    `serialize:"true"`
	Name         string           `serialize:"true"`
	Dependencies []types.ModuleID `serialize:"true"`
	Friends      []types.ModuleID `serialize:"true"`
	Code         []byte           `serialize:"true"`
}

func (cm *CompiledModule) ID() types.ModuleID {
	return types.NewModuleID(cm.Address, cm.Name)
}

// Bytes returns the wire encoding of the module.
func (cm *CompiledModule) Bytes() ([]byte, error) {
	return Codec.Marshal(codecVersion, cm)
}

// Parse decodes a compiled module and runs the structural checks that need
// no configuration: codec version, name shape, and dependency count bounds
// are enforced here; size bounds depend on the runtime config and are
// checked by the runtime.
func Parse(b []byte, cfg Config) (*CompiledModule, error) {
	cm := &CompiledModule{}
	parsedVersion, err := Codec.Unmarshal(b, cm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModule, err)
	}
	if parsedVersion != codecVersion {
		return nil, fmt.Errorf("%w: %d", errWrongCodecVersion, parsedVersion)
	}

	switch {
	case len(cm.Name) == 0:
		return nil, fmt.Errorf("%w: empty module name", ErrMalformedModule)
	case len(cm.Name) > int(cfg.MaxNameLength):
		return nil, fmt.Errorf("%w: module name exceeds %d bytes", ErrMalformedModule, cfg.MaxNameLength)
	case len(cm.Dependencies) > int(cfg.MaxDependencies):
		return nil, fmt.Errorf("%w: %d dependencies exceeds limit %d", ErrMalformedModule, len(cm.Dependencies), cfg.MaxDependencies)
	case len(cm.Code) == 0:
		return nil, fmt.Errorf("%w: empty code section", ErrMalformedModule)
	}
	return cm, nil
}
