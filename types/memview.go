// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/luxfi/ids"

var _ StateView = (*MemView)(nil)

// MemView is a map-backed StateView used by tests and genesis tooling.
type MemView struct {
	values map[ids.ID][]byte
}

func NewMemView() *MemView {
	return &MemView{
		values: make(map[ids.ID][]byte),
	}
}

func (v *MemView) GetStateValue(key ids.ID) ([]byte, error) {
	value, ok := v.values[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (v *MemView) Set(key ids.ID, value []byte) {
	v.values[key] = value
}

func (v *MemView) Delete(key ids.ID) {
	delete(v.values, key)
}

func (v *MemView) Len() int {
	return len(v.values)
}
