// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"

	"github.com/luxfi/ids"
)

// ErrStorage tags a failure of the underlying state store. Callers must
// distinguish it from an absent value: absence is (nil, nil).
var ErrStorage = errors.New("state storage error")

// StateView is a read-only snapshot of committed chain state.
//
// GetStateValue returns (nil, nil) when no value exists for the key. A
// non-nil error always wraps [ErrStorage] and aborts the operation that
// issued the read.
type StateView interface {
	GetStateValue(key ids.ID) ([]byte, error)
}
