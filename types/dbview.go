// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
)

var _ StateView = (*DatabaseView)(nil)

// DatabaseView adapts a key-value database to the StateView interface.
// database.ErrNotFound maps to an absent value; every other database error
// surfaces as a storage error.
type DatabaseView struct {
	db database.KeyValueReader
}

func NewDatabaseView(db database.KeyValueReader) *DatabaseView {
	return &DatabaseView{
		db: db,
	}
}

func (v *DatabaseView) GetStateValue(key ids.ID) ([]byte, error) {
	value, err := v.db.Get(key[:])
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return value, nil
}
