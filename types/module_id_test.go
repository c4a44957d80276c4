// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

func TestModuleIDKeyDeterministic(t *testing.T) {
	require := require.New(t)

	addr := ids.GenerateTestShortID()
	id := NewModuleID(addr, "coin")

	require.Equal(id.Key(), id.Key())
	require.Equal(id.Key(), NewModuleID(addr, "coin").Key())
}

func TestModuleIDKeyDistinct(t *testing.T) {
	require := require.New(t)

	addr := ids.GenerateTestShortID()
	otherAddr := ids.GenerateTestShortID()

	keys := []ids.ID{
		NewModuleID(addr, "coin").Key(),
		NewModuleID(addr, "coin2").Key(),
		NewModuleID(otherAddr, "coin").Key(),
		// The length prefix keeps shifted boundaries from colliding.
		NewModuleID(addr, "co").Key(),
	}
	seen := make(map[ids.ID]struct{}, len(keys))
	for _, key := range keys {
		require.NotEqual(ids.Empty, key)
		_, ok := seen[key]
		require.False(ok)
		seen[key] = struct{}{}
	}
}

func TestModuleIDString(t *testing.T) {
	require := require.New(t)

	id := NewModuleID(FrameworkAddress, "validation")
	require.Contains(id.String(), "::validation")
}
