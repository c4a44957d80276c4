// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/log"

	"github.com/luxfi/movevm/module"
	"github.com/luxfi/movevm/types"
)

// testCodeStorage verifies modules straight off the view. Framework modules
// in these tests declare no dependencies.
type testCodeStorage struct {
	r       *module.Runtime
	view    types.StateView
	fetches int
}

func (s *testCodeStorage) FetchVerifiedModule(addr types.Address, name string) (*module.Module, error) {
	s.fetches++

	b, err := s.view.GetStateValue(types.NewModuleID(addr, name).Key())
	if err != nil || b == nil {
		return nil, err
	}
	entry, err := module.NewEntry(s.r, b)
	if err != nil {
		return nil, err
	}
	lvm, err := s.r.BuildLocallyVerifiedModule(entry.Compiled(), entry.Size(), entry.Hash())
	if err != nil {
		return nil, err
	}
	return s.r.BuildVerifiedModule(lvm, nil)
}

func publishFramework(t *testing.T, view *types.MemView, names []string) {
	t.Helper()
	for _, name := range names {
		publishModule(t, view, types.FrameworkAddress, name)
	}
}

func TestEnsureLoaded(t *testing.T) {
	require := require.New(t)

	r := module.NewRuntime(module.DefaultConfig(), nil)
	view := types.NewMemView()
	publishFramework(t, view, frameworkModules)

	storage := &testCodeStorage{r: r, view: view}
	preloader := NewFrameworkPreloader(log.NoLog{})

	// Cold: nothing is preloaded yet.
	markerKey := types.NewModuleID(types.FrameworkAddress, preloadMarker).Key()
	_, ok := preloader.Get(markerKey)
	require.False(ok)

	require.NoError(preloader.EnsureLoaded(view, storage))

	// Every framework module present in the snapshot is preloaded as
	// verified.
	for _, name := range frameworkModules {
		key := types.NewModuleID(types.FrameworkAddress, name).Key()
		entry, ok := preloader.Get(key)
		require.True(ok)
		require.True(entry.Verified())
	}
}

func TestEnsureLoadedWarmIsNoOp(t *testing.T) {
	require := require.New(t)

	r := module.NewRuntime(module.DefaultConfig(), nil)
	view := types.NewMemView()
	publishFramework(t, view, frameworkModules)

	storage := &testCodeStorage{r: r, view: view}
	preloader := NewFrameworkPreloader(log.NoLog{})

	require.NoError(preloader.EnsureLoaded(view, storage))
	fetches := storage.fetches
	require.NotZero(fetches)

	// The marker module is present, so a warm call does no work.
	require.NoError(preloader.EnsureLoaded(view, storage))
	require.Equal(fetches, storage.fetches)
}

func TestEnsureLoadedSkipsAbsentModules(t *testing.T) {
	require := require.New(t)

	r := module.NewRuntime(module.DefaultConfig(), nil)
	view := types.NewMemView()

	// Only a slice of the framework, including the marker, exists in this
	// snapshot.
	present := []string{"vector", "signer", preloadMarker}
	publishFramework(t, view, present)

	storage := &testCodeStorage{r: r, view: view}
	preloader := NewFrameworkPreloader(log.NoLog{})
	require.NoError(preloader.EnsureLoaded(view, storage))

	for _, name := range present {
		_, ok := preloader.Get(types.NewModuleID(types.FrameworkAddress, name).Key())
		require.True(ok)
	}
	_, ok := preloader.Get(types.NewModuleID(types.FrameworkAddress, "coin").Key())
	require.False(ok)
}

func TestEnsureLoadedRebuildsWithoutMarker(t *testing.T) {
	require := require.New(t)

	r := module.NewRuntime(module.DefaultConfig(), nil)
	view := types.NewMemView()
	publishFramework(t, view, []string{"vector", "signer"})

	storage := &testCodeStorage{r: r, view: view}
	preloader := NewFrameworkPreloader(log.NoLog{})

	// Without the marker the snapshot is never considered warm; each call
	// rebuilds.
	require.NoError(preloader.EnsureLoaded(view, storage))
	fetches := storage.fetches
	require.NoError(preloader.EnsureLoaded(view, storage))
	require.Equal(2*fetches, storage.fetches)
}

func TestEnsureLoadedStorageError(t *testing.T) {
	require := require.New(t)

	r := module.NewRuntime(module.DefaultConfig(), nil)
	storage := &testCodeStorage{r: r, view: types.NewMemView()}
	preloader := NewFrameworkPreloader(log.NoLog{})

	require.ErrorIs(preloader.EnsureLoaded(failingView{}, storage), types.ErrStorage)
}
