// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package keyring

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	mem := NewMemoryStore()
	mem.now = (&clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}).now

	sqlStore, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "keyring.db"), nil)
	require.NoError(t, err)
	sqlStore.now = (&clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}).now
	t.Cleanup(func() { _ = sqlStore.Close() })

	return map[string]Store{"memory": mem, "sqlite": sqlStore}
}

func TestStore_AddAndGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			meta := Meta{AccountOffset: 1, AddressOffset: 2, GenesisHash: "0xabc", Name: "savings"}

			added, err := s.AddHardware(ctx, "ADDR1", KindSecuX, meta)
			require.NoError(t, err)
			assert.Equal(t, "ADDR1", added.Address)

			got, err := s.Get(ctx, "ADDR1")
			require.NoError(t, err)
			assert.Equal(t, KindSecuX, got.Kind)
			assert.Equal(t, "savings", got.Name)
			assert.Equal(t, uint32(1), got.AccountOffset)
			assert.Equal(t, uint32(2), got.AddressOffset)
			assert.Equal(t, "0xabc", got.GenesisHash)
			assert.True(t, added.CreatedAt.Equal(got.CreatedAt))

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_AddReplacesExisting(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddHardware(ctx, "ADDR1", KindSecuX, Meta{Name: "old"})
			require.NoError(t, err)
			_, err = s.AddHardware(ctx, "ADDR1", KindSecuX, Meta{Name: "new", AddressOffset: 4})
			require.NoError(t, err)

			all, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "new", all[0].Name)
			assert.Equal(t, uint32(4), all[0].AddressOffset)
		})
	}
}

func TestStore_ListOrderAndRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			all, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)

			for _, addr := range []string{"C", "A", "B"} {
				_, err := s.AddHardware(ctx, addr, KindSecuX, Meta{})
				require.NoError(t, err)
			}

			all, err = s.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"C", "A", "B"}, []string{all[0].Address, all[1].Address, all[2].Address})

			require.NoError(t, s.Remove(ctx, "A"))
			assert.ErrorIs(t, s.Remove(ctx, "A"), ErrNotFound)

			all, err = s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestStore_RejectsEmptyAddress(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddHardware(ctx, "", KindSecuX, Meta{})
			assert.ErrorIs(t, err, ErrEmptyAddress)
		})
	}
}

func TestOpenSQLite_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keyring.db")

	s, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	_, err = s.AddHardware(ctx, "ADDR1", KindSecuX, Meta{Name: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "ADDR1")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name)
}
