// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/secux-go/keyring"
)

type recordingRegistrar struct {
	calls int
	err   error
	last  struct {
		name          string
		account, addr uint32
	}
}

func (r *recordingRegistrar) Register(_ context.Context, name string, account, addr uint32) (*keyring.Account, error) {
	r.calls++
	r.last.name, r.last.account, r.last.addr = name, account, addr
	if r.err != nil {
		return nil, r.err
	}
	return &keyring.Account{Address: "ADDR1", Name: name}, nil
}

func TestForm_BlankNameDisablesSave(t *testing.T) {
	reg := &recordingRegistrar{}
	f := NewForm(reg, nil, nil)

	for _, name := range []string{"", " ", "\t\n "} {
		f.SetName(name)
		assert.False(t, f.IsNameValid(), "%q", name)
		assert.False(t, f.CanSave(), "%q", name)

		_, err := f.Save(context.Background())
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "name", ve.Field)
	}
	assert.Zero(t, reg.calls)
}

func TestForm_SaveSuccessCloses(t *testing.T) {
	reg := &recordingRegistrar{}
	closed := false
	f := NewForm(reg, func() { closed = true }, nil)

	f.SetName("savings")
	require.NoError(t, f.SetAccountIndex(2))
	require.NoError(t, f.SetAddressIndex(5))
	assert.True(t, f.CanSave())

	acc, err := f.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ADDR1", acc.Address)
	assert.True(t, closed)
	assert.NoError(t, f.Err())
	assert.False(t, f.Busy())

	assert.Equal(t, "savings", reg.last.name)
	assert.Equal(t, uint32(2), reg.last.account)
	assert.Equal(t, uint32(5), reg.last.addr)
}

func TestForm_SaveFailureKeepsErrorAndAllowsRetry(t *testing.T) {
	reg := &recordingRegistrar{err: errors.New("device unplugged")}
	closed := false
	f := NewForm(reg, func() { closed = true }, nil)
	f.SetName("savings")

	_, err := f.Save(context.Background())
	require.Error(t, err)
	assert.False(t, closed)
	assert.False(t, f.Busy())
	require.Error(t, f.Err())
	assert.Equal(t, "device unplugged", f.Err().Error())
	assert.True(t, f.CanSave())

	reg.err = nil
	_, err = f.Save(context.Background())
	require.NoError(t, err)
	assert.NoError(t, f.Err())
	assert.True(t, closed)
	assert.Equal(t, 2, reg.calls)
}

func TestForm_ThrowingDeviceLeavesKeyringUnmodified(t *testing.T) {
	ctx := context.Background()
	store := keyring.NewMemoryStore()
	r := NewRegistrar(store, getter(&stubDevice{err: errors.New("transport closed")}), genesis, nil)
	f := NewForm(r, nil, nil)
	f.SetName("main")

	_, err := f.Save(ctx)
	require.Error(t, err)
	assert.Equal(t, "transport closed", f.Err().Error())

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestForm_IndexRange(t *testing.T) {
	f := NewForm(&recordingRegistrar{}, nil, nil)
	assert.Error(t, f.SetAccountIndex(MaxIndex))
	assert.Error(t, f.SetAddressIndex(MaxIndex+1))
	assert.NoError(t, f.SetAddressIndex(MaxIndex-1))
}
