// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package keyring stores the accounts known to the wallet. Hardware accounts
// keep no key material, only the derivation needed to find the key on the
// device again.
package keyring

import (
	"context"
	"errors"
	"time"
)

// KindSecuX marks accounts backed by a SecuX device.
const KindSecuX = "SecuX"

var (
	ErrNotFound     = errors.New("account not found")
	ErrEmptyAddress = errors.New("empty address")
)

// Meta is the metadata stored with a hardware account.
type Meta struct {
	AccountOffset uint32
	AddressOffset uint32
	GenesisHash   string
	Name          string
}

// Account is a stored hardware account.
type Account struct {
	Address       string
	Kind          string
	Name          string
	AccountOffset uint32
	AddressOffset uint32
	GenesisHash   string
	CreatedAt     time.Time
}

// Store persists accounts. Adding an address that already exists replaces it.
type Store interface {
	AddHardware(ctx context.Context, address, kind string, meta Meta) (*Account, error)
	Get(ctx context.Context, address string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Remove(ctx context.Context, address string) error
	Close() error
}

func newAccount(address, kind string, meta Meta, now time.Time) *Account {
	return &Account{
		Address:       address,
		Kind:          kind,
		Name:          meta.Name,
		AccountOffset: meta.AccountOffset,
		AddressOffset: meta.AddressOffset,
		GenesisHash:   meta.GenesisHash,
		CreatedAt:     now.UTC(),
	}
}
