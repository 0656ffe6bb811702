// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package accounts registers hardware device accounts in the keyring.
package accounts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	secux "github.com/luxfi/secux-go"
	"github.com/luxfi/secux-go/keyring"
)

// MaxIndex bounds both derivation offsets offered for registration.
const MaxIndex = 20

// ValidationError is returned for user input that is rejected before the
// device is contacted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DefaultName is the account name used when none is given.
func DefaultName(accountOffset, addressOffset uint32) string {
	return fmt.Sprintf("secux %d/%d", accountOffset, addressOffset)
}

// Registrar queries the device for addresses and stores them.
type Registrar struct {
	store       keyring.Store
	device      secux.DeviceGetter
	genesisHash string
	log         *zap.Logger
}

func NewRegistrar(store keyring.Store, device secux.DeviceGetter, genesisHash string, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{store: store, device: device, genesisHash: genesisHash, log: logger}
}

// Register asks the device for the address at the given offsets, without
// confirmation on screen, and adds it to the keyring. Device errors are
// returned as is and leave the keyring untouched.
func (r *Registrar) Register(ctx context.Context, name string, accountOffset, addressOffset uint32) (*keyring.Account, error) {
	if err := validateIndex("account index", accountOffset); err != nil {
		return nil, err
	}
	if err := validateIndex("address index", addressOffset); err != nil {
		return nil, err
	}

	device, err := r.device()
	if err != nil {
		return nil, err
	}

	resp, err := device.GetAddress(false, accountOffset, addressOffset)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = DefaultName(accountOffset, addressOffset)
	}

	acc, err := r.store.AddHardware(ctx, resp.Address, keyring.KindSecuX, keyring.Meta{
		AccountOffset: accountOffset,
		AddressOffset: addressOffset,
		GenesisHash:   r.genesisHash,
		Name:          name,
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("hardware account added",
		zap.String("address", acc.Address),
		zap.Uint32("account", accountOffset),
		zap.Uint32("index", addressOffset))
	return acc, nil
}

func validateIndex(field string, v uint32) error {
	if v >= MaxIndex {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%d is not below %d", v, MaxIndex)}
	}
	return nil
}
