// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/luxfi/secux-go/keyring"
)

// Option is one selectable derivation index.
type Option struct {
	Text  string
	Value uint32
}

// IndexOptions lists the selectable indexes, labelled with format.
func IndexOptions(format string) []Option {
	out := make([]Option, MaxIndex)
	for i := range out {
		out[i] = Option{Text: fmt.Sprintf(format, i), Value: uint32(i)}
	}
	return out
}

// Registerer is implemented by Registrar.
type Registerer interface {
	Register(ctx context.Context, name string, accountOffset, addressOffset uint32) (*keyring.Account, error)
}

// Form holds the state of the "add account" dialog.
type Form struct {
	registrar Registerer
	onClose   func()
	log       *zap.Logger

	mu           sync.Mutex
	name         string
	isNameValid  bool
	accountIndex uint32
	addressIndex uint32
	busy         bool
	err          error
}

func NewForm(registrar Registerer, onClose func(), logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onClose == nil {
		onClose = func() {}
	}
	return &Form{registrar: registrar, onClose: onClose, log: logger}
}

// SetName updates the name; a name is valid when it is not blank.
func (f *Form) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = name
	f.isNameValid = strings.TrimSpace(name) != ""
}

func (f *Form) SetAccountIndex(v uint32) error {
	if err := validateIndex("account index", v); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountIndex = v
	return nil
}

func (f *Form) SetAddressIndex(v uint32) error {
	if err := validateIndex("address index", v); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addressIndex = v
	return nil
}

func (f *Form) IsNameValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isNameValid
}

// CanSave reports whether the save action is enabled.
func (f *Form) CanSave() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isNameValid && !f.busy
}

func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Err returns the error of the last save, if it failed.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Save registers the account. The form closes on success; on failure the
// error is kept for display and the form can be submitted again.
func (f *Form) Save(ctx context.Context) (*keyring.Account, error) {
	f.mu.Lock()
	if !f.isNameValid {
		f.mu.Unlock()
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if f.busy {
		f.mu.Unlock()
		return nil, &ValidationError{Field: "form", Reason: "save already in progress"}
	}
	f.busy = true
	f.err = nil
	name, acc, addr := f.name, f.accountIndex, f.addressIndex
	f.mu.Unlock()

	account, err := f.registrar.Register(ctx, name, acc, addr)

	f.mu.Lock()
	f.busy = false
	f.err = err
	f.mu.Unlock()

	if err != nil {
		f.log.Error("adding hardware account failed", zap.Error(err))
		return nil, err
	}

	f.onClose()
	return account, nil
}
