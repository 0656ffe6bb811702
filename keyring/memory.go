// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package keyring

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps accounts in memory only.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account), now: time.Now}
}

func (s *MemoryStore) AddHardware(_ context.Context, address, kind string, meta Meta) (*Account, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	acc := newAccount(address, kind, meta, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[address] = *acc
	return acc, nil
}

func (s *MemoryStore) Get(_ context.Context, address string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[address]
	if !ok {
		return nil, ErrNotFound
	}
	return &acc, nil
}

// List returns accounts ordered by creation time, then address.
func (s *MemoryStore) List(_ context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}

func (s *MemoryStore) Remove(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[address]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, address)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
