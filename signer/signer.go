// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package signer signs extrinsic payloads with the hardware device.
package signer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	secux "github.com/luxfi/secux-go"
	"github.com/luxfi/secux-go/registry"
)

// Result is returned for every signed payload. IDs are unique per Factory and
// increase with every successful signature.
type Result struct {
	ID        uint64 `json:"id"`
	Signature string `json:"signature"`
}

// Factory creates signers sharing one registry, one device source and one
// request counter.
type Factory struct {
	registry registry.Registry
	device   secux.DeviceGetter
	log      *zap.Logger

	nextID atomic.Uint64
}

func NewFactory(reg registry.Registry, device secux.DeviceGetter, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{registry: reg, device: device, log: logger}
}

// New returns a signer for the account at the given derivation offsets.
func (f *Factory) New(accountOffset, addressOffset uint32) *Signer {
	return &Signer{factory: f, accountOffset: accountOffset, addressOffset: addressOffset}
}

// Signer signs payloads for one hardware account.
type Signer struct {
	factory       *Factory
	accountOffset uint32
	addressOffset uint32
}

// SignPayload encodes the payload and has the device sign it. Nothing is
// retried; a failed signature does not consume an id.
func (s *Signer) SignPayload(ctx context.Context, payload *registry.SignerPayload) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.factory.registry.EncodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	device, err := s.factory.device()
	if err != nil {
		return nil, err
	}

	resp, err := device.Sign(data, s.accountOffset, s.addressOffset)
	if err != nil {
		s.factory.log.Warn("device signing failed",
			zap.Uint32("account", s.accountOffset),
			zap.Uint32("index", s.addressOffset),
			zap.Error(err))
		return nil, err
	}

	id := s.factory.nextID.Add(1)
	s.factory.log.Debug("payload signed",
		zap.Uint64("id", id),
		zap.Int("length", len(data)))

	return &Result{ID: id, Signature: hexutil.Encode(resp.Signature)}, nil
}
