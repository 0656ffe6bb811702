// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package secux

import (
	"crypto/ed25519"
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Emulator is an in-process Transport that behaves like the signing app.
// Keys are derived from the seed and the derivation path, so results are
// stable across runs.
type Emulator struct {
	// CLA the emulated app answers to. Zero accepts any class.
	CLA byte
	// Locked makes every request fail with StatusDeviceLocked.
	Locked bool
	// Reject makes confirmations on screen fail with StatusUserRejected.
	Reject bool

	seed []byte

	mu      sync.Mutex
	path    []byte
	message []byte
}

var _ Transport = (*Emulator)(nil)

// NewEmulator returns an emulator keyed by seed. A nil seed uses a fixed one.
func NewEmulator(seed []byte) *Emulator {
	if seed == nil {
		seed = []byte("secux emulator")
	}
	return &Emulator{seed: seed}
}

// KeyAt returns the key the emulator uses at the given offsets.
func (e *Emulator) KeyAt(slip44, accountOffset, addressOffset uint32) (ed25519.PrivateKey, error) {
	path, err := serializePath(slip44, accountOffset, addressOffset)
	if err != nil {
		return nil, err
	}
	return e.key(path), nil
}

func (e *Emulator) key(path []byte) ed25519.PrivateKey {
	h := blake2b.Sum256(append(append([]byte(nil), e.seed...), path...))
	return ed25519.NewKeyFromSeed(h[:])
}

func (e *Emulator) Exchange(command []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(command) < 5 || int(command[4]) != len(command)-5 {
		return status(StatusWrongLength), nil
	}
	if e.Locked {
		return status(StatusDeviceLocked), nil
	}
	if e.CLA != 0 && command[0] != e.CLA {
		return status(StatusAppNotOpen), nil
	}

	ins, p1, data := command[1], command[2], command[5:]
	switch ins {
	case insGetVersion:
		return append([]byte{0, 0, 1, 0, 0, 0, 0, 0}, status(StatusOK)...), nil
	case insGetAddress:
		return e.getAddress(p1, data), nil
	case insSign:
		return e.sign(p1, data), nil
	default:
		return status(StatusInsNotSupported), nil
	}
}

func (e *Emulator) getAddress(p1 byte, data []byte) []byte {
	if len(data) != 22 {
		return status(StatusDataInvalid)
	}
	if p1 == p1ShowAddress && e.Reject {
		return status(StatusUserRejected)
	}

	pub := e.key(data[:20]).Public().(ed25519.PublicKey)
	address, err := EncodeSS58(pub, binary.LittleEndian.Uint16(data[20:]))
	if err != nil {
		return status(StatusDataInvalid)
	}

	resp := append([]byte(nil), pub...)
	resp = append(resp, address...)
	return append(resp, status(StatusOK)...)
}

func (e *Emulator) sign(p1 byte, data []byte) []byte {
	switch p1 {
	case p1SignInit:
		if len(data) != 20 {
			return status(StatusDataInvalid)
		}
		e.path = append([]byte(nil), data...)
		e.message = nil
		return status(StatusOK)
	case p1SignAdd, p1SignLast:
		if e.path == nil {
			return status(StatusDataInvalid)
		}
		e.message = append(e.message, data...)
		if p1 == p1SignAdd {
			return status(StatusOK)
		}
	default:
		return status(StatusInvalidP1P2)
	}

	path, message := e.path, e.message
	e.path, e.message = nil, nil
	if e.Reject {
		return status(StatusUserRejected)
	}

	resp := append([]byte{schemeEd25519}, ed25519.Sign(e.key(path), message)...)
	return append(resp, status(StatusOK)...)
}

func (e *Emulator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.path, e.message = nil, nil
	return nil
}

func status(code uint16) []byte {
	return []byte{byte(code >> 8), byte(code)}
}
