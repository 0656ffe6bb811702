// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package secux

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

const (
	insGetVersion = 0x00
	insGetAddress = 0x01
	insSign       = 0x02

	p1ShowAddress = 0x01
	p1SignInit    = 0x00
	p1SignAdd     = 0x01
	p1SignLast    = 0x02

	schemeEd25519 = 0x00

	chunkSize = 250
	hardened  = 0x80000000
	pubKeyLen = 32
	sigLen    = 65
)

// Profile selects the signing app and key space of one network.
type Profile struct {
	Name       string
	CLA        byte
	Slip44     uint32
	SS58Prefix uint16
}

// App talks to the signing app of a single network on a device. The
// transport is opened on first use and dropped after a transport failure, so
// a replugged device is picked up by the next call.
type App struct {
	admin   Admin
	index   int
	profile Profile

	mu        sync.Mutex
	transport Transport
}

var _ Device = (*App)(nil)

// NewApp returns an App for the device at deviceIndex. No device I/O happens
// until the first request.
func NewApp(admin Admin, deviceIndex int, profile Profile) *App {
	return &App{admin: admin, index: deviceIndex, profile: profile}
}

// Profile returns the network profile the app was created for.
func (a *App) Profile() Profile {
	return a.profile
}

// GetVersion returns the version of the signing app.
func (a *App) GetVersion() (*VersionResponse, error) {
	resp, err := a.exchange("version", insGetVersion, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	if len(resp) < 8 {
		return nil, &DeviceError{Op: "version", Err: fmt.Errorf("invalid version reply: %x", resp)}
	}

	return &VersionResponse{
		TestMode: resp[0] != 0,
		Major:    codec.Uint16(resp[1:3]),
		Minor:    codec.Uint16(resp[3:5]),
		Patch:    codec.Uint16(resp[5:7]),
		Locked:   resp[7] == 1,
	}, nil
}

// GetAddress implements Device. The address reported by the device is checked
// against the returned public key.
func (a *App) GetAddress(showOnDevice bool, accountOffset, addressOffset uint32) (*AddressResponse, error) {
	path, err := serializePath(a.profile.Slip44, accountOffset, addressOffset)
	if err != nil {
		return nil, err
	}

	data := make([]byte, len(path)+2)
	copy(data, path)
	binary.LittleEndian.PutUint16(data[len(path):], a.profile.SS58Prefix)

	var p1 byte
	if showOnDevice {
		p1 = p1ShowAddress
	}

	resp, err := a.exchange("get address", insGetAddress, p1, schemeEd25519, data)
	if err != nil {
		return nil, err
	}
	if len(resp) <= pubKeyLen {
		return nil, &DeviceError{Op: "get address", Err: fmt.Errorf("reply too short: %d bytes", len(resp))}
	}

	pubKey := append([]byte(nil), resp[:pubKeyLen]...)
	address := string(bytes.TrimRight(resp[pubKeyLen:], "\x00"))

	expected, err := EncodeSS58(pubKey, a.profile.SS58Prefix)
	if err != nil {
		return nil, &DeviceError{Op: "get address", Err: err}
	}
	if expected != address {
		return nil, &DeviceError{Op: "get address", Err: ErrAddressMismatch}
	}

	return &AddressResponse{PubKey: pubKey, Address: address}, nil
}

// Sign implements Device. The message is streamed to the device in chunks,
// the first one carrying the derivation path.
func (a *App) Sign(message []byte, accountOffset, addressOffset uint32) (*SignResponse, error) {
	if len(message) == 0 {
		return nil, ErrEmptyMessage
	}

	path, err := serializePath(a.profile.Slip44, accountOffset, addressOffset)
	if err != nil {
		return nil, err
	}

	chunks := [][]byte{path}
	for len(message) > 0 {
		n := chunkSize
		if n > len(message) {
			n = len(message)
		}
		chunks = append(chunks, message[:n])
		message = message[n:]
	}

	var resp []byte
	for i, chunk := range chunks {
		p1 := byte(p1SignAdd)
		switch {
		case i == 0:
			p1 = p1SignInit
		case i == len(chunks)-1:
			p1 = p1SignLast
		}

		resp, err = a.exchange("sign", insSign, p1, schemeEd25519, chunk)
		if err != nil {
			return nil, err
		}
	}

	if len(resp) < sigLen {
		return nil, &DeviceError{Op: "sign", Err: errors.New("reply lacks signature")}
	}
	return &SignResponse{Signature: append([]byte(nil), resp[:sigLen]...)}, nil
}

// Close releases the transport. The app reconnects on the next request.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.transport == nil {
		return nil
	}
	err := a.transport.Close()
	a.transport = nil
	return err
}

func (a *App) exchange(op string, ins, p1, p2 byte, data []byte) ([]byte, error) {
	if len(data) > 0xff {
		return nil, &DeviceError{Op: op, Err: fmt.Errorf("APDU data too long: %d bytes", len(data))}
	}

	command := make([]byte, 0, 5+len(data))
	command = append(command, a.profile.CLA, ins, p1, p2, byte(len(data)))
	command = append(command, data...)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.transport == nil {
		t, err := a.admin.Connect(a.index)
		if err != nil {
			return nil, &DeviceError{Op: op, Err: err}
		}
		a.transport = t
	}

	resp, err := a.transport.Exchange(command)
	if err != nil {
		log.Debugf("%s exchange failed, dropping transport: %v", op, err)
		_ = a.transport.Close()
		a.transport = nil
		return nil, &DeviceError{Op: op, Err: err}
	}
	if len(resp) < 2 {
		return nil, &DeviceError{Op: op, Err: fmt.Errorf("response too short: %d bytes", len(resp))}
	}

	status := codec.Uint16(resp[len(resp)-2:])
	if status != StatusOK {
		return nil, &DeviceError{Op: op, Code: status, Err: errors.New(StatusText(status))}
	}
	return resp[:len(resp)-2], nil
}

// serializePath encodes 44'/slip44'/account'/0'/address' for the device.
func serializePath(slip44, accountOffset, addressOffset uint32) ([]byte, error) {
	if accountOffset >= hardened || addressOffset >= hardened {
		return nil, fmt.Errorf("derivation offset out of range: %d/%d", accountOffset, addressOffset)
	}

	path := make([]byte, 20)
	for i, component := range []uint32{44, slip44, accountOffset, 0, addressOffset} {
		binary.LittleEndian.PutUint32(path[i*4:], component|hardened)
	}
	return path, nil
}
