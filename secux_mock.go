//go:build secux_mock
// +build secux_mock

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package secux

// AdminMock serves a single in-process Emulator instead of USB devices.
type AdminMock struct {
	emulator *Emulator
}

func NewAdmin() Admin {
	return &AdminMock{emulator: NewEmulator(nil)}
}

// TransportSupported always holds for the emulator.
func TransportSupported() bool {
	return true
}

func (admin *AdminMock) CountDevices() int {
	return 1
}

func (admin *AdminMock) ListDevices() ([]string, error) {
	return []string{"mock"}, nil
}

func (admin *AdminMock) Connect(deviceIndex int) (Transport, error) {
	if deviceIndex != 0 {
		return nil, ErrDeviceNotFound
	}
	return admin.emulator, nil
}
