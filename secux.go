// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package secux

// Admin enumerates and connects to hardware signing devices.
type Admin interface {
	CountDevices() int
	ListDevices() ([]string, error)
	Connect(deviceIndex int) (Transport, error)
}

// Transport exchanges raw APDU commands with a connected device.
type Transport interface {
	Exchange(command []byte) ([]byte, error)
	Close() error
}

// Device is the signing capability exposed by a hardware wallet app.
type Device interface {
	// GetAddress returns the address derived at the given offsets. When
	// showOnDevice is set the device asks the user to confirm it on screen.
	GetAddress(showOnDevice bool, accountOffset, addressOffset uint32) (*AddressResponse, error)
	// Sign has the device sign message with the key at the given offsets.
	Sign(message []byte, accountOffset, addressOffset uint32) (*SignResponse, error)
	Close() error
}

// DeviceGetter returns the device to talk to, creating it when needed.
type DeviceGetter func() (Device, error)

// AddressResponse is returned by Device.GetAddress.
type AddressResponse struct {
	PubKey  []byte
	Address string
}

// SignResponse is returned by Device.Sign. Signature carries the scheme byte
// followed by the raw signature.
type SignResponse struct {
	Signature []byte
}

// VersionResponse describes the signing app running on the device.
type VersionResponse struct {
	TestMode bool
	Major    uint16
	Minor    uint16
	Patch    uint16
	Locked   bool
}
