//go:build !secux_mock
// +build !secux_mock

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package secux

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zondax/hid"
)

const (
	VendorSecuX          = 0x1915
	VendorLedger         = 0x2c97
	UsagePageLedgerNanoS = 0xffa0
)

// ReadTimeout bounds how long a single exchange waits for the device. Signing
// waits for the user to confirm on screen, so it is generous.
var ReadTimeout = 2 * time.Minute

type AdminHID struct{}

type TransportHID struct {
	device      *hid.Device
	readCo      *sync.Once
	readChannel chan []byte
	done        chan struct{}
	closeOnce   sync.Once
}

// list of Ledger product ids as well as their corresponding interfaces
var supportedLedgerProductID = map[uint8]int{
	0x40: 0, // Ledger Nano X
	0x10: 0, // Ledger Nano S
	0x50: 0, // Ledger Nano S Plus
	0x60: 0, // Ledger Stax
	0x70: 0, // Ledger Flex
}

func NewAdmin() Admin {
	return &AdminHID{}
}

// TransportSupported reports whether USB HID is available on this platform.
func TransportSupported() bool {
	return hid.Supported()
}

func (admin *AdminHID) ListDevices() ([]string, error) {
	devices := hid.Enumerate(0, 0)
	if len(devices) == 0 {
		log.Debug("No devices. Device LOCKED OR other program may have control of device.")
	}

	var paths []string
	for _, d := range devices {
		logDeviceInfo(d)
		if isSupportedDevice(d) {
			paths = append(paths, fmt.Sprintf("%s (%s %s)", d.Path, d.Manufacturer, d.Product))
		}
	}

	return paths, nil
}

func logDeviceInfo(d hid.DeviceInfo) {
	log.Debugf("============ %s", d.Path)
	log.Debugf("VendorID      : %x", d.VendorID)
	log.Debugf("ProductID     : %x", d.ProductID)
	log.Debugf("Release       : %x", d.Release)
	log.Debugf("Serial        : %x", d.Serial)
	log.Debugf("Manufacturer  : %s", d.Manufacturer)
	log.Debugf("Product       : %s", d.Product)
	log.Debugf("UsagePage     : %x", d.UsagePage)
	log.Debugf("Usage         : %x", d.Usage)
}

func isSupportedDevice(d hid.DeviceInfo) bool {
	switch d.VendorID {
	case VendorSecuX:
		return true
	case VendorLedger:
		// Workarounds for possible empty usage pages
		productIDMM := uint8(d.ProductID >> 8)
		interfaceID, supported := supportedLedgerProductID[productIDMM]
		return d.UsagePage == UsagePageLedgerNanoS || (supported && interfaceID == d.Interface)
	default:
		return false
	}
}

func (admin *AdminHID) CountDevices() int {
	count := 0
	for _, d := range hid.Enumerate(0, 0) {
		if isSupportedDevice(d) {
			count++
		}
	}
	return count
}

func (admin *AdminHID) Connect(deviceIndex int) (Transport, error) {
	currentIndex := 0
	for _, d := range hid.Enumerate(0, 0) {
		if !isSupportedDevice(d) {
			continue
		}
		if currentIndex == deviceIndex {
			device, err := d.Open()
			if err != nil {
				return nil, err
			}
			log.Debugf("opened %s %s at %s", d.Manufacturer, d.Product, d.Path)
			return &TransportHID{
				device:      device,
				readCo:      &sync.Once{},
				readChannel: make(chan []byte),
				done:        make(chan struct{}),
			}, nil
		}
		currentIndex++
	}

	return nil, ErrDeviceNotFound
}

func (t *TransportHID) write(buffer []byte) (int, error) {
	totalBytes := len(buffer)
	totalWrittenBytes := 0
	for totalBytes > totalWrittenBytes {
		writtenBytes, err := t.device.Write(buffer)
		if err != nil {
			return totalWrittenBytes, err
		}
		totalWrittenBytes += writtenBytes
	}
	return totalWrittenBytes, nil
}

func (t *TransportHID) Read() <-chan []byte {
	t.readCo.Do(func() {
		go t.readThread()
	})
	return t.readChannel
}

func (t *TransportHID) readThread() {
	defer close(t.readChannel)
	for {
		buffer := make([]byte, PacketSize)
		readBytes, err := t.device.Read(buffer)
		if err != nil {
			return
		}
		select {
		case t.readChannel <- buffer[:readBytes]:
		case <-t.done:
			return
		}
	}
}

func (t *TransportHID) Exchange(command []byte) ([]byte, error) {
	if len(command) < 5 {
		return nil, errors.New("APDU commands should not be smaller than 5")
	}

	log.Debugf("[HID] => %x", command)

	chunks, err := WrapCommandAPDU(Channel, command, PacketSize)
	if err != nil {
		return nil, err
	}
	for _, chunk := range chunks {
		if _, err := t.write(chunk); err != nil {
			return nil, err
		}
	}

	response, err := UnwrapResponseAPDU(Channel, t.Read(), PacketSize, ReadTimeout)
	if err != nil {
		return nil, err
	}

	log.Debugf("[HID] <= %x", response)

	if len(response) < 2 {
		return nil, fmt.Errorf("response too short: %d bytes", len(response))
	}

	return response, nil
}

func (t *TransportHID) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return t.device.Close()
}
