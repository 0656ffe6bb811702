// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package secux

import (
	"errors"
	"fmt"
)

// Status words returned by the signing app.
const (
	StatusOK               uint16 = 0x9000
	StatusWrongLength      uint16 = 0x6700
	StatusSecurityStatus   uint16 = 0x6982
	StatusDataInvalid      uint16 = 0x6984
	StatusUserRejected     uint16 = 0x6986
	StatusBadKeyHandle     uint16 = 0x6a80
	StatusInvalidP1P2      uint16 = 0x6b00
	StatusInsNotSupported  uint16 = 0x6d00
	StatusAppNotOpen       uint16 = 0x6e00
	StatusUnknown          uint16 = 0x6f00
	StatusSignVerifyError  uint16 = 0x6f01
	StatusDeviceLocked     uint16 = 0x5515
	StatusExecutionFailure uint16 = 0x6400
)

var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrTimeout         = errors.New("timeout reading from device")
	ErrAddressMismatch = errors.New("device address does not match its public key")
	ErrEmptyMessage    = errors.New("nothing to sign")
)

var statusDescriptions = map[uint16]string{
	StatusWrongLength:      "wrong length",
	StatusSecurityStatus:   "security condition not satisfied",
	StatusDataInvalid:      "data is invalid",
	StatusUserRejected:     "transaction rejected",
	StatusBadKeyHandle:     "bad key handle",
	StatusInvalidP1P2:      "invalid P1/P2",
	StatusInsNotSupported:  "instruction not supported",
	StatusAppNotOpen:       "app does not seem to be open",
	StatusUnknown:          "unknown error",
	StatusSignVerifyError:  "sign/verify error",
	StatusDeviceLocked:     "device is locked",
	StatusExecutionFailure: "execution error",
}

// StatusText describes a status word.
func StatusText(code uint16) string {
	if s, ok := statusDescriptions[code]; ok {
		return s
	}
	return fmt.Sprintf("unexpected status 0x%04x", code)
}

// DeviceError is returned when the device is unreachable or refuses an
// operation. Code is zero for transport level failures.
type DeviceError struct {
	Op   string
	Code uint16
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("secux %s: %s (0x%04x)", e.Op, StatusText(e.Code), e.Code)
	}
	return fmt.Sprintf("secux %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// IsUserRejected reports whether err is a rejection by the user on the device.
func IsUserRejected(err error) bool {
	var de *DeviceError
	return errors.As(err, &de) && de.Code == StatusUserRejected
}
