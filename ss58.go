// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package secux

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const maxSS58Prefix = 16383

var (
	ss58Context = []byte("SS58PRE")

	errInvalidAddress  = errors.New("invalid ss58 address")
	errInvalidChecksum = errors.New("invalid ss58 checksum")
)

// EncodeSS58 returns the SS58 address of a 32 byte public key.
func EncodeSS58(pubKey []byte, prefix uint16) (string, error) {
	if len(pubKey) != pubKeyLen {
		return "", fmt.Errorf("invalid public key length: %d", len(pubKey))
	}
	if prefix > maxSS58Prefix {
		return "", fmt.Errorf("invalid ss58 prefix: %d", prefix)
	}

	data := append(ss58PrefixBytes(prefix), pubKey...)
	data = append(data, ss58Checksum(data)...)
	return base58.Encode(data), nil
}

// DecodeSS58 returns the public key and network prefix of an SS58 address.
func DecodeSS58(address string) ([]byte, uint16, error) {
	data, err := base58.Decode(address)
	if err != nil || len(data) < 2 {
		return nil, 0, errInvalidAddress
	}

	var (
		prefix    uint16
		prefixLen int
	)
	switch {
	case data[0] < 64:
		prefix, prefixLen = uint16(data[0]), 1
	case data[0] < 128:
		lower := uint16(data[0]&0x3f)<<2 | uint16(data[1])>>6
		upper := uint16(data[1] & 0x3f)
		prefix, prefixLen = lower|upper<<8, 2
	default:
		return nil, 0, errInvalidAddress
	}

	if len(data) != prefixLen+pubKeyLen+2 {
		return nil, 0, errInvalidAddress
	}

	body := data[:prefixLen+pubKeyLen]
	if !bytes.Equal(ss58Checksum(body), data[len(body):]) {
		return nil, 0, errInvalidChecksum
	}
	return append([]byte(nil), body[prefixLen:]...), prefix, nil
}

func ss58PrefixBytes(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	return []byte{
		byte((prefix&0xfc)>>2) | 0x40,
		byte(prefix>>8) | byte(prefix&0x03)<<6,
	}
}

func ss58Checksum(data []byte) []byte {
	sum := blake2b.Sum512(append(append([]byte(nil), ss58Context...), data...))
	return sum[:2]
}
