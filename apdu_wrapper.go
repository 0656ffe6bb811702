// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Forked from github.com/zondax/ledger-go
// Licensed under the Apache License, Version 2.0

package secux

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	// Channel is the HID channel id used for every exchange.
	Channel = 0x0101
	// PacketSize is the size of one HID report.
	PacketSize = 64

	tagAPDU = 0x05
)

var codec = binary.BigEndian

var (
	errPacketSize      = errors.New("packet size must be at least 8")
	errCommandTooLarge = errors.New("command exceeds 65535 bytes")
	errInvalidChannel  = errors.New("invalid channel")
	errInvalidTag      = errors.New("invalid tag")
	errWrongSequence   = errors.New("wrong sequence index")
	errReadClosed      = errors.New("read channel closed")
)

// serializePacket fills one HID packet. The first packet of a command carries
// the total command length right after the header.
func serializePacket(channel uint16, command []byte, packetSize int, sequenceIdx uint16) ([]byte, int) {
	headerOffset := 5

	packet := make([]byte, packetSize)
	codec.PutUint16(packet[0:2], channel)
	packet[2] = tagAPDU
	codec.PutUint16(packet[3:5], sequenceIdx)

	if sequenceIdx == 0 {
		codec.PutUint16(packet[5:7], uint16(len(command)))
		headerOffset += 2
	}

	n := copy(packet[headerOffset:], command)
	return packet, n
}

// WrapCommandAPDU turns the command into a sequence of packetSize byte packets for HID transport
func WrapCommandAPDU(channel uint16, command []byte, packetSize int) ([][]byte, error) {
	if packetSize < 8 {
		return nil, errPacketSize
	}
	if len(command) > 0xffff {
		return nil, errCommandTooLarge
	}

	var chunks [][]byte
	for seq := uint16(0); ; seq++ {
		packet, n := serializePacket(channel, command, packetSize, seq)
		chunks = append(chunks, packet)
		command = command[n:]
		if len(command) == 0 {
			return chunks, nil
		}
	}
}

// deserializePacket validates the packet header and returns its payload. For
// the first packet it also returns the total response length.
func deserializePacket(channel uint16, packet []byte, sequenceIdx uint16) ([]byte, uint16, error) {
	headerOffset := 5
	if sequenceIdx == 0 {
		headerOffset += 2
	}
	if len(packet) < headerOffset {
		return nil, 0, fmt.Errorf("packet too short: %d bytes", len(packet))
	}

	if codec.Uint16(packet[0:2]) != channel {
		return nil, 0, errInvalidChannel
	}
	if packet[2] != tagAPDU {
		return nil, 0, errInvalidTag
	}
	if codec.Uint16(packet[3:5]) != sequenceIdx {
		return nil, 0, errWrongSequence
	}

	var total uint16
	if sequenceIdx == 0 {
		total = codec.Uint16(packet[5:7])
	}
	return packet[headerOffset:], total, nil
}

// UnwrapResponseAPDU reads packets from pipe until a full response has been
// assembled. Padding past the announced length is dropped.
func UnwrapResponseAPDU(channel uint16, pipe <-chan []byte, packetSize int, timeout time.Duration) ([]byte, error) {
	if packetSize < 8 {
		return nil, errPacketSize
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var (
		response []byte
		total    uint16
	)
	for seq := uint16(0); ; seq++ {
		var packet []byte
		select {
		case buffer, ok := <-pipe:
			if !ok {
				return nil, errReadClosed
			}
			packet = buffer
		case <-timer.C:
			return nil, ErrTimeout
		}

		chunk, length, err := deserializePacket(channel, packet, seq)
		if err != nil {
			return nil, err
		}
		if seq == 0 {
			total = length
		}

		response = append(response, chunk...)
		if len(response) >= int(total) {
			return response[:total], nil
		}
	}
}
