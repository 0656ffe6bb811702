// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package secux

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(packets [][]byte) <-chan []byte {
	pipe := make(chan []byte, len(packets))
	for _, p := range packets {
		pipe <- p
	}
	close(pipe)
	return pipe
}

func TestWrapCommandAPDU_SinglePacket(t *testing.T) {
	command := []byte{0x90, 0x00, 0x00, 0x00, 0x00}

	chunks, err := WrapCommandAPDU(Channel, command, PacketSize)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	packet := chunks[0]
	assert.Len(t, packet, PacketSize)
	assert.Equal(t, []byte{0x01, 0x01, 0x05, 0x00, 0x00, 0x00, 0x05}, packet[:7])
	assert.Equal(t, command, packet[7:12])
	assert.Equal(t, make([]byte, PacketSize-12), packet[12:])
}

func TestWrapCommandAPDU_MultiplePackets(t *testing.T) {
	command := bytes.Repeat([]byte{0xaa}, 200)

	chunks, err := WrapCommandAPDU(Channel, command, PacketSize)
	require.NoError(t, err)
	// 57 bytes in the first packet, 59 in each following one
	require.Len(t, chunks, 4)

	for i, chunk := range chunks {
		assert.Equal(t, uint16(Channel), codec.Uint16(chunk[0:2]))
		assert.Equal(t, byte(tagAPDU), chunk[2])
		assert.Equal(t, uint16(i), codec.Uint16(chunk[3:5]))
	}
	assert.Equal(t, uint16(200), codec.Uint16(chunks[0][5:7]))
}

func TestWrapCommandAPDU_Errors(t *testing.T) {
	_, err := WrapCommandAPDU(Channel, []byte{1}, 4)
	assert.ErrorIs(t, err, errPacketSize)

	_, err = WrapCommandAPDU(Channel, make([]byte, 0x10000), PacketSize)
	assert.ErrorIs(t, err, errCommandTooLarge)
}

func TestUnwrapResponseAPDU_RoundTrip(t *testing.T) {
	for _, size := range []int{2, 57, 58, 200, 1000} {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i + 1)
		}

		chunks, err := WrapCommandAPDU(Channel, payload, PacketSize)
		require.NoError(t, err)

		got, err := UnwrapResponseAPDU(Channel, feed(chunks), PacketSize, time.Second)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, payload, got, "size %d", size)
	}
}

func TestUnwrapResponseAPDU_Errors(t *testing.T) {
	chunks, err := WrapCommandAPDU(Channel, bytes.Repeat([]byte{1}, 100), PacketSize)
	require.NoError(t, err)

	_, err = UnwrapResponseAPDU(0x0202, feed(chunks), PacketSize, time.Second)
	assert.ErrorIs(t, err, errInvalidChannel)

	_, err = UnwrapResponseAPDU(Channel, feed(chunks[1:]), PacketSize, time.Second)
	assert.ErrorIs(t, err, errWrongSequence)

	_, err = UnwrapResponseAPDU(Channel, feed(chunks[:1]), PacketSize, time.Second)
	assert.ErrorIs(t, err, errReadClosed)

	bad := append([]byte(nil), chunks[0]...)
	bad[2] = 0x02
	_, err = UnwrapResponseAPDU(Channel, feed([][]byte{bad}), PacketSize, time.Second)
	assert.ErrorIs(t, err, errInvalidTag)

	_, err = UnwrapResponseAPDU(Channel, make(chan []byte), PacketSize, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}
