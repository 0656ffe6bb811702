// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package registry

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	genesis = "0x" + string(bytes.Repeat([]byte("11"), 32))
	block   = "0x" + string(bytes.Repeat([]byte("22"), 32))
)

func testPayload() *SignerPayload {
	return &SignerPayload{
		Address:            "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5",
		BlockHash:          block,
		BlockNumber:        "0x00000010",
		Era:                "0x0500",
		GenesisHash:        genesis,
		Method:             "0x0503aabb",
		Nonce:              "0x00000005",
		SpecVersion:        "0x00002328",
		Tip:                "0x00000000000000000000000000000064",
		TransactionVersion: "0x00000002",
		Version:            4,
	}
}

func expected(extra ...[]byte) []byte {
	var out []byte
	out = append(out, 0x05, 0x03, 0xaa, 0xbb) // method, no length prefix
	out = append(out, 0x05, 0x00)             // era
	out = append(out, 0x14)                   // compact nonce 5
	out = append(out, 0x91, 0x01)             // compact tip 100
	for _, e := range extra {
		out = append(out, e...)
	}
	out = append(out, 0x28, 0x23, 0x00, 0x00) // spec version 9000
	out = append(out, 0x02, 0x00, 0x00, 0x00) // tx version 2
	out = append(out, bytes.Repeat([]byte{0x11}, 32)...)
	out = append(out, bytes.Repeat([]byte{0x22}, 32)...)
	return out
}

func TestEncodePayload_DefaultExtensions(t *testing.T) {
	got, err := New("polkadot", nil).EncodePayload(testPayload())
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(expected()), hexutil.Encode(got))
}

func TestEncodePayload_ExplicitExtensions(t *testing.T) {
	p := testPayload()
	p.SignedExtensions = append([]string{"CheckNonZeroSender"}, DefaultExtensions...)

	got, err := New("polkadot", nil).EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, expected(), got)
}

func TestEncodePayload_Deterministic(t *testing.T) {
	r := New("polkadot", nil)
	a, err := r.EncodePayload(testPayload())
	require.NoError(t, err)
	b, err := r.EncodePayload(testPayload())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodePayload_AgenceOverride(t *testing.T) {
	p := testPayload()
	p.SignedExtensions = []string{
		"CheckSpecVersion", "CheckTxVersion", "CheckGenesis", "CheckMortality",
		"CheckNonce", "CheckWeight", "ChargeOrDelegateTxPayment",
	}
	p.Delegated = true

	got, err := New("agence", nil).EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, expected([]byte{0x01}), got)

	// other runtimes do not know the extension and skip it
	got, err = New("polkadot", nil).EncodePayload(p)
	require.NoError(t, err)
	want := expected()
	want = append(want[:7], want[9:]...) // drop the tip
	assert.Equal(t, want, got)
}

var assetHubExtensions = []string{
	"CheckNonZeroSender", "CheckSpecVersion", "CheckTxVersion", "CheckGenesis",
	"CheckMortality", "CheckNonce", "CheckWeight", "ChargeAssetTxPayment",
}

func TestEncodePayload_AssetHubNativeFee(t *testing.T) {
	p := testPayload()
	p.SignedExtensions = assetHubExtensions

	got, err := New("statemint", nil).EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(expected([]byte{0x00})), hexutil.Encode(got))
	assert.Len(t, got, 82)
}

func TestEncodePayload_AssetHubAssetFee(t *testing.T) {
	p := testPayload()
	p.SignedExtensions = assetHubExtensions
	p.AssetID = "0x01000000"

	got, err := New("statemine", nil).EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, expected([]byte{0x01, 0x01, 0x00, 0x00, 0x00}), got)

	p.AssetID = "0xzz"
	_, err = New("statemine", nil).EncodePayload(p)
	assert.ErrorContains(t, err, "assetId")
}

func TestEncodePayload_MetadataHash(t *testing.T) {
	p := testPayload()
	p.SignedExtensions = append(append([]string{}, assetHubExtensions...), "CheckMetadataHash")

	got, err := New("statemint", nil).EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, append(expected([]byte{0x00}, []byte{0x00}), 0x00), got)

	p.Mode = 1
	p.MetadataHash = "0x" + string(bytes.Repeat([]byte("33"), 32))
	got, err = New("statemint", nil).EncodePayload(p)
	require.NoError(t, err)
	want := expected([]byte{0x00}, []byte{0x01})
	want = append(want, 0x01)
	want = append(want, bytes.Repeat([]byte{0x33}, 32)...)
	assert.Equal(t, want, got)

	p.MetadataHash = "0x1234"
	_, err = New("statemint", nil).EncodePayload(p)
	assert.ErrorContains(t, err, "metadataHash")
}

func TestEncodePayload_NumberForms(t *testing.T) {
	p := testPayload()
	p.Nonce = "5"
	p.Tip = "0x64"
	p.SpecVersion = "9000"
	p.TransactionVersion = "0x2"

	got, err := New("polkadot", nil).EncodePayload(p)
	require.NoError(t, err)
	assert.Equal(t, expected(), got)
}

func TestEncodePayload_Errors(t *testing.T) {
	r := New("polkadot", nil)

	_, err := r.EncodePayload(nil)
	assert.Error(t, err)

	p := testPayload()
	p.Version = 3
	_, err = r.EncodePayload(p)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	p = testPayload()
	p.Method = "0503"
	_, err = r.EncodePayload(p)
	assert.Error(t, err)

	p = testPayload()
	p.GenesisHash = "0x1234"
	_, err = r.EncodePayload(p)
	assert.ErrorContains(t, err, "genesisHash")

	p = testPayload()
	p.SpecVersion = "0x0100000000"
	_, err = r.EncodePayload(p)
	assert.ErrorContains(t, err, "overflows")

	p = testPayload()
	p.Era = "0x"
	_, err = r.EncodePayload(p)
	assert.Error(t, err)

	p = testPayload()
	p.Nonce = "-1"
	_, err = r.EncodePayload(p)
	assert.Error(t, err)
}
