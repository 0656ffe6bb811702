// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package registry

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SignerPayload is the JSON form of a transaction waiting for a signature.
// Numbers and byte strings are 0x-prefixed hex, as produced by chain clients.
type SignerPayload struct {
	Address            string   `json:"address"`
	BlockHash          string   `json:"blockHash"`
	BlockNumber        string   `json:"blockNumber"`
	Era                string   `json:"era"`
	GenesisHash        string   `json:"genesisHash"`
	Method             string   `json:"method"`
	Nonce              string   `json:"nonce"`
	SignedExtensions   []string `json:"signedExtensions"`
	SpecVersion        string   `json:"specVersion"`
	Tip                string   `json:"tip"`
	TransactionVersion string   `json:"transactionVersion"`
	Version            int      `json:"version"`

	// AssetID is the SCALE encoded asset paying the fee. Empty means the
	// native token.
	AssetID string `json:"assetId,omitempty"`
	// Mode and MetadataHash feed CheckMetadataHash. Empty hash means none.
	Mode         uint8  `json:"mode,omitempty"`
	MetadataHash string `json:"metadataHash,omitempty"`

	// Delegated is only read by chains whose fee extension supports it.
	Delegated bool `json:"delegated,omitempty"`
}

// decodeNumber parses a hex (0x-prefixed) or decimal number.
func decodeNumber(field, s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		b, err := hexutil.Decode("0x" + digits)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
		}
		return new(big.Int).SetBytes(b), nil
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s %q", field, s)
	}
	return n, nil
}

func decodeU32(field, s string) (uint32, error) {
	n, err := decodeNumber(field, s)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() || n.Uint64() > 0xffffffff {
		return 0, fmt.Errorf("%s %s overflows u32", field, s)
	}
	return uint32(n.Uint64()), nil
}

func decodeBytes(field, s string) ([]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return b, nil
}

func decodeHash(field, s string) ([]byte, error) {
	b, err := decodeBytes(field, s)
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid %s: expected 32 bytes, got %d", field, len(b))
	}
	return b, nil
}
