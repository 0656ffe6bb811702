// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package registry encodes signer payloads into the bytes a device signs.
// Which fields are part of the payload depends on the signed extensions the
// runtime declares; chains can override single extensions.
package registry

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"go.uber.org/zap"
)

// PayloadVersion is the only extrinsic payload version supported.
const PayloadVersion = 4

var ErrUnsupportedVersion = errors.New("unsupported extrinsic payload version")

// Registry turns signer payloads into their canonical encoding.
type Registry interface {
	EncodePayload(p *SignerPayload) ([]byte, error)
}

type field int

const (
	fieldEra field = iota
	fieldNonce
	fieldTip
	fieldDelegated
	fieldSpecVersion
	fieldTxVersion
	fieldGenesisHash
	fieldBlockHash
	fieldAssetID
	fieldMetadataMode
	fieldMetadataHash
)

// extension lists the fields a signed extension adds to the extrinsic and to
// the additional signed data.
type extension struct {
	Extrinsic  []field
	Additional []field
}

// DefaultExtensions is used when a payload does not name its extensions.
var DefaultExtensions = []string{
	"CheckSpecVersion",
	"CheckTxVersion",
	"CheckGenesis",
	"CheckMortality",
	"CheckNonce",
	"CheckWeight",
	"ChargeTransactionPayment",
}

var knownExtensions = map[string]extension{
	"CheckNonZeroSender":       {},
	"CheckSpecVersion":         {Additional: []field{fieldSpecVersion}},
	"CheckTxVersion":           {Additional: []field{fieldTxVersion}},
	"CheckGenesis":             {Additional: []field{fieldGenesisHash}},
	"CheckMortality":           {Extrinsic: []field{fieldEra}, Additional: []field{fieldBlockHash}},
	"CheckEra":                 {Extrinsic: []field{fieldEra}, Additional: []field{fieldBlockHash}},
	"CheckNonce":               {Extrinsic: []field{fieldNonce}},
	"CheckWeight":              {},
	"ChargeTransactionPayment": {Extrinsic: []field{fieldTip}},
	"ChargeAssetTxPayment":     {Extrinsic: []field{fieldTip, fieldAssetID}},
	"CheckMetadataHash":        {Extrinsic: []field{fieldMetadataMode}, Additional: []field{fieldMetadataHash}},
	"PrevalidateAttests":       {},
}

// chainOverrides holds per runtime extension definitions, keyed by spec name.
var chainOverrides = map[string]map[string]extension{
	"agence": {
		"ChargeOrDelegateTxPayment": {Extrinsic: []field{fieldTip, fieldDelegated}},
	},
}

type registry struct {
	specName   string
	extensions map[string]extension
	log        *zap.Logger
}

// New returns the registry for the runtime with the given spec name.
func New(specName string, logger *zap.Logger) Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	exts := make(map[string]extension, len(knownExtensions))
	for name, ext := range knownExtensions {
		exts[name] = ext
	}
	for name, ext := range chainOverrides[specName] {
		exts[name] = ext
	}

	return &registry{specName: specName, extensions: exts, log: logger}
}

// EncodePayload returns the bare method followed by the extrinsic fields and
// the additional signed fields of every extension, in extension order.
func (r *registry) EncodePayload(p *SignerPayload) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil payload")
	}
	if p.Version != PayloadVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}

	method, err := decodeBytes("method", p.Method)
	if err != nil {
		return nil, err
	}

	names := p.SignedExtensions
	if len(names) == 0 {
		names = DefaultExtensions
	}
	exts := make([]extension, 0, len(names))
	for _, name := range names {
		ext, ok := r.extensions[name]
		if !ok {
			r.log.Warn("unknown signed extension, treating as empty",
				zap.String("extension", name), zap.String("spec", r.specName))
		}
		exts = append(exts, ext)
	}

	var buf bytes.Buffer
	enc := scale.NewEncoder(&buf)
	if err := enc.Write(method); err != nil {
		return nil, err
	}
	for _, ext := range exts {
		for _, f := range ext.Extrinsic {
			if err := encodeField(enc, f, p); err != nil {
				return nil, err
			}
		}
	}
	for _, ext := range exts {
		for _, f := range ext.Additional {
			if err := encodeField(enc, f, p); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}

func encodeField(enc *scale.Encoder, f field, p *SignerPayload) error {
	switch f {
	case fieldEra:
		era, err := decodeBytes("era", p.Era)
		if err != nil {
			return err
		}
		if len(era) == 0 {
			return errors.New("empty era")
		}
		return enc.Write(era)
	case fieldNonce, fieldTip:
		name, value := "nonce", p.Nonce
		if f == fieldTip {
			name, value = "tip", p.Tip
		}
		n, err := decodeNumber(name, value)
		if err != nil {
			return err
		}
		return enc.EncodeUintCompact(*n)
	case fieldDelegated:
		return enc.Encode(p.Delegated)
	case fieldAssetID:
		if p.AssetID == "" {
			return enc.Write([]byte{0x00})
		}
		id, err := decodeBytes("assetId", p.AssetID)
		if err != nil {
			return err
		}
		return enc.Write(append([]byte{0x01}, id...))
	case fieldMetadataMode:
		return enc.Write([]byte{p.Mode})
	case fieldMetadataHash:
		if p.MetadataHash == "" {
			return enc.Write([]byte{0x00})
		}
		h, err := decodeHash("metadataHash", p.MetadataHash)
		if err != nil {
			return err
		}
		return enc.Write(append([]byte{0x01}, h...))
	case fieldSpecVersion, fieldTxVersion:
		name, value := "specVersion", p.SpecVersion
		if f == fieldTxVersion {
			name, value = "transactionVersion", p.TransactionVersion
		}
		v, err := decodeU32(name, value)
		if err != nil {
			return err
		}
		return enc.Encode(v)
	case fieldGenesisHash, fieldBlockHash:
		name, value := "genesisHash", p.GenesisHash
		if f == fieldBlockHash {
			name, value = "blockHash", p.BlockHash
		}
		h, err := decodeHash(name, value)
		if err != nil {
			return err
		}
		return enc.Write(h)
	default:
		return fmt.Errorf("unknown payload field %d", f)
	}
}
