// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luxfi/secux-go/registry"
	"github.com/luxfi/secux-go/signer"
)

func newSignCmd(c *cli) *cobra.Command {
	var (
		payloadFile  string
		address      string
		accountIndex uint32
		addressIndex uint32
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a JSON signer payload with the device",
		Long: `Sign reads a signer payload as JSON from --payload (or stdin when the
value is "-"), encodes it for the configured runtime and signs it on the
device. The offsets are taken from the keyring when --address is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			payload, err := readPayload(cmd, payloadFile)
			if err != nil {
				return err
			}

			if address == "" {
				address = payload.Address
			}
			if address != "" && !cmd.Flags().Changed("account") && !cmd.Flags().Changed("index") {
				store, err := c.openKeyring(ctx)
				if err != nil {
					return err
				}
				acc, err := store.Get(ctx, address)
				_ = store.Close()
				if err != nil {
					return fmt.Errorf("looking up %s: %w", address, err)
				}
				if acc.GenesisHash != "" && !strings.EqualFold(acc.GenesisHash, c.cfg.Genesis) {
					return fmt.Errorf("%s is registered for genesis %s, not %s", address, acc.GenesisHash, c.cfg.Genesis)
				}
				accountIndex, addressIndex = acc.AccountOffset, acc.AddressOffset
			}

			reg := registry.New(c.cfg.Spec, c.log.Named("registry"))
			factory := signer.NewFactory(reg, c.device(), c.log.Named("signer"))

			res, err := factory.New(accountIndex, addressIndex).SignPayload(ctx, payload)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}

	cmd.Flags().StringVar(&payloadFile, "payload", "-", "payload JSON file, - for stdin")
	cmd.Flags().StringVar(&address, "address", "", "keyring address to sign with (default is the payload address)")
	cmd.Flags().Uint32Var(&accountIndex, "account", 0, "account index, overrides the keyring")
	cmd.Flags().Uint32Var(&addressIndex, "index", 0, "address index, overrides the keyring")
	return cmd
}

func readPayload(cmd *cobra.Command, file string) (*registry.SignerPayload, error) {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var payload registry.SignerPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return &payload, nil
}
