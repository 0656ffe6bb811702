// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/luxfi/secux-go/accounts"
)

func newAccountCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage hardware accounts in the keyring",
	}
	cmd.AddCommand(newAccountAddCmd(c), newAccountListCmd(c), newAccountRemoveCmd(c))
	return cmd
}

func newAccountAddCmd(c *cli) *cobra.Command {
	var (
		name         string
		accountIndex uint32
		addressIndex uint32
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Read an address from the device and add it to the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := c.openKeyring(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if name == "" {
				name = accounts.DefaultName(accountIndex, addressIndex)
			}

			registrar := accounts.NewRegistrar(store, c.device(), c.cfg.Genesis, c.log.Named("accounts"))
			form := accounts.NewForm(registrar, nil, c.log.Named("accounts"))
			form.SetName(name)
			if err := form.SetAccountIndex(accountIndex); err != nil {
				return err
			}
			if err := form.SetAddressIndex(addressIndex); err != nil {
				return err
			}

			acc, err := form.Save(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", acc.Address, acc.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (default \"secux <account>/<index>\")")
	cmd.Flags().Uint32Var(&accountIndex, "account", 0, fmt.Sprintf("account index, 0 to %d", accounts.MaxIndex-1))
	cmd.Flags().Uint32Var(&addressIndex, "index", 0, fmt.Sprintf("address index, 0 to %d", accounts.MaxIndex-1))
	return cmd
}

func newAccountListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List hardware accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := c.openKeyring(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ADDRESS\tNAME\tACCOUNT\tINDEX")
			for _, a := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", a.Address, a.Name, a.AccountOffset, a.AddressOffset)
			}
			return w.Flush()
		},
	}
}

func newAccountRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <address>",
		Short: "Remove an account from the keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openKeyring(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}
