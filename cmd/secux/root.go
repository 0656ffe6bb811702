// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	secux "github.com/luxfi/secux-go"
	"github.com/luxfi/secux-go/internal/config"
	"github.com/luxfi/secux-go/keyring"
	"github.com/luxfi/secux-go/session"
)

// cli is shared by all commands of one invocation.
type cli struct {
	admin     secux.Admin
	transport func() bool

	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
	manager *session.Manager
}

// flag names bound to config keys
var flagBindings = map[string]string{
	"connection":  "connection",
	"genesis":     "genesis",
	"spec":        "spec",
	"keyring.dsn": "keyring",
	"log.level":   "log-level",
}

func newRootCmd(admin secux.Admin, transport func() bool) *cobra.Command {
	c := &cli{admin: admin, transport: transport}

	cmd := &cobra.Command{
		Use:          "secux",
		Short:        "Manage SecuX hardware accounts and sign payloads",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/secux/secux.yaml)")
	flags.String("connection", "", "connection mode: hid or none")
	flags.String("genesis", "", "genesis hash of the target network")
	flags.String("spec", "", "runtime spec name used for payload encoding")
	flags.String("keyring", "", "keyring database DSN")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newDevicesCmd(c),
		newCapabilitiesCmd(c),
		newVersionCmd(c),
		newAccountCmd(c),
		newSignCmd(c),
		newConfigCmd(c),
	)
	return cmd
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags(), flagBindings, c.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.cfg = cfg

	logger, err := secux.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	secux.SetLogger(logger)
	c.log = logger

	c.manager = session.NewManager(
		session.WithOpener(session.DefaultOpener(c.admin)),
		session.WithTransportCheck(c.transport),
		session.WithLogger(logger.Named("session")),
	)
	return nil
}

func (c *cli) close() error {
	if c.log != nil {
		_ = c.log.Sync()
	}
	if c.manager == nil {
		return nil
	}
	return c.manager.Close()
}

// device returns a getter bound to the configured mode and network.
func (c *cli) device() secux.DeviceGetter {
	return c.manager.Getter(c.cfg, c.cfg.Genesis)
}

func (c *cli) openKeyring(ctx context.Context) (*keyring.SQLStore, error) {
	return keyring.OpenSQLite(ctx, c.cfg.Keyring.DSN, c.log.Named("keyring"))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
