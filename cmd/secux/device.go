// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	secux "github.com/luxfi/secux-go"
	"github.com/luxfi/secux-go/networks"
	"github.com/luxfi/secux-go/session"
)

func newDevicesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List connected devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := c.admin.ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no devices found")
				return nil
			}
			for i, d := range devices {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, d)
			}
			return nil
		},
	}
}

type capabilitiesOutput struct {
	Network string `json:"network,omitempty"`
	session.Capabilities
}

func newCapabilitiesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show whether device signing is available for the configured network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := capabilitiesOutput{
				Capabilities: c.manager.Capabilities(c.cfg.Genesis, c.cfg.ConnectionMode()),
			}
			if n, ok := networks.Known().ByGenesis(c.cfg.Genesis); ok {
				out.Network = n.DisplayName
			}
			return printJSON(cmd, out)
		},
	}
}

type versioner interface {
	GetVersion() (*secux.VersionResponse, error)
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version of the signing app on the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			device, err := c.device()()
			if err != nil {
				return err
			}
			v, ok := device.(versioner)
			if !ok {
				return errors.New("device does not report its version")
			}
			resp, err := v.GetVersion()
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}
