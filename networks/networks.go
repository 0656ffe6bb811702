// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package networks holds the static tables of known networks: their genesis
// hashes, address format and, when supported, the hardware device profile.
package networks

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	secux "github.com/luxfi/secux-go"
)

// DeviceProfile is present on networks a hardware device can sign for.
type DeviceProfile struct {
	Slip44 uint32 `yaml:"slip44"`
	CLA    byte   `yaml:"cla"`
}

// Network describes one known chain.
type Network struct {
	Name        string         `yaml:"name"`
	DisplayName string         `yaml:"displayName"`
	SS58Prefix  uint16         `yaml:"ss58Prefix"`
	Genesis     []string       `yaml:"genesis"`
	Device      *DeviceProfile `yaml:"device,omitempty"`
}

// HasGenesis reports whether hash is one of the network's genesis hashes.
func (n Network) HasGenesis(hash string) bool {
	for _, g := range n.Genesis {
		if strings.EqualFold(g, hash) {
			return true
		}
	}
	return false
}

// Profile returns the device profile of the network.
func (n Network) Profile() (secux.Profile, bool) {
	if n.Device == nil {
		return secux.Profile{}, false
	}
	return secux.Profile{
		Name:       n.Name,
		CLA:        n.Device.CLA,
		Slip44:     n.Device.Slip44,
		SS58Prefix: n.SS58Prefix,
	}, true
}

// Table is an ordered list of networks.
type Table []Network

//go:embed networks.yaml
var knownYAML []byte

var known = mustParse(knownYAML)

// Parse reads a table from YAML.
func Parse(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse networks: %w", err)
	}
	for i, n := range t {
		if n.Name == "" {
			return nil, fmt.Errorf("parse networks: entry %d has no name", i)
		}
		if len(n.Genesis) == 0 {
			return nil, fmt.Errorf("parse networks: %s has no genesis hash", n.Name)
		}
	}
	return t, nil
}

func mustParse(data []byte) Table {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Known returns the built-in table.
func Known() Table {
	return known
}

// ByGenesis returns the first network with the given genesis hash.
func (t Table) ByGenesis(hash string) (Network, bool) {
	for _, n := range t {
		if n.HasGenesis(hash) {
			return n, true
		}
	}
	return Network{}, false
}

// DeviceNetworks returns the networks that have a device profile, in order.
func (t Table) DeviceNetworks() Table {
	var out Table
	for _, n := range t {
		if n.Device != nil {
			out = append(out, n)
		}
	}
	return out
}

// DeviceByGenesis returns the first device capable network with the given
// genesis hash.
func (t Table) DeviceByGenesis(hash string) (Network, bool) {
	return t.DeviceNetworks().ByGenesis(hash)
}

// HasDevice reports whether a device can sign for the network with the given
// genesis hash.
func (t Table) HasDevice(hash string) bool {
	_, ok := t.DeviceByGenesis(hash)
	return ok
}
