// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package session owns the connection to the hardware device. A Manager
// caches a single device handle and rebuilds it when the connection mode or
// the target network changes.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	secux "github.com/luxfi/secux-go"
	"github.com/luxfi/secux-go/networks"
)

// ConnectionMode is the user selected way of reaching the device.
type ConnectionMode string

const (
	ModeNone ConnectionMode = "none"
	ModeHID  ConnectionMode = "hid"
)

// ErrUnknownNetwork matches every ConfigurationError.
var ErrUnknownNetwork = errors.New("no known device configuration")

// ConfigurationError is returned when the device cannot be addressed because
// the network is not known to support it.
type ConfigurationError struct {
	GenesisHash string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unable to find a known SecuX config for genesisHash %s", e.GenesisHash)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrUnknownNetwork
}

// Opener builds a device handle for a network. It must not talk to the device.
type Opener func(mode ConnectionMode, network networks.Network) (secux.Device, error)

// Settings supplies the current connection mode.
type Settings interface {
	ConnectionMode() ConnectionMode
}

// Capabilities describes whether device signing is available for a network.
type Capabilities struct {
	HasDeviceChain bool
	HasTransport   bool
	IsCapable      bool
	IsEnabled      bool
}

type cached struct {
	mode        ConnectionMode
	genesisHash string
	device      secux.Device
}

// Manager holds at most one live device handle.
type Manager struct {
	table     networks.Table
	open      Opener
	transport func() bool
	log       *zap.Logger

	mu      sync.Mutex
	current *cached
}

// Option configures a Manager.
type Option func(*Manager)

// WithNetworks replaces the built-in network table.
func WithNetworks(t networks.Table) Option {
	return func(m *Manager) { m.table = t }
}

// WithOpener replaces the default HID opener.
func WithOpener(o Opener) Option {
	return func(m *Manager) { m.open = o }
}

// WithTransportCheck replaces the check for USB availability.
func WithTransportCheck(f func() bool) Option {
	return func(m *Manager) { m.transport = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager returns a Manager using the built-in networks and the first
// device found by secux.NewAdmin.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		table:     networks.Known(),
		open:      DefaultOpener(secux.NewAdmin()),
		transport: secux.TransportSupported,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultOpener returns an Opener that addresses the first device of admin.
func DefaultOpener(admin secux.Admin) Opener {
	return func(_ ConnectionMode, network networks.Network) (secux.Device, error) {
		profile, ok := network.Profile()
		if !ok {
			return nil, &ConfigurationError{}
		}
		return secux.NewApp(admin, 0, profile), nil
	}
}

// GetOrCreate returns the cached device when it was built for the same mode
// and genesis hash, otherwise it builds a new one and closes the old one.
func (m *Manager) GetOrCreate(mode ConnectionMode, genesisHash string) (secux.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c := m.current; c != nil && c.mode == mode && strings.EqualFold(c.genesisHash, genesisHash) {
		return c.device, nil
	}

	network, ok := m.table.DeviceByGenesis(genesisHash)
	if !ok {
		return nil, &ConfigurationError{GenesisHash: genesisHash}
	}

	device, err := m.open(mode, network)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) && ce.GenesisHash == "" {
			ce.GenesisHash = genesisHash
		}
		return nil, err
	}

	if m.current != nil {
		if err := m.current.device.Close(); err != nil {
			m.log.Warn("closing previous device failed", zap.Error(err))
		}
	}
	m.current = &cached{mode: mode, genesisHash: genesisHash, device: device}

	m.log.Info("device session created",
		zap.String("network", network.Name),
		zap.String("mode", string(mode)))
	return device, nil
}

// Getter binds the manager to a settings source and network. The mode is read
// on every call so a settings change takes effect on the next request.
func (m *Manager) Getter(settings Settings, genesisHash string) secux.DeviceGetter {
	return func() (secux.Device, error) {
		return m.GetOrCreate(settings.ConnectionMode(), genesisHash)
	}
}

// Capabilities reports what is available for the network without touching
// the device.
func (m *Manager) Capabilities(genesisHash string, mode ConnectionMode) Capabilities {
	hasChain := m.table.HasDevice(genesisHash)
	hasTransport := m.transport()
	capable := hasChain && hasTransport

	return Capabilities{
		HasDeviceChain: hasChain,
		HasTransport:   hasTransport,
		IsCapable:      capable,
		IsEnabled:      capable && mode != ModeNone,
	}
}

// Close releases the cached device.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	err := m.current.device.Close()
	m.current = nil
	return err
}
