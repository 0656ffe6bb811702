// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Package config loads the CLI settings from defaults, an optional
// secux.yaml, SECUX_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/secux-go/session"
)

const (
	fileName  = "secux"
	envPrefix = "secux"
)

// Config is the resolved configuration.
type Config struct {
	Connection string `mapstructure:"connection" yaml:"connection" json:"connection"`
	Genesis    string `mapstructure:"genesis" yaml:"genesis" json:"genesis"`
	Spec       string `mapstructure:"spec" yaml:"spec" json:"spec"`
	Keyring    struct {
		DSN string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
	} `mapstructure:"keyring" yaml:"keyring" json:"keyring"`
	Log struct {
		Level string `mapstructure:"level" yaml:"level" json:"level"`
	} `mapstructure:"log" yaml:"log" json:"log"`
}

// Defaults returns the values used when nothing else is set.
func Defaults() map[string]any {
	return map[string]any{
		"connection":  string(session.ModeHID),
		"genesis":     "0x91b171bb158e2d3848fa23a9f1c25182fb8e20313b2c1eb49219da7a70ce90c3",
		"spec":        "polkadot",
		"keyring.dsn": "file:secux.db?cache=shared",
		"log.level":   "info",
	}
}

// ConnectionMode implements session.Settings.
func (c *Config) ConnectionMode() session.ConnectionMode {
	return session.ConnectionMode(c.Connection)
}

// Validate checks values that cannot be checked by type.
func (c *Config) Validate() error {
	switch session.ConnectionMode(c.Connection) {
	case session.ModeNone, session.ModeHID:
	default:
		return fmt.Errorf("unknown connection mode %q", c.Connection)
	}
	if c.Genesis == "" {
		return errors.New("genesis hash is required")
	}
	return nil
}

// Path returns the per user config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "secux", fileName+".yaml"), nil
}

// Load resolves the configuration. flags maps config keys to flag names; a
// flag only overrides the file and environment when it was set explicitly.
// An explicit file that does not exist is an error, a missing default file
// is not.
func Load(flags *pflag.FlagSet, bindings map[string]string, file string) (*Config, error) {
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if p, err := Path(); err == nil {
			v.AddConfigPath(filepath.Dir(p))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range bindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Write stores c as YAML at path, creating the directory if needed.
func Write(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
