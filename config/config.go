// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the engine configuration from a YAML file,
// overlaying the file's values onto built-in defaults.
package config

import (
	"math/big"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kr8tiv/staking/kr8tiv"
)

// Config is the engine configuration.
type Config struct {
	DataDir     string `yaml:"dataDir"`     // leveldb record store location
	EventDBPath string `yaml:"eventDBPath"` // sqlite event sink, empty disables
	AdminAddr   string `yaml:"adminAddr"`   // admin API listen address
	MetricsAddr string `yaml:"metricsAddr"` // prometheus listen address, empty disables

	PoolAddress string `yaml:"poolAddress"`
	StakeVault  string `yaml:"stakeVault"`
	RewardVault string `yaml:"rewardVault"`

	Authority         string   `yaml:"authority"`
	EmergencyAdmins   []string `yaml:"emergencyAdmins"`
	CriticalAdmins    []string `yaml:"criticalAdmins"`
	RequiredApprovals uint64   `yaml:"requiredApprovals"`

	// RewardRate is a decimal string in reward units per staked unit per
	// second, at the protocol's rate scale.
	RewardRate string `yaml:"rewardRate"`
}

func defaults() *Config {
	return &Config{
		DataDir:           filepath.Join(os.TempDir(), "stakehub"),
		AdminAddr:         "localhost:2113",
		MetricsAddr:       "localhost:2112",
		RequiredApprovals: 1,
		RewardRate:        "0",
	}
}

// Load reads path and overlays it onto the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks address formats and the multisig threshold.
func (c *Config) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"poolAddress", c.PoolAddress},
		{"stakeVault", c.StakeVault},
		{"rewardVault", c.RewardVault},
		{"authority", c.Authority},
	} {
		if field.value == "" {
			continue
		}
		if _, err := kr8tiv.ParseAddress(field.value); err != nil {
			return errors.Wrapf(err, "invalid %s", field.name)
		}
	}
	for _, admin := range append(append([]string{}, c.EmergencyAdmins...), c.CriticalAdmins...) {
		if _, err := kr8tiv.ParseAddress(admin); err != nil {
			return errors.Wrapf(err, "invalid admin address %q", admin)
		}
	}
	if len(c.CriticalAdmins) > 0 && c.RequiredApprovals > uint64(len(c.CriticalAdmins)) {
		return errors.New("requiredApprovals exceeds the critical admin set")
	}
	if _, ok := new(big.Int).SetString(c.RewardRate, 10); !ok {
		return errors.Errorf("invalid rewardRate %q", c.RewardRate)
	}
	return nil
}

// Rate returns the configured reward rate.
func (c *Config) Rate() *big.Int {
	rate, ok := new(big.Int).SetString(c.RewardRate, 10)
	if !ok {
		return new(big.Int)
	}
	return rate
}

// Addresses parses a list of address strings.
func Addresses(raw []string) ([]kr8tiv.Address, error) {
	addrs := make([]kr8tiv.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := kr8tiv.ParseAddress(s)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}
