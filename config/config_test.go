// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:2113", cfg.AdminAddr)
	assert.Equal(t, uint64(1), cfg.RequiredApprovals)
	assert.Equal(t, big.NewInt(0).String(), cfg.Rate().String())
}

func TestLoad_Overlay(t *testing.T) {
	path := writeFile(t, `
adminAddr: "0.0.0.0:9000"
rewardRate: "1000000"
authority: "0x0000000000000000000000000000000000000001"
criticalAdmins:
  - "0x0000000000000000000000000000000000000002"
  - "0x0000000000000000000000000000000000000003"
requiredApprovals: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.AdminAddr)
	assert.Equal(t, big.NewInt(1_000_000), cfg.Rate())
	assert.Len(t, cfg.CriticalAdmins, 2)
	// untouched fields keep their defaults
	assert.Equal(t, "localhost:2112", cfg.MetricsAddr)
}

func TestLoad_BadAddress(t *testing.T) {
	path := writeFile(t, `authority: "not-an-address"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_BadThreshold(t *testing.T) {
	path := writeFile(t, `
criticalAdmins:
  - "0x0000000000000000000000000000000000000002"
requiredApprovals: 3
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_BadRate(t *testing.T) {
	path := writeFile(t, `rewardRate: "12.5"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestAddresses(t *testing.T) {
	addrs, err := Addresses([]string{
		"0x0000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000002",
	})
	require.NoError(t, err)
	assert.Len(t, addrs, 2)

	_, err = Addresses([]string{"bogus"})
	assert.Error(t, err)
}
