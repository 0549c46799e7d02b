// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package stakepool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/stakepool/reverts"
	"github.com/kr8tiv/staking/state"
)

var (
	poolAddr  = kr8tiv.BytesToAddress([]byte("pool"))
	authority = kr8tiv.BytesToAddress([]byte("authority"))
	guard     = kr8tiv.BytesToAddress([]byte("guard"))
	critic1   = kr8tiv.BytesToAddress([]byte("critic-1"))
	critic2   = kr8tiv.BytesToAddress([]byte("critic-2"))
	alice     = kr8tiv.BytesToAddress([]byte("alice"))
	bob       = kr8tiv.BytesToAddress([]byte("bob"))
)

// defaultRate pays 1e6 reward units per staked unit per second at RateScale.
var defaultRate = big.NewInt(1_000_000)

func newPool(t *testing.T, now uint64) *StakePool {
	t.Helper()
	pool := New(poolAddr, state.New(nil))
	require.NoError(t, pool.Initialize(
		authority,
		defaultRate,
		[]kr8tiv.Address{guard},
		[]kr8tiv.Address{critic1, critic2},
		2,
		now,
	))
	return pool
}

func assertClass(t *testing.T, err error, class reverts.Class) {
	t.Helper()
	got, ok := reverts.ClassOf(err)
	require.True(t, ok, "expected a revert, got %v", err)
	assert.Equal(t, class, got)
}

// closedForm prices amount at rate for dur seconds under one multiplier.
func closedForm(amount, rate *big.Int, dur, multiplier uint64) *big.Int {
	out := new(big.Int).Mul(amount, rate)
	out.Mul(out, new(big.Int).SetUint64(dur))
	out.Mul(out, new(big.Int).SetUint64(multiplier))
	out.Div(out, new(big.Int).Mul(kr8tiv.RateScale, new(big.Int).SetUint64(kr8tiv.MultiplierScale)))
	return out
}
