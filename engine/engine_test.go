// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr8tiv/staking/eventdb"
	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/ledger"
	"github.com/kr8tiv/staking/stakepool/reverts"
	"github.com/kr8tiv/staking/state"
)

var (
	authority = kr8tiv.BytesToAddress([]byte("authority"))
	critic1   = kr8tiv.BytesToAddress([]byte("critic-1"))
	critic2   = kr8tiv.BytesToAddress([]byte("critic-2"))
	alice     = kr8tiv.BytesToAddress([]byte("alice"))
)

type fixture struct {
	engine *Engine
	ledger *ledger.Mem
	clock  *ManualClock
	events *eventdb.EventDB
	opts   Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(events.Close)

	mem := ledger.NewMem()
	clock := NewManualClock(0)
	opts := Options{
		PoolAddress: kr8tiv.BytesToAddress([]byte("pool")),
		StakeVault:  kr8tiv.BytesToAddress([]byte("stake-vault")),
		RewardVault: kr8tiv.BytesToAddress([]byte("reward-vault")),
	}
	eng := New(state.New(nil), mem, events, clock, opts)
	require.NoError(t, eng.Initialize(
		authority,
		big.NewInt(1_000_000),
		nil,
		[]kr8tiv.Address{critic1, critic2},
		2,
	))
	return &fixture{engine: eng, ledger: mem, clock: clock, events: events, opts: opts}
}

func (f *fixture) balance(t *testing.T, addr kr8tiv.Address) *big.Int {
	t.Helper()
	b, err := f.ledger.Balance(addr)
	require.NoError(t, err)
	return b
}

func TestEngine_StakeMovesPrincipal(t *testing.T) {
	f := newFixture(t)
	amount := big.NewInt(1_000_000_000)
	f.ledger.Mint(alice, amount)

	require.NoError(t, f.engine.Stake(alice, amount))

	assert.Equal(t, big.NewInt(0).String(), f.balance(t, alice).String())
	assert.Equal(t, amount, f.balance(t, f.opts.StakeVault))

	events, err := f.events.Filter(&eventdb.Filter{Kind: eventdb.KindStake})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, alice, events[0].Actor)
	assert.Equal(t, amount, events[0].Amount)
}

func TestEngine_FailedTransferRollsBack(t *testing.T) {
	f := newFixture(t)
	amount := big.NewInt(1_000_000)
	// alice holds nothing, the transfer must fail

	err := f.engine.Stake(alice, amount)
	require.Error(t, err)

	// no partial mutation survived
	staked, weight, err := f.engine.Pool().Totals()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), staked.String())
	assert.Equal(t, big.NewInt(0).String(), weight.String())

	u, err := f.engine.Pool().GetStake(alice)
	require.NoError(t, err)
	assert.False(t, u.Staked())
}

func TestEngine_UnstakeRoundTrip(t *testing.T) {
	f := newFixture(t)
	amount := big.NewInt(1_000_000)
	f.ledger.Mint(alice, amount)

	require.NoError(t, f.engine.Stake(alice, amount))

	f.clock.Advance(kr8tiv.DaySeconds)
	require.NoError(t, f.engine.InitiateUnstake(alice, amount))

	// too early
	f.clock.Advance(kr8tiv.CooldownDuration - 1)
	_, err := f.engine.CompleteUnstake(alice)
	require.Error(t, err)
	class, ok := reverts.ClassOf(err)
	require.True(t, ok)
	assert.Equal(t, reverts.ClassState, class)

	f.clock.Advance(1)
	got, err := f.engine.CompleteUnstake(alice)
	require.NoError(t, err)
	assert.Equal(t, amount, got)
	assert.Equal(t, amount, f.balance(t, alice))
	assert.Equal(t, big.NewInt(0).String(), f.balance(t, f.opts.StakeVault).String())
}

func TestEngine_ClaimChecksRewardVault(t *testing.T) {
	f := newFixture(t)
	amount := big.NewInt(1_000_000_000)
	f.ledger.Mint(alice, amount)

	require.NoError(t, f.engine.Stake(alice, amount))
	f.clock.Advance(kr8tiv.DaySeconds)

	// empty reward vault aborts the claim and keeps the rewards pending
	_, err := f.engine.ClaimRewards(alice)
	require.Error(t, err)
	class, ok := reverts.ClassOf(err)
	require.True(t, ok)
	assert.Equal(t, reverts.ClassState, class)

	pending, err := f.engine.Pool().PendingAt(alice, f.clock.Now())
	require.NoError(t, err)
	assert.Positive(t, pending.Sign())

	// fund the vault, claim succeeds
	f.ledger.Mint(authority, pending)
	require.NoError(t, f.engine.DepositRewards(authority, pending))

	got, err := f.engine.ClaimRewards(alice)
	require.NoError(t, err)
	assert.Equal(t, pending, got)
	assert.Equal(t, pending, f.balance(t, alice))
}

func TestEngine_AdminWithdrawDrainsVaults(t *testing.T) {
	f := newFixture(t)
	amount := big.NewInt(1_000_000)
	f.ledger.Mint(alice, amount)
	f.ledger.Mint(authority, big.NewInt(500))

	require.NoError(t, f.engine.Stake(alice, amount))
	require.NoError(t, f.engine.DepositRewards(authority, big.NewInt(500)))

	require.NoError(t, f.engine.RaiseEmergencyLevel(critic1, 3)) // EmergencyUnstake

	require.NoError(t, f.engine.ProposeAction(critic1, 2)) // ActionAdminWithdraw
	reached, err := f.engine.ApproveAction(critic2, 2)
	require.NoError(t, err)
	assert.True(t, reached)
	require.NoError(t, f.engine.ExecuteAction(critic1, 2))

	want := new(big.Int).Add(amount, big.NewInt(500))
	assert.Equal(t, want, f.balance(t, critic1))
	assert.Equal(t, big.NewInt(0).String(), f.balance(t, f.opts.StakeVault).String())
	assert.Equal(t, big.NewInt(0).String(), f.balance(t, f.opts.RewardVault).String())

	events, err := f.events.Filter(&eventdb.Filter{Kind: eventdb.KindExecution})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, want, events[0].Amount)
}

func TestEngine_EmergencyUnstake(t *testing.T) {
	f := newFixture(t)
	amount := big.NewInt(1_000_000)
	f.ledger.Mint(alice, amount)

	require.NoError(t, f.engine.Stake(alice, amount))
	f.clock.Advance(kr8tiv.DaySeconds)

	require.NoError(t, f.engine.RaiseEmergencyLevel(critic1, 3)) // EmergencyUnstake

	got, err := f.engine.EmergencyUnstake(alice)
	require.NoError(t, err)
	assert.Equal(t, amount, got)
	assert.Equal(t, amount, f.balance(t, alice))
}

func TestEngine_RateChangeEventTrail(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.UpdateRewardRate(authority, big.NewInt(5_000_000)))

	events, err := f.events.Filter(&eventdb.Filter{Kind: eventdb.KindRateChange})
	require.NoError(t, err)
	// initialization plus the update
	require.Len(t, events, 2)
	assert.Equal(t, big.NewInt(5_000_000), events[1].Amount)
}
