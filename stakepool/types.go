// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakepool

import (
	"math/big"
)

// UserStake is the per-participant record. It is created on first stake
// and persists across full exits so a returning staker reuses the slot.
type UserStake struct {
	Amount         *big.Int // principal currently staked
	Weight         *big.Int // booked weight, amount x multiplier at last settlement
	StakeStartTime uint64   // tier accrual anchor, 0 when fully unstaked
	LastStakeTime  uint64   // time of the most recent stake or top-up
	LastClaimTime  uint64   // start of the interval the next settlement prices
	RewardDebt     *big.Int // accumulator snapshot at last settlement
	PendingRewards *big.Int // settled, unclaimed rewards
	TotalClaimed   *big.Int // lifetime claimed rewards
	CooldownAmount *big.Int // principal queued for withdrawal, 0 when idle
	CooldownEnd    uint64   // earliest completion time of the cooldown
	Bonus          uint64   // early-holder bonus multiplier, scale 100
}

// IsEmpty returns whether the entry can be treated as absent.
func (u *UserStake) IsEmpty() bool {
	return u == nil || u.Amount == nil
}

// normalize fills the big.Int fields of a freshly decoded or zero-value
// record so callers never see nil arithmetic operands.
func (u *UserStake) normalize() *UserStake {
	if u.Amount == nil {
		u.Amount = new(big.Int)
	}
	if u.Weight == nil {
		u.Weight = new(big.Int)
	}
	if u.RewardDebt == nil {
		u.RewardDebt = new(big.Int)
	}
	if u.PendingRewards == nil {
		u.PendingRewards = new(big.Int)
	}
	if u.TotalClaimed == nil {
		u.TotalClaimed = new(big.Int)
	}
	if u.CooldownAmount == nil {
		u.CooldownAmount = new(big.Int)
	}
	return u
}

// Staked reports whether any principal is currently in the pool.
func (u *UserStake) Staked() bool {
	return !u.IsEmpty() && u.Amount.Sign() > 0
}

// CooldownActive reports whether a withdrawal is waiting out its cooldown.
func (u *UserStake) CooldownActive() bool {
	return !u.IsEmpty() && u.CooldownAmount.Sign() > 0
}
