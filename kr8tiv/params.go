// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kr8tiv

import "math/big"

// Constants of the staking protocol.
const (
	DaySeconds = uint64(24 * 60 * 60)

	// CooldownDuration is the mandatory wait between requesting and
	// completing a principal withdrawal. 3 days.
	CooldownDuration = 3 * DaySeconds

	// WindDownDuration is the grace window of a gradual shutdown, during
	// which unstakes and claims stay open while new stakes are refused. 7 days.
	WindDownDuration = 7 * DaySeconds

	// ProposalLifetime is how long a proposed emergency action stays
	// approvable. 48 hours.
	ProposalLifetime = 2 * DaySeconds

	// MultiplierScale is the fixed-point scale of reward multipliers.
	// A multiplier of 150 means 1.50x.
	MultiplierScale = uint64(100)
)

var (
	// RateScale is the fixed-point scale of the reward rate. The rate is
	// expressed in reward units per staked unit per second, scaled by 1e9.
	RateScale = big.NewInt(1_000_000_000)

	// AccumulatorScale is the fixed-point scale of the pool's
	// reward-per-weight accumulator.
	AccumulatorScale = big.NewInt(1_000_000_000_000)

	// MaxStorageValue is the largest integer a single storage slot holds.
	// Accounting values beyond it indicate corrupted or overflowing math.
	MaxStorageValue = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)
