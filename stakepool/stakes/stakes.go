// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/kr8tiv/staking/kr8tiv"
)

type WeightedStake struct {
	amount *big.Int // The amount of tokens staked
	weight *big.Int // The weight of the stake, calculated as (amount * multiplier / 100%)
}

func NewWeightedStake(amount *big.Int, multiplier uint64) *WeightedStake {
	weight := new(big.Int).Mul(amount, new(big.Int).SetUint64(multiplier))
	weight = weight.Div(weight, new(big.Int).SetUint64(kr8tiv.MultiplierScale)) // weight = amount * multiplier / 100%
	return &WeightedStake{
		amount: amount,
		weight: weight,
	}
}

// FromParts builds a weighted stake from an already computed weight, used
// when a delta between two bookings is applied to the pool totals.
func FromParts(amount, weight *big.Int) *WeightedStake {
	return &WeightedStake{amount: amount, weight: weight}
}

func (s *WeightedStake) Weight() *big.Int {
	return s.weight
}

func (s *WeightedStake) Amount() *big.Int {
	return s.amount
}
