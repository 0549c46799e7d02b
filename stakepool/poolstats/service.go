// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package poolstats

import (
	"math/big"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/slot"
	"github.com/kr8tiv/staking/stakepool/stakes"
)

var (
	slotTotalStaked         = kr8tiv.BytesToBytes32([]byte("total-staked"))
	slotTotalWeight         = kr8tiv.BytesToBytes32([]byte("total-weight"))
	slotPendingDistribution = kr8tiv.BytesToBytes32([]byte("pending-distribution"))
)

// Service manages pool-wide staking totals.
// totalStaked is the sum of all stake amounts; totalWeight the sum of all
// multiplier-boosted weights; pendingDistribution the rewards already
// attributed to the pool by settlement but not yet claimed.
type Service struct {
	totalStaked         *slot.Uint256
	totalWeight         *slot.Uint256
	pendingDistribution *slot.Uint256
}

func New(ctx *slot.Context) *Service {
	return &Service{
		totalStaked:         slot.NewUint256(ctx, slotTotalStaked),
		totalWeight:         slot.NewUint256(ctx, slotTotalWeight),
		pendingDistribution: slot.NewUint256(ctx, slotPendingDistribution),
	}
}

// Totals returns the total staked amount and total weight.
func (s *Service) Totals() (*big.Int, *big.Int, error) {
	staked, err := s.totalStaked.Get()
	if err != nil {
		return nil, nil, err
	}

	weight, err := s.totalWeight.Get()
	return staked, weight, err
}

// AddStake increases totals when stake enters the pool.
func (s *Service) AddStake(ws *stakes.WeightedStake) error {
	if err := s.totalStaked.Add(ws.Amount()); err != nil {
		return err
	}
	return s.totalWeight.Add(ws.Weight())
}

// RemoveStake decreases totals when stake leaves the pool.
func (s *Service) RemoveStake(ws *stakes.WeightedStake) error {
	if err := s.totalStaked.Sub(ws.Amount()); err != nil {
		return err
	}
	return s.totalWeight.Sub(ws.Weight())
}

// RebookWeight replaces a staker's booked weight when their tier changes,
// leaving totalStaked untouched.
func (s *Service) RebookWeight(oldWeight, newWeight *big.Int) error {
	if oldWeight.Cmp(newWeight) == 0 {
		return nil
	}
	if err := s.totalWeight.Sub(oldWeight); err != nil {
		return err
	}
	return s.totalWeight.Add(newWeight)
}

func (s *Service) PendingDistribution() (*big.Int, error) {
	return s.pendingDistribution.Get()
}

// AddPendingDistribution records rewards attributed by a settlement.
func (s *Service) AddPendingDistribution(amount *big.Int) error {
	return s.pendingDistribution.Add(amount)
}

// SubPendingDistribution consumes attributed rewards on claim. Claims
// larger than the attributed total clamp to zero rather than fail, since
// the payout path accrues independently of the distribution ledger.
func (s *Service) SubPendingDistribution(amount *big.Int) error {
	pending, err := s.pendingDistribution.Get()
	if err != nil {
		return err
	}
	if pending.Cmp(amount) < 0 {
		return s.pendingDistribution.Set(new(big.Int))
	}
	return s.pendingDistribution.Sub(amount)
}

// ZeroPendingDistribution discards the distribution ledger. Used by the
// emergency withdraw path when the reward vault is drained.
func (s *Service) ZeroPendingDistribution() error {
	return s.pendingDistribution.Set(new(big.Int))
}

// ZeroTotals clears the staked and weight totals. Used by the emergency
// withdraw path when the stake vault is drained.
func (s *Service) ZeroTotals() error {
	if err := s.totalStaked.Set(new(big.Int)); err != nil {
		return err
	}
	return s.totalWeight.Set(new(big.Int))
}
