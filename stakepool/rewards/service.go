// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards keeps the pool's reward accounting: the emission rate
// with its change history, the reward-per-weight accumulator that
// attributes emissions to the pool as time passes, and the per-stake
// accrual that prices an interval at the tier multipliers in force.
package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/slot"
	"github.com/kr8tiv/staking/stakepool/schedule"
)

var (
	slotRewardPerWeight = kr8tiv.BytesToBytes32([]byte("reward-per-weight"))
	slotLastUpdateTime  = kr8tiv.BytesToBytes32([]byte("last-update-time"))
	slotRewardRate      = kr8tiv.BytesToBytes32([]byte("reward-rate"))
	slotRateHistory     = kr8tiv.BytesToBytes32([]byte("rate-history"))
)

// rateEpoch records a rate taking effect at Since. Epochs are stored in
// ascending order of Since; the last epoch with Since <= t rules t.
type rateEpoch struct {
	Since uint64
	Rate  *big.Int
}

type Service struct {
	ctx             *slot.Context
	rewardPerWeight *slot.Uint256
	lastUpdateTime  *slot.Uint256
	rewardRate      *slot.Uint256
}

func New(ctx *slot.Context) *Service {
	return &Service{
		ctx:             ctx,
		rewardPerWeight: slot.NewUint256(ctx, slotRewardPerWeight),
		lastUpdateTime:  slot.NewUint256(ctx, slotLastUpdateTime),
		rewardRate:      slot.NewUint256(ctx, slotRewardRate),
	}
}

// Rate returns the current emission rate, in reward units per weight unit
// per second at kr8tiv.RateScale.
func (s *Service) Rate() (*big.Int, error) {
	return s.rewardRate.Get()
}

// RewardPerWeight returns the accumulator value, scaled by
// kr8tiv.AccumulatorScale.
func (s *Service) RewardPerWeight() (*big.Int, error) {
	return s.rewardPerWeight.Get()
}

// LastUpdateTime returns the timestamp of the last settlement.
func (s *Service) LastUpdateTime() (uint64, error) {
	last, err := s.lastUpdateTime.Get()
	if err != nil {
		return 0, err
	}
	return last.Uint64(), nil
}

// SetRate installs a new emission rate effective from now. The previous
// rate keeps pricing everything before now; callers must settle first.
func (s *Service) SetRate(rate *big.Int, now uint64) error {
	if rate.Sign() < 0 {
		return slot.ErrValueOutOfRange
	}
	if err := s.rewardRate.Set(rate); err != nil {
		return err
	}

	epochs, err := s.rateEpochs()
	if err != nil {
		return err
	}
	if n := len(epochs); n > 0 && epochs[n-1].Since == now {
		epochs[n-1].Rate = rate
	} else {
		epochs = append(epochs, rateEpoch{Since: now, Rate: rate})
	}
	return s.ctx.State().EncodeStorage(s.ctx.Address(), slotRateHistory, func() ([]byte, error) {
		return rlp.EncodeToBytes(epochs)
	})
}

// Settle advances the accumulator to now and returns the reward amount
// attributed to the pool over the elapsed interval. It is idempotent:
// settling twice at the same timestamp changes nothing. With zero total
// weight the clock still advances but nothing is attributed.
func (s *Service) Settle(totalWeight *big.Int, now uint64) (*big.Int, error) {
	last, err := s.LastUpdateTime()
	if err != nil {
		return nil, err
	}
	if now <= last {
		return new(big.Int), nil
	}
	if err := s.lastUpdateTime.Set(new(big.Int).SetUint64(now)); err != nil {
		return nil, err
	}
	if totalWeight.Sign() == 0 {
		return new(big.Int), nil
	}

	rate, err := s.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	elapsed := new(big.Int).SetUint64(now - last)

	// distributed = rate * elapsed * totalWeight / RateScale
	distributed := new(big.Int).Mul(rate, elapsed)
	distributed.Mul(distributed, totalWeight)
	distributed.Div(distributed, kr8tiv.RateScale)

	// rewardPerWeight += rate * elapsed * AccumulatorScale / RateScale
	delta := new(big.Int).Mul(rate, elapsed)
	delta.Mul(delta, kr8tiv.AccumulatorScale)
	delta.Div(delta, kr8tiv.RateScale)
	if err := s.rewardPerWeight.Add(delta); err != nil {
		return nil, errors.Wrap(err, "advance reward accumulator")
	}
	return distributed, nil
}

// PendingShare prices a stake's share of the attributed rewards: its
// weight times the accumulator growth since the stake's debt snapshot.
// A debt ahead of the accumulator yields zero, never a negative share.
func (s *Service) PendingShare(weight, debt *big.Int) (*big.Int, error) {
	acc, err := s.rewardPerWeight.Get()
	if err != nil {
		return nil, err
	}
	if acc.Cmp(debt) <= 0 {
		return new(big.Int), nil
	}
	share := new(big.Int).Sub(acc, debt)
	share.Mul(share, weight)
	share.Div(share, kr8tiv.AccumulatorScale)
	return share, nil
}

// Accrue prices the interval [from, to) for a stake of the given amount,
// slicing it at the tier boundaries of stakeStart and at every rate
// change, so that a rate update never reprices time already served.
// Each slice earns amount * rate * duration * multiplier, where the
// multiplier is the larger of the slice's tier and the stake's bonus.
func (s *Service) Accrue(amount *big.Int, bonus uint64, stakeStart, from, to uint64) (*big.Int, error) {
	total := new(big.Int)
	if to <= from || amount.Sign() == 0 {
		return total, nil
	}

	epochs, err := s.rateEpochs()
	if err != nil {
		return nil, err
	}
	divisor := new(big.Int).Mul(kr8tiv.RateScale, new(big.Int).SetUint64(kr8tiv.MultiplierScale))

	for _, seg := range schedule.Split(stakeStart, from, to) {
		multiplier := new(big.Int).SetUint64(schedule.Combined(seg.Tier, bonus))
		for _, slice := range sliceByEpochs(epochs, seg.From, seg.To) {
			if slice.rate.Sign() == 0 {
				continue
			}
			part := new(big.Int).Mul(amount, slice.rate)
			part.Mul(part, new(big.Int).SetUint64(slice.to-slice.from))
			part.Mul(part, multiplier)
			part.Div(part, divisor)
			total.Add(total, part)
		}
	}
	return total, nil
}

type rateSlice struct {
	from uint64
	to   uint64
	rate *big.Int
}

// sliceByEpochs cuts [from, to) at every epoch boundary inside it. Time
// before the first epoch carries a zero rate.
func sliceByEpochs(epochs []rateEpoch, from, to uint64) []rateSlice {
	slices := make([]rateSlice, 0, 2)
	cursor := from
	rate := new(big.Int)
	for _, ep := range epochs {
		if ep.Since <= cursor {
			rate = ep.Rate
			continue
		}
		if ep.Since >= to {
			break
		}
		slices = append(slices, rateSlice{from: cursor, to: ep.Since, rate: rate})
		cursor = ep.Since
		rate = ep.Rate
	}
	return append(slices, rateSlice{from: cursor, to: to, rate: rate})
}

func (s *Service) rateEpochs() (epochs []rateEpoch, err error) {
	err = s.ctx.State().DecodeStorage(s.ctx.Address(), slotRateHistory, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &epochs)
	})
	return
}
