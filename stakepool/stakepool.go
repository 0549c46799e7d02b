// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakepool implements the reward accounting engine of the staking
// pool: tier-multiplied reward accrual, the stake lifecycle with its
// withdrawal cooldown, and the graded emergency controls.
//
// Every mutating operation settles the pool and the caller's stake before
// touching balances, so the accounting is independent of the order in which
// independent users' operations execute. The package mutates records only;
// moving actual value is the host's job, driven by the returned amounts.
package stakepool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/log"
	"github.com/kr8tiv/staking/slot"
	"github.com/kr8tiv/staking/stakepool/emergency"
	"github.com/kr8tiv/staking/stakepool/poolstats"
	"github.com/kr8tiv/staking/stakepool/reverts"
	"github.com/kr8tiv/staking/stakepool/rewards"
	"github.com/kr8tiv/staking/stakepool/schedule"
	"github.com/kr8tiv/staking/stakepool/stakes"
	"github.com/kr8tiv/staking/state"
)

var logger = log.WithContext("pkg", "stakepool")

// StakePool implements the operations of the staking pool over a keyed
// record store. One instance owns one pool.
type StakePool struct {
	authority        *slot.Address
	users            *slot.Mapping[kr8tiv.Address, *UserStake]
	rewardsDeposited *slot.Uint256

	rewardService    *rewards.Service
	statsService     *poolstats.Service
	emergencyService *emergency.Service

	ctx      *slot.Context
	cooldown *slot.ConfigVariable
}

// New creates a pool facade bound to the storage space of addr.
func New(addr kr8tiv.Address, st *state.State) *StakePool {
	ctx := slot.NewContext(addr, st)
	return &StakePool{
		authority:        slot.NewAddress(ctx, slotAuthority),
		users:            slot.NewMapping[kr8tiv.Address, *UserStake](ctx, slotUserStakes),
		rewardsDeposited: slot.NewUint256(ctx, slotRewardsDeposited),

		ctx:      ctx,
		cooldown: slot.NewConfigVariable("cooldown-duration", kr8tiv.CooldownDuration),

		rewardService:    rewards.New(ctx),
		statsService:     poolstats.New(ctx),
		emergencyService: emergency.New(ctx),
	}
}

// Initialize sets up the pool once: the authority, the emission rate and
// the emergency admin sets. Re-initialization is rejected.
func (p *StakePool) Initialize(
	authority kr8tiv.Address,
	rate *big.Int,
	emergencyAdmins, criticalAdmins []kr8tiv.Address,
	requiredApprovals uint64,
	now uint64,
) error {
	if authority.IsZero() {
		return reverts.Validation("authority must not be zero")
	}
	current, err := p.authority.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.State("pool already initialized")
	}
	if err := p.authority.Set(authority); err != nil {
		return err
	}
	if err := p.emergencyService.Init(emergencyAdmins, criticalAdmins, requiredApprovals); err != nil {
		return err
	}
	if err := p.rewardService.SetRate(rate, now); err != nil {
		return err
	}
	// anchor the accumulator clock
	if _, err := p.rewardService.Settle(new(big.Int), now); err != nil {
		return err
	}
	logger.Info("pool initialized", "authority", authority, "rate", rate)
	return nil
}

// Stake adds principal for the user. The first stake anchors the tier
// clock; top-ups keep it, so age keeps accruing across top-ups.
// The host transfers the principal in after this returns successfully.
func (p *StakePool) Stake(user kr8tiv.Address, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.Validation("stake amount must be greater than zero")
	}
	if err := p.emergencyService.Allowed(emergency.OpStake, now); err != nil {
		return err
	}

	u, err := p.settledUser(user, now)
	if err != nil {
		return err
	}

	if !u.Staked() {
		u.StakeStartTime = now
		u.LastClaimTime = now
	}
	u.LastStakeTime = now

	oldWeight := u.Weight
	u.Amount = new(big.Int).Add(u.Amount, amount)
	u.Weight = p.bookedWeight(u, now)

	delta := stakes.FromParts(amount, new(big.Int).Sub(u.Weight, oldWeight))
	if err := p.statsService.AddStake(delta); err != nil {
		return errors.Wrap(err, "add stake to totals")
	}
	return p.users.Set(user, u)
}

// InitiateUnstake starts the withdrawal cooldown for part or all of the
// user's principal. The principal keeps earning until completion.
func (p *StakePool) InitiateUnstake(user kr8tiv.Address, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.Validation("unstake amount must be greater than zero")
	}
	if err := p.emergencyService.Allowed(emergency.OpInitiateUnstake, now); err != nil {
		return err
	}

	u, err := p.user(user)
	if err != nil {
		return err
	}
	if !u.Staked() {
		return reverts.State("nothing staked")
	}
	if u.CooldownActive() {
		return reverts.State("cooldown already active")
	}
	if amount.Cmp(u.Amount) > 0 {
		return reverts.Validation("unstake amount exceeds staked principal")
	}

	if u, err = p.settledUser(user, now); err != nil {
		return err
	}
	p.cooldown.Override(p.ctx)
	u.CooldownAmount = amount
	u.CooldownEnd = now + p.cooldown.Get()
	return p.users.Set(user, u)
}

// CompleteUnstake finishes a matured cooldown and returns the principal
// the host must transfer back to the user. A full exit resets the tier
// clock, so any future re-stake starts at bronze again.
func (p *StakePool) CompleteUnstake(user kr8tiv.Address, now uint64) (*big.Int, error) {
	if err := p.emergencyService.Allowed(emergency.OpCompleteUnstake, now); err != nil {
		return nil, err
	}

	u, err := p.user(user)
	if err != nil {
		return nil, err
	}
	if !u.CooldownActive() {
		return nil, reverts.State("no cooldown active")
	}
	if now < u.CooldownEnd {
		return nil, reverts.State("cooldown not complete")
	}

	if u, err = p.settledUser(user, now); err != nil {
		return nil, err
	}

	amount := u.CooldownAmount
	oldWeight := u.Weight
	u.Amount = new(big.Int).Sub(u.Amount, amount)
	u.CooldownAmount = new(big.Int)
	u.CooldownEnd = 0
	u.Weight = p.bookedWeight(u, now)
	if u.Amount.Sign() == 0 {
		u.StakeStartTime = 0
	}

	removed := stakes.FromParts(amount, new(big.Int).Sub(oldWeight, u.Weight))
	if err := p.statsService.RemoveStake(removed); err != nil {
		return nil, errors.Wrap(err, "remove stake from totals")
	}
	if err := p.users.Set(user, u); err != nil {
		return nil, err
	}
	return amount, nil
}

// ClaimRewards settles and pays out everything pending. It returns the
// reward amount the host must transfer from the reward custody.
func (p *StakePool) ClaimRewards(user kr8tiv.Address, now uint64) (*big.Int, error) {
	if err := p.emergencyService.Allowed(emergency.OpClaim, now); err != nil {
		return nil, err
	}

	u, err := p.settledUser(user, now)
	if err != nil {
		return nil, err
	}
	reward := u.PendingRewards
	if reward.Sign() == 0 {
		return nil, reverts.State("no rewards to claim")
	}

	u.PendingRewards = new(big.Int)
	u.TotalClaimed = new(big.Int).Add(u.TotalClaimed, reward)
	if err := p.statsService.SubPendingDistribution(reward); err != nil {
		return nil, err
	}
	if err := p.users.Set(user, u); err != nil {
		return nil, err
	}
	return reward, nil
}

// EmergencyUnstake returns the user's principal without settlement,
// forfeiting all pending rewards. Only legal in emergency mode.
func (p *StakePool) EmergencyUnstake(user kr8tiv.Address, now uint64) (*big.Int, error) {
	if err := p.emergencyService.Allowed(emergency.OpEmergencyUnstake, now); err != nil {
		return nil, err
	}

	u, err := p.user(user)
	if err != nil {
		return nil, err
	}
	if !u.Staked() {
		return nil, reverts.State("nothing staked")
	}

	principal := u.Amount
	removed := stakes.FromParts(principal, u.Weight)
	if err := p.statsService.RemoveStake(removed); err != nil {
		return nil, errors.Wrap(err, "remove stake from totals")
	}

	forfeited := u.PendingRewards
	u.Amount = new(big.Int)
	u.Weight = new(big.Int)
	u.PendingRewards = new(big.Int)
	u.CooldownAmount = new(big.Int)
	u.CooldownEnd = 0
	u.StakeStartTime = 0
	if err := p.users.Set(user, u); err != nil {
		return nil, err
	}
	logger.Warn("emergency unstake", "user", user, "principal", principal, "forfeited", forfeited)
	return principal, nil
}

// UpdateRewardRate switches the emission rate. The pool settles at the old
// rate first, so time already served is never repriced.
func (p *StakePool) UpdateRewardRate(caller kr8tiv.Address, rate *big.Int, now uint64) error {
	if rate == nil || rate.Sign() < 0 {
		return reverts.Validation("reward rate must not be negative")
	}
	if err := p.requireAuthority(caller); err != nil {
		return err
	}
	if err := p.settlePool(now); err != nil {
		return err
	}
	old, err := p.rewardService.Rate()
	if err != nil {
		return err
	}
	if err := p.rewardService.SetRate(rate, now); err != nil {
		return err
	}
	logger.Info("reward rate updated", "old", old, "new", rate)
	return nil
}

// RecordDeposit books a reward custody top-up, after the host has moved
// the funds.
func (p *StakePool) RecordDeposit(caller kr8tiv.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.Validation("deposit amount must be greater than zero")
	}
	if err := p.requireAuthority(caller); err != nil {
		return err
	}
	return p.rewardsDeposited.Add(amount)
}

// Pause stops new-stake admission. Any emergency admin may pause.
func (p *StakePool) Pause(caller kr8tiv.Address, now uint64) error {
	return p.emergencyService.Raise(caller, emergency.PauseNewStakes, now)
}

// Unpause re-opens new-stake admission. Only the critical tier may, and
// only from the plain pause; deeper restrictions need a multisig resume.
func (p *StakePool) Unpause(caller kr8tiv.Address) error {
	ok, err := p.emergencyService.IsCriticalAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Authorization("caller is not a critical admin")
	}
	level, err := p.emergencyService.Level()
	if err != nil {
		return err
	}
	if level != emergency.PauseNewStakes {
		return reverts.State("current restriction needs a multisig resume")
	}
	return p.emergencyService.Resume()
}

// RaiseEmergencyLevel tightens restrictions up to emergency mode.
func (p *StakePool) RaiseEmergencyLevel(caller kr8tiv.Address, to emergency.Level, now uint64) error {
	return p.emergencyService.Raise(caller, to, now)
}

// ProposeAction opens a multisig proposal for a critical action.
func (p *StakePool) ProposeAction(caller kr8tiv.Address, action emergency.Action, now uint64) error {
	return p.emergencyService.Propose(caller, action, now)
}

// ApproveAction approves a pending proposal; reports threshold reached.
func (p *StakePool) ApproveAction(caller kr8tiv.Address, action emergency.Action, now uint64) (bool, error) {
	return p.emergencyService.Approve(caller, action, now)
}

// ExecuteAction finalizes an approved proposal and applies its effect.
// For AdminWithdraw the pool only clears its books; draining the custody
// accounts is the host's move.
func (p *StakePool) ExecuteAction(caller kr8tiv.Address, action emergency.Action, now uint64) error {
	if action == emergency.ActionAdminWithdraw {
		emergencyMode, err := p.emergencyService.EmergencyMode()
		if err != nil {
			return err
		}
		paused, err := p.emergencyService.Paused()
		if err != nil {
			return err
		}
		if !emergencyMode || !paused {
			return reverts.Emergency("admin withdraw requires emergency mode and paused")
		}
	}
	if err := p.emergencyService.Execute(caller, action, now); err != nil {
		return err
	}
	switch action {
	case emergency.ActionResume:
		return p.emergencyService.Resume()
	case emergency.ActionGradualShutdown:
		return p.emergencyService.StartWindDown(now)
	case emergency.ActionAdminWithdraw:
		if err := p.emergencyService.Shutdown(); err != nil {
			return err
		}
		if err := p.statsService.ZeroTotals(); err != nil {
			return err
		}
		return p.statsService.ZeroPendingDistribution()
	default:
		return reverts.Emergency("unknown action")
	}
}

//
// Getters - no state change
//

// Authority returns the pool authority identity.
func (p *StakePool) Authority() (kr8tiv.Address, error) {
	return p.authority.Get()
}

// GetStake returns the user's record, zero-valued when none exists.
func (p *StakePool) GetStake(user kr8tiv.Address) (*UserStake, error) {
	return p.user(user)
}

// PendingAt previews the user's claimable rewards at now, without
// mutating anything.
func (p *StakePool) PendingAt(user kr8tiv.Address, now uint64) (*big.Int, error) {
	u, err := p.user(user)
	if err != nil {
		return nil, err
	}
	pending := new(big.Int).Set(u.PendingRewards)
	if !u.Staked() || now <= u.LastClaimTime {
		return pending, nil
	}
	accrued, err := p.rewardService.Accrue(u.Amount, u.Bonus, u.StakeStartTime, u.LastClaimTime, now)
	if err != nil {
		return nil, err
	}
	return pending.Add(pending, accrued), nil
}

// Totals returns total staked principal and total booked weight.
func (p *StakePool) Totals() (*big.Int, *big.Int, error) {
	return p.statsService.Totals()
}

// PendingDistribution returns settlement-attributed, unclaimed rewards.
func (p *StakePool) PendingDistribution() (*big.Int, error) {
	return p.statsService.PendingDistribution()
}

// RewardRate returns the current emission rate.
func (p *StakePool) RewardRate() (*big.Int, error) {
	return p.rewardService.Rate()
}

// RewardPerWeight returns the accumulator value.
func (p *StakePool) RewardPerWeight() (*big.Int, error) {
	return p.rewardService.RewardPerWeight()
}

// RewardsDeposited returns the lifetime reward custody funding.
func (p *StakePool) RewardsDeposited() (*big.Int, error) {
	return p.rewardsDeposited.Get()
}

// EmergencyLevel returns the current restriction level.
func (p *StakePool) EmergencyLevel() (emergency.Level, error) {
	return p.emergencyService.Level()
}

// EmergencyMode reports whether emergency unstaking is open.
func (p *StakePool) EmergencyMode() (bool, error) {
	return p.emergencyService.EmergencyMode()
}

// Paused reports whether new stakes are refused.
func (p *StakePool) Paused() (bool, error) {
	return p.emergencyService.Paused()
}

// PendingAction returns the live proposal for an action, nil when none.
func (p *StakePool) PendingAction(action emergency.Action) (*emergency.PendingAction, error) {
	return p.emergencyService.Pending(action)
}

// SetBonus grants or adjusts a user's early-holder bonus multiplier.
// A bonus below the neutral multiplier is meaningless and rejected.
func (p *StakePool) SetBonus(caller, user kr8tiv.Address, bonus uint64, now uint64) error {
	if bonus != 0 && bonus < kr8tiv.MultiplierScale {
		return reverts.Validation("bonus below the neutral multiplier")
	}
	if err := p.requireAuthority(caller); err != nil {
		return err
	}
	u, err := p.settledUser(user, now)
	if err != nil {
		return err
	}
	u.Bonus = bonus
	oldWeight := u.Weight
	u.Weight = p.bookedWeight(u, now)
	if err := p.statsService.RebookWeight(oldWeight, u.Weight); err != nil {
		return err
	}
	return p.users.Set(user, u)
}

//
// internals
//

// settlePool advances the pool accumulator to now and books the newly
// attributed rewards into the distribution ledger.
func (p *StakePool) settlePool(now uint64) error {
	_, totalWeight, err := p.statsService.Totals()
	if err != nil {
		return err
	}
	distributed, err := p.rewardService.Settle(totalWeight, now)
	if err != nil {
		return err
	}
	if distributed.Sign() > 0 {
		if err := p.statsService.AddPendingDistribution(distributed); err != nil {
			return err
		}
	}
	return nil
}

// settledUser settles the pool, then the user's stake: newly accrued
// rewards fold into PendingRewards, the reward debt snaps to the current
// accumulator and the booked weight moves to the current tier.
func (p *StakePool) settledUser(user kr8tiv.Address, now uint64) (*UserStake, error) {
	if err := p.settlePool(now); err != nil {
		return nil, err
	}
	u, err := p.user(user)
	if err != nil {
		return nil, err
	}
	if u.Staked() && now > u.LastClaimTime {
		accrued, err := p.rewardService.Accrue(u.Amount, u.Bonus, u.StakeStartTime, u.LastClaimTime, now)
		if err != nil {
			return nil, err
		}
		u.PendingRewards = u.PendingRewards.Add(u.PendingRewards, accrued)
	}
	u.LastClaimTime = now

	acc, err := p.rewardService.RewardPerWeight()
	if err != nil {
		return nil, err
	}
	u.RewardDebt = acc

	oldWeight := u.Weight
	u.Weight = p.bookedWeight(u, now)
	if err := p.statsService.RebookWeight(oldWeight, u.Weight); err != nil {
		return nil, err
	}
	return u, nil
}

// bookedWeight prices the user's principal at the multiplier in force now.
func (p *StakePool) bookedWeight(u *UserStake, now uint64) *big.Int {
	if u.Amount.Sign() == 0 {
		return new(big.Int)
	}
	tier := schedule.TierOf(u.StakeStartTime, now)
	return stakes.NewWeightedStake(u.Amount, schedule.Combined(tier, u.Bonus)).Weight()
}

func (p *StakePool) user(user kr8tiv.Address) (*UserStake, error) {
	u, err := p.users.Get(user)
	if err != nil {
		return nil, err
	}
	return u.normalize(), nil
}

func (p *StakePool) requireAuthority(caller kr8tiv.Address) error {
	authority, err := p.authority.Get()
	if err != nil {
		return err
	}
	if caller == authority && !authority.IsZero() {
		return nil
	}
	ok, err := p.emergencyService.IsCriticalAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Authorization("caller is not the pool authority")
	}
	return nil
}
