// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine hosts the staking pool: it serializes operations, wraps
// each one in a storage checkpoint so failures roll back atomically,
// drives the ledger transfers the pool's bookkeeping calls for, and emits
// events and metrics on success.
package engine

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/kr8tiv/staking/eventdb"
	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/ledger"
	"github.com/kr8tiv/staking/log"
	"github.com/kr8tiv/staking/metrics"
	"github.com/kr8tiv/staking/stakepool"
	"github.com/kr8tiv/staking/stakepool/emergency"
	"github.com/kr8tiv/staking/stakepool/reverts"
	"github.com/kr8tiv/staking/state"
)

var (
	logger = log.WithContext("pkg", "engine")

	metricOps = metrics.LazyLoadCounterVec("operation_count", []string{"op", "status"})
)

// Options identifies the pool and its custody accounts.
type Options struct {
	PoolAddress kr8tiv.Address // storage space of the pool records
	StakeVault  kr8tiv.Address // principal custody
	RewardVault kr8tiv.Address // reward custody
}

// Engine is the host of one staking pool.
type Engine struct {
	mu sync.Mutex

	state  *state.State
	pool   *stakepool.StakePool
	ledger ledger.Ledger
	events *eventdb.EventDB
	clock  Clock
	opts   Options
}

// New creates an engine. events may be nil when no event sink is wanted.
func New(st *state.State, lgr ledger.Ledger, events *eventdb.EventDB, clock Clock, opts Options) *Engine {
	return &Engine{
		state:  st,
		pool:   stakepool.New(opts.PoolAddress, st),
		ledger: lgr,
		events: events,
		clock:  clock,
		opts:   opts,
	}
}

// Pool exposes the underlying pool for read-only callers.
func (e *Engine) Pool() *stakepool.StakePool {
	return e.pool
}

// Initialize sets up the pool and commits.
func (e *Engine) Initialize(authority kr8tiv.Address, rate *big.Int, emergencyAdmins, criticalAdmins []kr8tiv.Address, requiredApprovals uint64) error {
	return e.run("initialize", authority, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.Initialize(authority, rate, emergencyAdmins, criticalAdmins, requiredApprovals, now); err != nil {
			return nil, err
		}
		return &eventdb.Event{Kind: eventdb.KindRateChange, Actor: authority, Amount: rate, Aux: "initial", Timestamp: now}, nil
	})
}

// Stake moves principal from the user into the stake vault and books it.
func (e *Engine) Stake(user kr8tiv.Address, amount *big.Int) error {
	return e.run("stake", user, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.Stake(user, amount, now); err != nil {
			return nil, err
		}
		// bookkeeping done, value moves last
		if err := e.ledger.Transfer(user, e.opts.StakeVault, amount); err != nil {
			return nil, errors.Wrap(err, "transfer principal in")
		}
		return &eventdb.Event{Kind: eventdb.KindStake, Actor: user, Amount: amount, Timestamp: now}, nil
	})
}

// InitiateUnstake starts the withdrawal cooldown.
func (e *Engine) InitiateUnstake(user kr8tiv.Address, amount *big.Int) error {
	return e.run("initiate_unstake", user, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.InitiateUnstake(user, amount, now); err != nil {
			return nil, err
		}
		return &eventdb.Event{Kind: eventdb.KindInitiateUnstake, Actor: user, Amount: amount, Timestamp: now}, nil
	})
}

// CompleteUnstake returns matured principal to the user.
func (e *Engine) CompleteUnstake(user kr8tiv.Address) (*big.Int, error) {
	var out *big.Int
	err := e.run("complete_unstake", user, func(now uint64) (*eventdb.Event, error) {
		amount, err := e.pool.CompleteUnstake(user, now)
		if err != nil {
			return nil, err
		}
		if err := e.ledger.Transfer(e.opts.StakeVault, user, amount); err != nil {
			return nil, errors.Wrap(err, "transfer principal out")
		}
		out = amount
		return &eventdb.Event{Kind: eventdb.KindCompleteUnstake, Actor: user, Amount: amount, Timestamp: now}, nil
	})
	return out, err
}

// ClaimRewards pays out pending rewards from the reward vault. A vault
// poorer than the claim aborts the operation.
func (e *Engine) ClaimRewards(user kr8tiv.Address) (*big.Int, error) {
	var out *big.Int
	err := e.run("claim", user, func(now uint64) (*eventdb.Event, error) {
		reward, err := e.pool.ClaimRewards(user, now)
		if err != nil {
			return nil, err
		}
		balance, err := e.ledger.Balance(e.opts.RewardVault)
		if err != nil {
			return nil, err
		}
		if balance.Cmp(reward) < 0 {
			return nil, reverts.State("insufficient reward balance")
		}
		if err := e.ledger.Transfer(e.opts.RewardVault, user, reward); err != nil {
			return nil, errors.Wrap(err, "transfer rewards out")
		}
		out = reward
		return &eventdb.Event{Kind: eventdb.KindClaim, Actor: user, Amount: reward, Timestamp: now}, nil
	})
	return out, err
}

// EmergencyUnstake returns principal instantly, forfeiting rewards.
func (e *Engine) EmergencyUnstake(user kr8tiv.Address) (*big.Int, error) {
	var out *big.Int
	err := e.run("emergency_unstake", user, func(now uint64) (*eventdb.Event, error) {
		amount, err := e.pool.EmergencyUnstake(user, now)
		if err != nil {
			return nil, err
		}
		if err := e.ledger.Transfer(e.opts.StakeVault, user, amount); err != nil {
			return nil, errors.Wrap(err, "transfer principal out")
		}
		out = amount
		return &eventdb.Event{Kind: eventdb.KindEmergencyUnstake, Actor: user, Amount: amount, Timestamp: now}, nil
	})
	return out, err
}

// DepositRewards funds the reward vault from the caller's account.
func (e *Engine) DepositRewards(caller kr8tiv.Address, amount *big.Int) error {
	return e.run("deposit", caller, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.RecordDeposit(caller, amount); err != nil {
			return nil, err
		}
		if err := e.ledger.Transfer(caller, e.opts.RewardVault, amount); err != nil {
			return nil, errors.Wrap(err, "fund reward vault")
		}
		return &eventdb.Event{Kind: eventdb.KindDeposit, Actor: caller, Amount: amount, Timestamp: now}, nil
	})
}

// UpdateRewardRate settles at the old rate and installs the new one.
func (e *Engine) UpdateRewardRate(caller kr8tiv.Address, rate *big.Int) error {
	return e.run("update_rate", caller, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.UpdateRewardRate(caller, rate, now); err != nil {
			return nil, err
		}
		return &eventdb.Event{Kind: eventdb.KindRateChange, Actor: caller, Amount: rate, Timestamp: now}, nil
	})
}

// Pause stops new-stake admission.
func (e *Engine) Pause(caller kr8tiv.Address) error {
	return e.run("pause", caller, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.Pause(caller, now); err != nil {
			return nil, err
		}
		return &eventdb.Event{Kind: eventdb.KindPause, Actor: caller, Timestamp: now}, nil
	})
}

// Unpause re-opens new-stake admission.
func (e *Engine) Unpause(caller kr8tiv.Address) error {
	return e.run("unpause", caller, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.Unpause(caller); err != nil {
			return nil, err
		}
		return &eventdb.Event{Kind: eventdb.KindUnpause, Actor: caller, Timestamp: now}, nil
	})
}

// RaiseEmergencyLevel tightens restrictions up to emergency mode.
func (e *Engine) RaiseEmergencyLevel(caller kr8tiv.Address, to emergency.Level) error {
	return e.run("raise_level", caller, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.RaiseEmergencyLevel(caller, to, now); err != nil {
			return nil, err
		}
		return &eventdb.Event{Kind: eventdb.KindEmergencyLevel, Actor: caller, Aux: to.String(), Timestamp: now}, nil
	})
}

// ProposeAction opens a multisig proposal.
func (e *Engine) ProposeAction(caller kr8tiv.Address, action emergency.Action) error {
	return e.run("propose", caller, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.ProposeAction(caller, action, now); err != nil {
			return nil, err
		}
		return &eventdb.Event{Kind: eventdb.KindProposal, Actor: caller, Aux: action.String(), Timestamp: now}, nil
	})
}

// ApproveAction approves a pending proposal.
func (e *Engine) ApproveAction(caller kr8tiv.Address, action emergency.Action) (bool, error) {
	var reached bool
	err := e.run("approve", caller, func(now uint64) (*eventdb.Event, error) {
		ok, err := e.pool.ApproveAction(caller, action, now)
		if err != nil {
			return nil, err
		}
		reached = ok
		return &eventdb.Event{Kind: eventdb.KindApproval, Actor: caller, Aux: action.String(), Timestamp: now}, nil
	})
	return reached, err
}

// ExecuteAction finalizes an approved proposal. AdminWithdraw drains both
// custody vaults to the caller after the pool clears its books.
func (e *Engine) ExecuteAction(caller kr8tiv.Address, action emergency.Action) error {
	return e.run("execute", caller, func(now uint64) (*eventdb.Event, error) {
		if err := e.pool.ExecuteAction(caller, action, now); err != nil {
			return nil, err
		}
		recovered := new(big.Int)
		if action == emergency.ActionAdminWithdraw {
			for _, vault := range []kr8tiv.Address{e.opts.StakeVault, e.opts.RewardVault} {
				balance, err := e.ledger.Balance(vault)
				if err != nil {
					return nil, err
				}
				if balance.Sign() == 0 {
					continue
				}
				if err := e.ledger.Transfer(vault, caller, balance); err != nil {
					return nil, errors.Wrap(err, "recover vault funds")
				}
				recovered.Add(recovered, balance)
			}
		}
		return &eventdb.Event{Kind: eventdb.KindExecution, Actor: caller, Amount: recovered, Aux: action.String(), Timestamp: now}, nil
	})
}

// SetBonus grants an early-holder bonus multiplier.
func (e *Engine) SetBonus(caller, user kr8tiv.Address, bonus uint64) error {
	return e.run("set_bonus", caller, func(now uint64) (*eventdb.Event, error) {
		return nil, e.pool.SetBonus(caller, user, bonus, now)
	})
}

// run executes one operation under the engine lock with a checkpoint
// around it. Any error reverts all record writes; success commits them,
// then emits the event and counts the metric.
func (e *Engine) run(op string, actor kr8tiv.Address, fn func(now uint64) (*eventdb.Event, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	checkpoint := e.state.NewCheckpoint()
	event, err := fn(now)
	if err != nil {
		e.state.RevertTo(checkpoint)
		metricOps().AddWithLabel(1, map[string]string{"op": op, "status": "reverted"})
		if reverts.IsRevertErr(err) {
			logger.Debug("operation reverted", "op", op, "actor", actor, "err", err)
		} else {
			logger.Error("operation failed", "op", op, "actor", actor, "err", err)
		}
		return err
	}
	if err := e.state.Commit(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "status": "ok"})

	if e.events != nil && event != nil {
		if err := e.events.Insert(event); err != nil {
			// the operation itself has committed, only the notification is lost
			logger.Warn("event insert failed", "op", op, "err", err)
		}
	}
	return nil
}
