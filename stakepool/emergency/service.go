// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package emergency implements the graded emergency controls of the pool:
// restriction levels, the two admin tiers, the multisig workflow for
// critical actions and the gradual shutdown wind-down.
package emergency

import (
	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/slot"
	"github.com/kr8tiv/staking/stakepool/reverts"
)

var (
	slotLevel             = kr8tiv.BytesToBytes32([]byte("emergency-level"))
	slotWindDownStart     = kr8tiv.BytesToBytes32([]byte("wind-down-start"))
	slotRequiredApprovals = kr8tiv.BytesToBytes32([]byte("required-approvals"))
	slotEmergencyAdmins   = kr8tiv.BytesToBytes32([]byte("emergency-admins"))
	slotCriticalAdmins    = kr8tiv.BytesToBytes32([]byte("critical-admins"))
	slotPendingActions    = kr8tiv.BytesToBytes32([]byte("pending-actions"))
)

type actionKey Action

func (k actionKey) Bytes() []byte {
	return []byte{byte(k)}
}

// PendingAction is a proposed critical action awaiting approvals.
type PendingAction struct {
	Action     uint8
	Proposer   kr8tiv.Address
	ProposedAt uint64
	Expiry     uint64
	Approvers  []kr8tiv.Address
	Required   uint64
	Executed   bool
}

func (a *PendingAction) isEmpty() bool {
	return a == nil || (a.ProposedAt == 0 && len(a.Approvers) == 0)
}

func (a *PendingAction) approvedBy(admin kr8tiv.Address) bool {
	for _, approver := range a.Approvers {
		if approver == admin {
			return true
		}
	}
	return false
}

// Service manages the pool's emergency state.
//
// Two admin tiers exist. The emergency tier can only tighten restrictions,
// up to and including emergency mode. The critical tier drives the multisig
// workflow that resumes operations, shuts the pool down or recovers funds.
type Service struct {
	ctx             *slot.Context
	level           *slot.Uint256
	windDownStart   *slot.Uint256
	required        *slot.Uint256
	emergencyAdmins *slot.Mapping[kr8tiv.Address, bool]
	criticalAdmins  *slot.Mapping[kr8tiv.Address, bool]
	pendingActions  *slot.Mapping[actionKey, *PendingAction]
}

func New(ctx *slot.Context) *Service {
	return &Service{
		ctx:             ctx,
		level:           slot.NewUint256(ctx, slotLevel),
		windDownStart:   slot.NewUint256(ctx, slotWindDownStart),
		required:        slot.NewUint256(ctx, slotRequiredApprovals),
		emergencyAdmins: slot.NewMapping[kr8tiv.Address, bool](ctx, slotEmergencyAdmins),
		criticalAdmins:  slot.NewMapping[kr8tiv.Address, bool](ctx, slotCriticalAdmins),
		pendingActions:  slot.NewMapping[actionKey, *PendingAction](ctx, slotPendingActions),
	}
}

// Init registers the admin sets and the multisig threshold. Critical admins
// are implicitly emergency admins as well.
func (s *Service) Init(emergencyAdmins, criticalAdmins []kr8tiv.Address, required uint64) error {
	if required == 0 || required > uint64(len(criticalAdmins)) {
		return reverts.Validation("required approvals must be within the critical admin set")
	}
	for _, admin := range emergencyAdmins {
		if err := s.emergencyAdmins.Set(admin, true); err != nil {
			return err
		}
	}
	for _, admin := range criticalAdmins {
		if err := s.criticalAdmins.Set(admin, true); err != nil {
			return err
		}
	}
	return s.required.SetUint64(required)
}

func (s *Service) Level() (Level, error) {
	stored, err := s.level.Get()
	if err != nil {
		return None, err
	}
	return Level(stored.Uint64()), nil
}

// EmergencyMode reports whether users may exit instantly forfeiting rewards.
func (s *Service) EmergencyMode() (bool, error) {
	level, err := s.Level()
	if err != nil {
		return false, err
	}
	return level == EmergencyUnstake, nil
}

// Paused reports whether new stakes are refused.
func (s *Service) Paused() (bool, error) {
	level, err := s.Level()
	if err != nil {
		return false, err
	}
	if level >= PauseNewStakes {
		return true, nil
	}
	start, err := s.windDownStart.Get()
	if err != nil {
		return false, err
	}
	return start.Sign() > 0, nil
}

func (s *Service) IsEmergencyAdmin(addr kr8tiv.Address) (bool, error) {
	ok, err := s.emergencyAdmins.Get(addr)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return s.criticalAdmins.Get(addr)
}

func (s *Service) IsCriticalAdmin(addr kr8tiv.Address) (bool, error) {
	return s.criticalAdmins.Get(addr)
}

// Raise tightens the restriction level. Only the emergency tier may call
// it, only upward, and never into FullShutdown, which needs multisig.
func (s *Service) Raise(caller kr8tiv.Address, to Level, now uint64) error {
	ok, err := s.IsEmergencyAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Authorization("caller is not an emergency admin")
	}
	if to >= FullShutdown {
		return reverts.Authorization("full shutdown requires a multisig action")
	}
	current, err := s.Level()
	if err != nil {
		return err
	}
	if to <= current {
		return reverts.State("emergency level can only be raised")
	}
	return s.setLevel(to)
}

// Resume returns the pool to normal operations. Called by the facade after
// a successful multisig execution, never directly by a caller.
func (s *Service) Resume() error {
	if err := s.windDownStart.SetUint64(0); err != nil {
		return err
	}
	return s.setLevel(None)
}

// Shutdown moves the pool to FullShutdown after a multisig execution.
func (s *Service) Shutdown() error {
	return s.setLevel(FullShutdown)
}

func (s *Service) setLevel(to Level) error {
	return s.level.SetUint64(uint64(to))
}

// StartWindDown begins the gradual shutdown: new stakes stop immediately,
// unstakes and claims stay open for the wind-down window.
func (s *Service) StartWindDown(now uint64) error {
	start, err := s.windDownStart.Get()
	if err != nil {
		return err
	}
	if start.Sign() > 0 {
		return reverts.State("wind-down already started")
	}
	return s.windDownStart.SetUint64(now)
}

// WindDownStart returns the wind-down start time, 0 when not started.
func (s *Service) WindDownStart() (uint64, error) {
	start, err := s.windDownStart.Get()
	if err != nil {
		return 0, err
	}
	return start.Uint64(), nil
}

// Allowed checks whether the given user-facing operation may proceed at
// now under the current level and wind-down window.
func (s *Service) Allowed(op Op, now uint64) error {
	level, err := s.Level()
	if err != nil {
		return err
	}

	switch level {
	case EmergencyUnstake:
		if op != OpEmergencyUnstake {
			return reverts.State("pool is in emergency mode")
		}
		return nil
	case FullShutdown:
		return reverts.State("pool is shut down")
	}
	if op == OpEmergencyUnstake {
		return reverts.State("pool is not in emergency mode")
	}
	if level == PauseAll {
		return reverts.State("pool is paused")
	}
	if level == PauseNewStakes && op == OpStake {
		return reverts.State("new stakes are paused")
	}

	start, err := s.WindDownStart()
	if err != nil {
		return err
	}
	if start > 0 {
		if now >= start+kr8tiv.WindDownDuration {
			return reverts.State("wind-down window has closed")
		}
		if op == OpStake {
			return reverts.State("pool is winding down")
		}
	}
	return nil
}

// Propose opens a multisig proposal for a critical action. The proposer
// approves implicitly. A live proposal for the same action blocks a new one.
func (s *Service) Propose(caller kr8tiv.Address, action Action, now uint64) error {
	if err := s.requireCritical(caller); err != nil {
		return err
	}
	existing, err := s.pendingActions.Get(actionKey(action))
	if err != nil {
		return err
	}
	if !existing.isEmpty() && !existing.Executed && now < existing.Expiry {
		return reverts.Emergency("action already proposed")
	}
	required, err := s.required.Get()
	if err != nil {
		return err
	}
	return s.pendingActions.Set(actionKey(action), &PendingAction{
		Action:     uint8(action),
		Proposer:   caller,
		ProposedAt: now,
		Expiry:     now + kr8tiv.ProposalLifetime,
		Approvers:  []kr8tiv.Address{caller},
		Required:   required.Uint64(),
	})
}

// Approve adds the caller's approval. It reports whether the threshold has
// been reached.
func (s *Service) Approve(caller kr8tiv.Address, action Action, now uint64) (bool, error) {
	if err := s.requireCritical(caller); err != nil {
		return false, err
	}
	pending, err := s.livePending(action, now)
	if err != nil {
		return false, err
	}
	if pending.approvedBy(caller) {
		return false, reverts.Emergency("action already approved by caller")
	}
	pending.Approvers = append(pending.Approvers, caller)
	if err := s.pendingActions.Set(actionKey(action), pending); err != nil {
		return false, err
	}
	return uint64(len(pending.Approvers)) >= pending.Required, nil
}

// Execute finalizes an action once the threshold is met and marks it
// executed. The caller applies the action's effect afterwards.
func (s *Service) Execute(caller kr8tiv.Address, action Action, now uint64) error {
	if err := s.requireCritical(caller); err != nil {
		return err
	}
	pending, err := s.livePending(action, now)
	if err != nil {
		return err
	}
	if uint64(len(pending.Approvers)) < pending.Required {
		return reverts.Emergency("insufficient approvals")
	}
	pending.Executed = true
	return s.pendingActions.Set(actionKey(action), pending)
}

// Pending returns the proposal for the given action, nil when none exists.
func (s *Service) Pending(action Action) (*PendingAction, error) {
	pending, err := s.pendingActions.Get(actionKey(action))
	if err != nil {
		return nil, err
	}
	if pending.isEmpty() {
		return nil, nil
	}
	return pending, nil
}

func (s *Service) livePending(action Action, now uint64) (*PendingAction, error) {
	pending, err := s.pendingActions.Get(actionKey(action))
	if err != nil {
		return nil, err
	}
	if pending.isEmpty() {
		return nil, reverts.Emergency("no such proposal")
	}
	if pending.Executed {
		return nil, reverts.Emergency("action already executed")
	}
	if now >= pending.Expiry {
		return nil, reverts.Emergency("proposal has expired")
	}
	return pending, nil
}

func (s *Service) requireCritical(caller kr8tiv.Address) error {
	ok, err := s.IsCriticalAdmin(caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Authorization("caller is not a critical admin")
	}
	return nil
}
