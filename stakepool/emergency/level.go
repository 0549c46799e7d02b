// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package emergency

// Level is the severity of an emergency restriction. Transitions are
// admin-directed and need not be monotonic.
type Level uint8

const (
	None             Level = iota
	PauseNewStakes         // existing stakes keep earning, no new stakes
	PauseAll               // every user-facing operation refused
	EmergencyUnstake       // principal withdrawable instantly, rewards forfeited
	FullShutdown           // admin-controlled fund recovery only
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case PauseNewStakes:
		return "pause-new-stakes"
	case PauseAll:
		return "pause-all"
	case EmergencyUnstake:
		return "emergency-unstake"
	case FullShutdown:
		return "full-shutdown"
	default:
		return "unknown"
	}
}

// Op identifies a user-facing operation for gating.
type Op uint8

const (
	OpStake Op = iota
	OpInitiateUnstake
	OpCompleteUnstake
	OpClaim
	OpEmergencyUnstake
)

func (o Op) String() string {
	switch o {
	case OpStake:
		return "stake"
	case OpInitiateUnstake:
		return "initiate-unstake"
	case OpCompleteUnstake:
		return "complete-unstake"
	case OpClaim:
		return "claim"
	case OpEmergencyUnstake:
		return "emergency-unstake"
	default:
		return "unknown"
	}
}

// Action is the tag of a critical admin action that needs multisig.
type Action uint8

const (
	ActionResume Action = iota + 1
	ActionAdminWithdraw
	ActionGradualShutdown
)

func (a Action) String() string {
	switch a {
	case ActionResume:
		return "resume"
	case ActionAdminWithdraw:
		return "admin-withdraw"
	case ActionGradualShutdown:
		return "gradual-shutdown"
	default:
		return "unknown"
	}
}
