// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the errors that abort a staking operation.
// A revert carries a class so callers can distinguish a bad request from
// corrupted accounting without parsing messages.
package reverts

import (
	"errors"
)

// Class buckets revert reasons.
type Class uint8

const (
	ClassValidation Class = iota // malformed input: zero amount, bad percentage
	ClassState                   // operation not legal in the current lifecycle state
	ClassAuthorization           // caller is not the owner/admin the operation requires
	ClassArithmetic              // checked accounting math would overflow or underflow
	ClassEmergency               // emergency-workflow violation
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassState:
		return "state"
	case ClassAuthorization:
		return "authorization"
	case ClassArithmetic:
		return "arithmetic"
	case ClassEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

type ErrRevert struct {
	class   Class
	message string
}

func New(class Class, message string) *ErrRevert {
	return &ErrRevert{
		class:   class,
		message: message,
	}
}

func Validation(message string) *ErrRevert {
	return New(ClassValidation, message)
}

func State(message string) *ErrRevert {
	return New(ClassState, message)
}

func Authorization(message string) *ErrRevert {
	return New(ClassAuthorization, message)
}

func Arithmetic(message string) *ErrRevert {
	return New(ClassArithmetic, message)
}

func Emergency(message string) *ErrRevert {
	return New(ClassEmergency, message)
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Class() Class {
	return e.class
}

// IsRevertErr reports whether err aborts an operation as a revert, as
// opposed to an infrastructure failure.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// ClassOf returns the revert class of err, if err is a revert.
func ClassOf(err error) (Class, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.class, true
	}
	return 0, false
}
