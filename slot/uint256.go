// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kr8tiv/staking/kr8tiv"
)

var (
	// ErrValueOutOfRange is returned when a value does not fit the slot.
	// Accounting math that trips it must abort the whole operation.
	ErrValueOutOfRange = errors.New("slot: value out of range")
)

// Uint256 is a storage wrapper for a single unsigned 256-bit integer slot.
// All writes are range checked: negative values and values above 2^256-1 are
// rejected instead of being truncated.
type Uint256 struct {
	context *Context
	pos     kr8tiv.Bytes32
}

func NewUint256(context *Context, pos kr8tiv.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 || value.Cmp(kr8tiv.MaxStorageValue) > 0 {
		return ErrValueOutOfRange
	}
	u.context.state.SetStorage(u.context.address, u.pos, kr8tiv.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) SetUint64(value uint64) error {
	return u.Set(new(big.Int).SetUint64(value))
}

// Add increases the stored value by delta.
func (u *Uint256) Add(delta *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(stored.Add(stored, delta))
}

// Sub decreases the stored value by delta.
// Going below zero is an accounting corruption and is rejected.
func (u *Uint256) Sub(delta *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(stored.Sub(stored, delta))
}
