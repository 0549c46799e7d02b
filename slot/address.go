// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/kr8tiv/staking/kr8tiv"
)

// Address is a storage wrapper for a single address slot.
type Address struct {
	context *Context
	pos     kr8tiv.Bytes32
}

func NewAddress(context *Context, pos kr8tiv.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (addr kr8tiv.Address, err error) {
	err = a.context.state.DecodeStorage(a.context.address, a.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		var b []byte
		if err := rlp.DecodeBytes(raw, &b); err != nil {
			return err
		}
		addr = kr8tiv.BytesToAddress(b)
		return nil
	})
	return
}

func (a *Address) Set(addr kr8tiv.Address) error {
	return a.context.state.EncodeStorage(a.context.address, a.pos, func() ([]byte, error) {
		if addr.IsZero() {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr.Bytes())
	})
}
