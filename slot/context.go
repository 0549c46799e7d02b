// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slot provides typed accessors over the record store, mimicking the
// storage layout of an on-chain contract: named slots, mappings with
// blake2b-derived positions, and 256-bit bounded integers.
package slot

import (
	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/state"
)

// Context binds slot accessors to the storage space owned by one address.
type Context struct {
	address kr8tiv.Address
	state   *state.State
}

func NewContext(address kr8tiv.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() kr8tiv.Address {
	return c.address
}
