// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger defines the value-transfer capability the engine drives.
// The engine validates and mutates its own bookkeeping first and calls the
// ledger last, so a failing transfer aborts the whole operation cleanly.
package ledger

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/kr8tiv/staking/kr8tiv"
)

// ErrInsufficientBalance is returned when a transfer exceeds the source
// account's balance.
var ErrInsufficientBalance = errors.New("ledger: insufficient balance")

// Ledger moves value between custody accounts. A transfer either fully
// succeeds or leaves both accounts untouched.
type Ledger interface {
	Transfer(from, to kr8tiv.Address, amount *big.Int) error
	Balance(addr kr8tiv.Address) (*big.Int, error)
}

// Mem is an in-memory ledger, used by tests and standalone deployments
// where custody is simulated rather than delegated to an external system.
type Mem struct {
	mu       sync.Mutex
	balances map[kr8tiv.Address]*big.Int
}

func NewMem() *Mem {
	return &Mem{balances: make(map[kr8tiv.Address]*big.Int)}
}

// Mint credits an account out of thin air. Funding helper, not part of
// the Ledger interface.
func (l *Mem) Mint(addr kr8tiv.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] = new(big.Int).Add(l.balance(addr), amount)
}

func (l *Mem) Transfer(from, to kr8tiv.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("ledger: negative transfer")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.balance(from)
	if src.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "transfer %v from %v", amount, from)
	}
	l.balances[from] = new(big.Int).Sub(src, amount)
	l.balances[to] = new(big.Int).Add(l.balance(to), amount)
	return nil
}

func (l *Mem) Balance(addr kr8tiv.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance(addr)), nil
}

func (l *Mem) balance(addr kr8tiv.Address) *big.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return new(big.Int)
}
