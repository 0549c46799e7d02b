// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr8tiv/staking/kr8tiv"
)

func TestMemLedger(t *testing.T) {
	l := NewMem()
	a := kr8tiv.BytesToAddress([]byte("a"))
	b := kr8tiv.BytesToAddress([]byte("b"))

	l.Mint(a, big.NewInt(1000))

	require.NoError(t, l.Transfer(a, b, big.NewInt(400)))

	ba, err := l.Balance(a)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600), ba)

	bb, err := l.Balance(b)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(400), bb)
}

func TestMemLedger_Insufficient(t *testing.T) {
	l := NewMem()
	a := kr8tiv.BytesToAddress([]byte("a"))
	b := kr8tiv.BytesToAddress([]byte("b"))

	err := l.Transfer(a, b, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// failed transfer leaves both sides untouched
	ba, err := l.Balance(a)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), ba.String())
	bb, err := l.Balance(b)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), bb.String())
}

func TestMemLedger_Negative(t *testing.T) {
	l := NewMem()
	a := kr8tiv.BytesToAddress([]byte("a"))
	assert.Error(t, l.Transfer(a, a, big.NewInt(-1)))
}
