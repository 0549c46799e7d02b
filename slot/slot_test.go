// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/state"
)

func newTestContext() *Context {
	addr := kr8tiv.BytesToAddress([]byte("slot-test"))
	return NewContext(addr, state.New(nil))
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, kr8tiv.BytesToBytes32([]byte("counter")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	require.NoError(t, u.Set(big.NewInt(1000)))
	require.NoError(t, u.Add(big.NewInt(234)))
	require.NoError(t, u.Sub(big.NewInt(34)))

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1200), v)

	require.NoError(t, u.SetUint64(42))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), v)
}

func TestUint256_RangeChecks(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, kr8tiv.BytesToBytes32([]byte("counter")))

	assert.ErrorIs(t, u.Set(big.NewInt(-1)), ErrValueOutOfRange)

	overflow := new(big.Int).Add(kr8tiv.MaxStorageValue, big.NewInt(1))
	assert.ErrorIs(t, u.Set(overflow), ErrValueOutOfRange)

	require.NoError(t, u.Set(kr8tiv.MaxStorageValue))
	assert.ErrorIs(t, u.Add(big.NewInt(1)), ErrValueOutOfRange)

	require.NoError(t, u.SetUint64(5))
	assert.ErrorIs(t, u.Sub(big.NewInt(6)), ErrValueOutOfRange)
}

type record struct {
	Amount *big.Int
	Since  uint64
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[kr8tiv.Address, *record](ctx, kr8tiv.BytesToBytes32([]byte("records")))

	alice := kr8tiv.BytesToAddress([]byte("alice"))

	// absent records decode to an allocated zero value, never nil
	r, err := m.Get(alice)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Zero(t, r.Since)

	has, err := m.Has(alice)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, m.Set(alice, &record{Amount: big.NewInt(77), Since: 12}))

	r, err = m.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(77), r.Amount)
	assert.Equal(t, uint64(12), r.Since)

	has, err = m.Has(alice)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, m.Delete(alice))
	has, err = m.Has(alice)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMapping_PositionsDoNotCollide(t *testing.T) {
	ctx := newTestContext()
	m1 := NewMapping[kr8tiv.Address, *record](ctx, kr8tiv.BytesToBytes32([]byte("m1")))
	m2 := NewMapping[kr8tiv.Address, *record](ctx, kr8tiv.BytesToBytes32([]byte("m2")))

	alice := kr8tiv.BytesToAddress([]byte("alice"))
	require.NoError(t, m1.Set(alice, &record{Amount: big.NewInt(1), Since: 1}))

	has, err := m2.Has(alice)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestAddress(t *testing.T) {
	ctx := newTestContext()
	a := NewAddress(ctx, kr8tiv.BytesToBytes32([]byte("authority")))

	addr, err := a.Get()
	require.NoError(t, err)
	assert.True(t, addr.IsZero())

	bob := kr8tiv.BytesToAddress([]byte("bob"))
	require.NoError(t, a.Set(bob))

	addr, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, bob, addr)

	// setting the zero address clears the slot
	require.NoError(t, a.Set(kr8tiv.Address{}))
	addr, err = a.Get()
	require.NoError(t, err)
	assert.True(t, addr.IsZero())
}

func TestConfigVariable(t *testing.T) {
	ctx := newTestContext()

	c := NewConfigVariable("test-duration", 100)
	assert.Equal(t, uint64(100), c.Get())

	// a stored non-zero value overrides the default
	ctx.state.SetStorage(ctx.address, c.Slot(), kr8tiv.BytesToBytes32(big.NewInt(25).Bytes()))
	c.Override(ctx)
	assert.Equal(t, uint64(25), c.Get())

	// the override is read once
	ctx.state.SetStorage(ctx.address, c.Slot(), kr8tiv.BytesToBytes32(big.NewInt(50).Bytes()))
	c.Override(ctx)
	assert.Equal(t, uint64(25), c.Get())

	// a zero stored value keeps the default
	fresh := NewConfigVariable("other-duration", 7)
	fresh.Override(ctx)
	assert.Equal(t, uint64(7), fresh.Get())
}
