// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package eventdb

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr8tiv/staking/kr8tiv"
)

func newDB(t *testing.T) *EventDB {
	t.Helper()
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestInsertAndFilter(t *testing.T) {
	db := newDB(t)
	alice := kr8tiv.BytesToAddress([]byte("alice"))
	bob := kr8tiv.BytesToAddress([]byte("bob"))

	require.NoError(t, db.Insert(
		&Event{Kind: KindStake, Actor: alice, Amount: big.NewInt(1000), Timestamp: 100},
		&Event{Kind: KindStake, Actor: bob, Amount: big.NewInt(2000), Timestamp: 200},
		&Event{Kind: KindClaim, Actor: alice, Amount: big.NewInt(50), Timestamp: 300},
	))

	all, err := db.Filter(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, KindStake, all[0].Kind)
	assert.Equal(t, big.NewInt(1000), all[0].Amount)
	assert.Equal(t, alice, all[0].Actor)

	stakesOnly, err := db.Filter(&Filter{Kind: KindStake})
	require.NoError(t, err)
	assert.Len(t, stakesOnly, 2)

	aliceOnly, err := db.Filter(&Filter{Actor: &alice})
	require.NoError(t, err)
	require.Len(t, aliceOnly, 2)
	assert.Equal(t, KindClaim, aliceOnly[1].Kind)
}

func TestFilter_RangeAndOrder(t *testing.T) {
	db := newDB(t)
	actor := kr8tiv.BytesToAddress([]byte("actor"))

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, db.Insert(&Event{
			Kind:      KindClaim,
			Actor:     actor,
			Amount:    new(big.Int).SetUint64(i),
			Timestamp: i * 100,
		}))
	}

	mid, err := db.Filter(&Filter{Range: &Range{From: 200, To: 400}})
	require.NoError(t, err)
	require.Len(t, mid, 3)
	assert.Equal(t, uint64(200), mid[0].Timestamp)

	desc, err := db.Filter(&Filter{Order: DESC, Options: &Options{Offset: 0, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, uint64(500), desc[0].Timestamp)
	assert.Equal(t, uint64(400), desc[1].Timestamp)
}

func TestInsert_Empty(t *testing.T) {
	db := newDB(t)
	assert.NoError(t, db.Insert())
}
