// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/lvldb"
	"github.com/kr8tiv/staking/state"
)

var (
	owner = kr8tiv.BytesToAddress([]byte("owner"))
	pos   = kr8tiv.BytesToBytes32([]byte("pos"))
	v1    = kr8tiv.BytesToBytes32([]byte("v1"))
	v2    = kr8tiv.BytesToBytes32([]byte("v2"))
)

func TestStorageRoundTrip(t *testing.T) {
	st := state.New(nil)

	got, err := st.GetStorage(owner, pos)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	st.SetStorage(owner, pos, v1)
	got, err = st.GetStorage(owner, pos)
	require.NoError(t, err)
	assert.Equal(t, v1, got)

	// zero value deletes the record
	st.SetStorage(owner, pos, kr8tiv.Bytes32{})
	raw, err := st.GetRawStorage(owner, pos)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestCheckpointRevert(t *testing.T) {
	st := state.New(nil)
	st.SetStorage(owner, pos, v1)

	cp := st.NewCheckpoint()
	st.SetStorage(owner, pos, v2)

	got, err := st.GetStorage(owner, pos)
	require.NoError(t, err)
	assert.Equal(t, v2, got)

	st.RevertTo(cp)
	got, err = st.GetStorage(owner, pos)
	require.NoError(t, err)
	assert.Equal(t, v1, got)
}

func TestNestedCheckpoints(t *testing.T) {
	st := state.New(nil)

	cp1 := st.NewCheckpoint()
	st.SetStorage(owner, pos, v1)
	st.NewCheckpoint()
	st.SetStorage(owner, pos, v2)

	// reverting to the outer checkpoint discards both levels
	st.RevertTo(cp1)
	got, err := st.GetStorage(owner, pos)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestCommitPersists(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db)
	st.SetStorage(owner, pos, v1)
	require.NoError(t, st.Commit())

	// a fresh state over the same store sees the committed record
	fresh := state.New(db)
	got, err := fresh.GetStorage(owner, pos)
	require.NoError(t, err)
	assert.Equal(t, v1, got)
}

func TestUncommittedWritesNotPersisted(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db)
	st.SetStorage(owner, pos, v1)

	fresh := state.New(db)
	got, err := fresh.GetStorage(owner, pos)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
