// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package poolstats

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/slot"
	"github.com/kr8tiv/staking/state"
	"github.com/kr8tiv/staking/stakepool/stakes"
)

func newSvc() (*Service, kr8tiv.Address, *state.State) {
	st := state.New(nil)
	addr := kr8tiv.BytesToAddress([]byte("ps"))
	svc := New(slot.NewContext(addr, st))
	return svc, addr, st
}

func TestService_Totals_Empty(t *testing.T) {
	svc, _, _ := newSvc()
	staked, weight, err := svc.Totals()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), staked.String())
	assert.Equal(t, big.NewInt(0).String(), weight.String())
}

func TestService_AddRemoveStake(t *testing.T) {
	svc, _, _ := newSvc()

	ws := stakes.NewWeightedStake(big.NewInt(1000), 200) // weight: 2000
	assert.NoError(t, svc.AddStake(ws))

	staked, weight, err := svc.Totals()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), staked)
	assert.Equal(t, big.NewInt(2000), weight)

	assert.NoError(t, svc.RemoveStake(ws))
	staked, weight, err = svc.Totals()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), staked.String())
	assert.Equal(t, big.NewInt(0).String(), weight.String())
}

func TestService_RemoveBelowZero(t *testing.T) {
	svc, _, _ := newSvc()

	assert.NoError(t, svc.AddStake(stakes.NewWeightedStake(big.NewInt(100), 100)))
	err := svc.RemoveStake(stakes.NewWeightedStake(big.NewInt(200), 100))
	assert.ErrorIs(t, err, slot.ErrValueOutOfRange)
}

func TestService_RebookWeight(t *testing.T) {
	svc, _, _ := newSvc()

	// stake 1000 at bronze, then the tier rises to silver
	assert.NoError(t, svc.AddStake(stakes.NewWeightedStake(big.NewInt(1000), 100)))
	assert.NoError(t, svc.RebookWeight(big.NewInt(1000), big.NewInt(1500)))

	staked, weight, err := svc.Totals()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), staked)
	assert.Equal(t, big.NewInt(1500), weight)

	// no-op rebook leaves everything alone
	assert.NoError(t, svc.RebookWeight(big.NewInt(1500), big.NewInt(1500)))
	_, weight, err = svc.Totals()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), weight)
}

func TestService_PendingDistribution(t *testing.T) {
	svc, _, _ := newSvc()

	pending, err := svc.PendingDistribution()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), pending.String())

	assert.NoError(t, svc.AddPendingDistribution(big.NewInt(500)))
	assert.NoError(t, svc.SubPendingDistribution(big.NewInt(200)))

	pending, err = svc.PendingDistribution()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(300), pending)

	// over-claim clamps to zero instead of failing
	assert.NoError(t, svc.SubPendingDistribution(big.NewInt(1000)))
	pending, err = svc.PendingDistribution()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), pending.String())
}

func TestService_ZeroPendingDistribution(t *testing.T) {
	svc, _, _ := newSvc()

	assert.NoError(t, svc.AddPendingDistribution(big.NewInt(777)))
	assert.NoError(t, svc.ZeroPendingDistribution())

	pending, err := svc.PendingDistribution()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(0).String(), pending.String())
}
