// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr8tiv/staking/kr8tiv"
)

func TestTierOf(t *testing.T) {
	start := uint64(1_000_000)

	tests := []struct {
		now  uint64
		tier Tier
	}{
		{start, Bronze},
		{start + 1, Bronze},
		{start + 6*kr8tiv.DaySeconds, Bronze},
		{start + 7*kr8tiv.DaySeconds - 1, Bronze},
		{start + 7*kr8tiv.DaySeconds, Silver},
		{start + 29*kr8tiv.DaySeconds, Silver},
		{start + 30*kr8tiv.DaySeconds, Gold},
		{start + 89*kr8tiv.DaySeconds, Gold},
		{start + 90*kr8tiv.DaySeconds, Platinum},
		{start + 400*kr8tiv.DaySeconds, Platinum},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierOf(start, tt.now), "now=%d", tt.now)
	}

	// a stake can never predate itself
	assert.Equal(t, Bronze, TierOf(start, start-1))
}

func TestMultipliers(t *testing.T) {
	assert.Equal(t, uint64(100), Bronze.Multiplier())
	assert.Equal(t, uint64(150), Silver.Multiplier())
	assert.Equal(t, uint64(200), Gold.Multiplier())
	assert.Equal(t, uint64(250), Platinum.Multiplier())
}

func TestCombined(t *testing.T) {
	// bonus only applies where it beats the tier
	assert.Equal(t, uint64(120), Combined(Bronze, 120))
	assert.Equal(t, uint64(150), Combined(Silver, 120))
	assert.Equal(t, uint64(200), Combined(Gold, 120))
	assert.Equal(t, uint64(300), Combined(Platinum, 300))
	assert.Equal(t, uint64(100), Combined(Bronze, 0))
}

func TestSplitSingleTier(t *testing.T) {
	start := uint64(1000)

	// entirely within bronze
	segs := Split(start, start, start+kr8tiv.DaySeconds)
	require.Len(t, segs, 1)
	assert.Equal(t, Bronze, segs[0].Tier)
	assert.Equal(t, kr8tiv.DaySeconds, segs[0].Duration())

	// entirely within platinum
	from := start + 100*kr8tiv.DaySeconds
	segs = Split(start, from, from+5*kr8tiv.DaySeconds)
	require.Len(t, segs, 1)
	assert.Equal(t, Platinum, segs[0].Tier)
}

func TestSplitAcrossBoundaries(t *testing.T) {
	start := uint64(1000)

	// 0..31 days crosses silver at day 7 and gold at day 30
	segs := Split(start, start, start+31*kr8tiv.DaySeconds)
	require.Len(t, segs, 3)
	assert.Equal(t, Bronze, segs[0].Tier)
	assert.Equal(t, 7*kr8tiv.DaySeconds, segs[0].Duration())
	assert.Equal(t, Silver, segs[1].Tier)
	assert.Equal(t, 23*kr8tiv.DaySeconds, segs[1].Duration())
	assert.Equal(t, Gold, segs[2].Tier)
	assert.Equal(t, kr8tiv.DaySeconds, segs[2].Duration())

	// full sweep through all four tiers
	segs = Split(start, start, start+100*kr8tiv.DaySeconds)
	require.Len(t, segs, 4)
	assert.Equal(t, Bronze, segs[0].Tier)
	assert.Equal(t, Silver, segs[1].Tier)
	assert.Equal(t, Gold, segs[2].Tier)
	assert.Equal(t, Platinum, segs[3].Tier)
}

func TestSplitDurationsSum(t *testing.T) {
	start := uint64(7777)
	cases := [][2]uint64{
		{start, start + 1},
		{start + 3, start + 12*kr8tiv.DaySeconds},
		{start + 7*kr8tiv.DaySeconds, start + 30*kr8tiv.DaySeconds},
		{start, start + 365*kr8tiv.DaySeconds},
		{start + 89*kr8tiv.DaySeconds, start + 91*kr8tiv.DaySeconds},
	}
	for _, c := range cases {
		segs := Split(start, c[0], c[1])
		var total uint64
		for i, s := range segs {
			require.Less(t, s.From, s.To, "segment %d empty", i)
			if i > 0 {
				require.Equal(t, segs[i-1].To, s.From, "segments must be contiguous")
			}
			total += s.Duration()
		}
		assert.Equal(t, c[1]-c[0], total)
	}
}

func TestSplitEmptyInterval(t *testing.T) {
	start := uint64(1000)
	assert.Nil(t, Split(start, start+50, start+50))
	assert.Nil(t, Split(start, start+50, start+10))
}

func TestSplitBoundaryExact(t *testing.T) {
	start := uint64(1000)

	// interval beginning exactly on a boundary starts in the new tier
	from := start + 7*kr8tiv.DaySeconds
	segs := Split(start, from, from+kr8tiv.DaySeconds)
	require.Len(t, segs, 1)
	assert.Equal(t, Silver, segs[0].Tier)

	// interval ending exactly on a boundary never emits a zero segment
	segs = Split(start, start, start+7*kr8tiv.DaySeconds)
	require.Len(t, segs, 1)
	assert.Equal(t, Bronze, segs[0].Tier)
}
