// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package schedule maps stake age to loyalty tiers and slices reward
// intervals along tier boundaries.
package schedule

import (
	"github.com/kr8tiv/staking/kr8tiv"
)

// Tier is a loyalty level earned by holding a stake.
type Tier uint8

const (
	Bronze Tier = iota
	Silver
	Gold
	Platinum
)

// tier thresholds in whole days of stake age
const (
	silverStartDay   = 7
	goldStartDay     = 30
	platinumStartDay = 90
)

// multipliers on the kr8tiv.MultiplierScale basis (100 = 1.0x)
const (
	bronzeMultiplier   = 100
	silverMultiplier   = 150
	goldMultiplier     = 200
	platinumMultiplier = 250
)

func (t Tier) String() string {
	switch t {
	case Bronze:
		return "bronze"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	case Platinum:
		return "platinum"
	default:
		return "unknown"
	}
}

// Multiplier returns the tier's reward multiplier, scaled by
// kr8tiv.MultiplierScale.
func (t Tier) Multiplier() uint64 {
	switch t {
	case Silver:
		return silverMultiplier
	case Gold:
		return goldMultiplier
	case Platinum:
		return platinumMultiplier
	default:
		return bronzeMultiplier
	}
}

// StartDay returns the stake age in days at which the tier begins.
func (t Tier) StartDay() uint64 {
	switch t {
	case Silver:
		return silverStartDay
	case Gold:
		return goldStartDay
	case Platinum:
		return platinumStartDay
	default:
		return 0
	}
}

// TierOf returns the tier of a stake started at stakeStart as of now.
// A stake younger than its start time is bronze.
func TierOf(stakeStart, now uint64) Tier {
	if now <= stakeStart {
		return Bronze
	}
	age := now - stakeStart
	switch {
	case age >= platinumStartDay*kr8tiv.DaySeconds:
		return Platinum
	case age >= goldStartDay*kr8tiv.DaySeconds:
		return Gold
	case age >= silverStartDay*kr8tiv.DaySeconds:
		return Silver
	default:
		return Bronze
	}
}

// Combined resolves the effective multiplier for a stake: the larger of
// the tier multiplier and any promotional bonus, never their product.
func Combined(tier Tier, bonus uint64) uint64 {
	if m := tier.Multiplier(); m >= bonus {
		return m
	}
	return bonus
}

// Segment is a half-open interval [From, To) of a reward period during
// which a single tier applies.
type Segment struct {
	From uint64
	To   uint64
	Tier Tier
}

// Duration returns the segment length in seconds.
func (s *Segment) Duration() uint64 {
	return s.To - s.From
}

// Split slices [from, to) into segments at the tier boundaries of a
// stake started at stakeStart. Boundaries are absolute timestamps,
// stakeStart plus the tier's start day. Segment durations always sum to
// to-from; an empty interval yields no segments.
func Split(stakeStart, from, to uint64) []Segment {
	if to <= from {
		return nil
	}
	boundaries := [3]uint64{
		stakeStart + silverStartDay*kr8tiv.DaySeconds,
		stakeStart + goldStartDay*kr8tiv.DaySeconds,
		stakeStart + platinumStartDay*kr8tiv.DaySeconds,
	}
	segments := make([]Segment, 0, 4)
	cursor := from
	for _, boundary := range boundaries {
		if boundary <= cursor {
			continue
		}
		if boundary >= to {
			break
		}
		segments = append(segments, Segment{
			From: cursor,
			To:   boundary,
			Tier: TierOf(stakeStart, cursor),
		})
		cursor = boundary
	}
	segments = append(segments, Segment{
		From: cursor,
		To:   to,
		Tier: TierOf(stakeStart, cursor),
	})
	return segments
}
