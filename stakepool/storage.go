// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakepool

import (
	"github.com/kr8tiv/staking/kr8tiv"
)

var (
	slotAuthority        = nameToSlot("authority")
	slotUserStakes       = nameToSlot("user-stakes")
	slotRewardsDeposited = nameToSlot("rewards-deposited")
)

func nameToSlot(name string) kr8tiv.Bytes32 {
	return kr8tiv.BytesToBytes32([]byte(name))
}
