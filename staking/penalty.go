// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/eclipsefi/stakevault/vault"
)

// Penalty computes the amount forfeited when a timelocked position
// exits before maturity. The penalty is 0 for the flexible tier and for
// any position at or past lockedAt + duration, never exceeds amount,
// and decreases as now advances toward maturity. The curve scales the
// tier's maximum penalty (PenaltyBps of amount, taken at lock time) by
// the remaining lock fraction.
func Penalty(curve PenaltyCurve, amount *big.Int, tier *TierConfig, lockedAt, now uint64) *big.Int {
	if tier.Flexible() || tier.PenaltyBps == 0 {
		return new(big.Int)
	}
	maturity := lockedAt + tier.Duration
	if now >= maturity {
		return new(big.Int)
	}

	maxPenalty := bpsShare(amount, tier.PenaltyBps)
	remaining := maturity - now

	switch curve {
	case CurveStepped:
		// whole-day steps, remainders round up so the first second of a
		// day already pays that day's rate
		remDays := (remaining + vault.DayInSeconds - 1) / vault.DayInSeconds
		durDays := (tier.Duration + vault.DayInSeconds - 1) / vault.DayInSeconds
		if remDays > durDays {
			remDays = durDays
		}
		return mulDiv(maxPenalty, new(big.Int).SetUint64(remDays), new(big.Int).SetUint64(durDays))
	default: // CurveLinear
		return mulDiv(maxPenalty, new(big.Int).SetUint64(remaining), new(big.Int).SetUint64(tier.Duration))
	}
}
