// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import "math/big"

// Constants of the vault protocol.
const (
	// DayInSeconds one day.
	DayInSeconds = uint64(24 * 3600)

	// YearInSeconds one (non-leap) year.
	YearInSeconds = uint64(365 * 24 * 3600)

	// BpsDenominator denominator of basis-point fractions (weights, penalty rates).
	BpsDenominator = uint64(10_000)

	// FlexibleDuration duration value of the flexible (no-lock) tier.
	FlexibleDuration = uint64(0)

	// MaxScheduleEntries upper bound of pending reward schedule length.
	MaxScheduleEntries = 256

	// MaxPositionsPerUser upper bound of open positions per user.
	// Keeps claim-all and relock iteration bounded.
	MaxPositionsPerUser = 25
)

var (
	// RewardPrecision scale factor of the per-share reward accumulator.
	RewardPrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// MaxTokenAmount the largest representable token amount (2^128 - 1).
	MaxTokenAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)
