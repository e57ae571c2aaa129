// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eclipsefi/stakevault/vault"
)

// Token amounts are unsigned 128-bit. Arithmetic on them is checked,
// never wrapping: any result outside [0, 2^128-1] aborts the transition
// with ArithmeticOverflow. Accumulator math uses wider intermediates
// (amount x per-share scaled 1e18 exceeds 256 bits in theory), so it
// runs on big.Int and only the final amount is bounds-checked.

// checkAmount rejects nil, negative or over-wide token amounts.
func checkAmount(a *big.Int) error {
	if a == nil || a.Sign() < 0 {
		return newError(ErrArithmeticOverflow, "negative or missing amount")
	}
	if a.Cmp(vault.MaxTokenAmount) > 0 {
		return newError(ErrArithmeticOverflow, "amount exceeds 128 bits: %s", a)
	}
	return nil
}

// addAmount returns a + b, rejecting results beyond 128 bits.
func addAmount(a, b *big.Int) (*big.Int, error) {
	x, overflow := uint256.FromBig(a)
	if overflow {
		return nil, newError(ErrArithmeticOverflow, "amount exceeds 256 bits: %s", a)
	}
	y, overflow := uint256.FromBig(b)
	if overflow {
		return nil, newError(ErrArithmeticOverflow, "amount exceeds 256 bits: %s", b)
	}
	sum, carry := new(uint256.Int).AddOverflow(x, y)
	if carry {
		return nil, newError(ErrArithmeticOverflow, "addition overflow: %s + %s", a, b)
	}
	out := sum.ToBig()
	if err := checkAmount(out); err != nil {
		return nil, err
	}
	return out, nil
}

// subAmount returns a - b, rejecting negative results.
func subAmount(a, b *big.Int) (*big.Int, error) {
	x, overflow := uint256.FromBig(a)
	if overflow {
		return nil, newError(ErrArithmeticOverflow, "amount exceeds 256 bits: %s", a)
	}
	y, overflow := uint256.FromBig(b)
	if overflow {
		return nil, newError(ErrArithmeticOverflow, "amount exceeds 256 bits: %s", b)
	}
	diff, borrow := new(uint256.Int).SubOverflow(x, y)
	if borrow {
		return nil, newError(ErrArithmeticOverflow, "subtraction underflow: %s - %s", a, b)
	}
	return diff.ToBig(), nil
}

// mulDiv returns a * b / den with an arbitrary-precision intermediate.
// den must be positive.
func mulDiv(a, b, den *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, den)
}

// bpsShare returns amount * bps / 10000.
func bpsShare(amount *big.Int, bps uint64) *big.Int {
	return mulDiv(amount, new(big.Int).SetUint64(bps), new(big.Int).SetUint64(vault.BpsDenominator))
}
