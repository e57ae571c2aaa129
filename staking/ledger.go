// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/eclipsefi/stakevault/vault"
)

// settle computes the reward owed to a position since its last
// settlement and advances the debt snapshot. The pool must already be
// accrued to the operation time.
func settle(pos *Position, pool *Pool) *big.Int {
	owed := mulDiv(pos.Amount, new(big.Int).Sub(pool.AccPerShare, pos.RewardDebt), vault.RewardPrecision)
	pos.RewardDebt = new(big.Int).Set(pool.AccPerShare)
	return owed
}

// openPosition creates or tops up the position at (owner, duration,
// lockedAt). On top-up the previously accrued reward is settled first,
// so merging never discounts earned reward; the settled amount is
// returned for transfer. The pool total grows by amount.
func (s *storage) openPosition(ps *poolSet, owner vault.Address, tier *TierConfig, lockedAt uint64, amount *big.Int) (*Position, *big.Int, error) {
	if amount.Sign() == 0 {
		return nil, nil, newError(ErrZeroAmount, "cannot open a position with zero amount")
	}
	pool := ps.get(tier.Duration)

	pos, err := s.GetPosition(owner, tier.Duration, lockedAt)
	if err != nil {
		return nil, nil, err
	}

	owed := new(big.Int)
	if pos != nil {
		owed = settle(pos, pool)
		if pos.Amount, err = addAmount(pos.Amount, amount); err != nil {
			return nil, nil, err
		}
	} else {
		refs, err := s.GetUserIndex(owner)
		if err != nil {
			return nil, nil, err
		}
		if len(refs) >= vault.MaxPositionsPerUser {
			return nil, nil, newError(ErrInvalidRequest, "%s holds %d positions, limit reached", owner, len(refs))
		}
		pos = &Position{
			Amount:     new(big.Int).Set(amount),
			RewardDebt: new(big.Int).Set(pool.AccPerShare),
		}
		if err := s.SetUserIndex(owner, insertRef(refs, PositionRef{tier.Duration, lockedAt})); err != nil {
			return nil, nil, err
		}
	}

	if pool.TotalStaked, err = addAmount(pool.TotalStaked, amount); err != nil {
		return nil, nil, err
	}
	if err := s.SetPosition(owner, tier.Duration, lockedAt, pos); err != nil {
		return nil, nil, err
	}
	return pos, owed, nil
}

// closePosition withdraws amount from the position at (owner, duration,
// lockedAt); a nil amount means the full position. Accrued reward is
// settled and returned alongside the withdrawn amount. A position
// drained to zero is deleted, never kept as a zero record. Legality of
// partial withdrawal (flexible, matured, allow-listed) is the caller's
// rule; this enforces existence and sufficiency only.
func (s *storage) closePosition(ps *poolSet, owner vault.Address, tier *TierConfig, lockedAt uint64, amount *big.Int) (withdrawn, owed *big.Int, remaining *Position, err error) {
	pos, err := s.GetPosition(owner, tier.Duration, lockedAt)
	if err != nil {
		return nil, nil, nil, err
	}
	if pos == nil {
		return nil, nil, nil, newError(ErrPositionNotFound, "%s has no position at duration %d, lockedAt %d", owner, tier.Duration, lockedAt)
	}

	if amount == nil {
		amount = new(big.Int).Set(pos.Amount)
	}
	if amount.Sign() == 0 {
		return nil, nil, nil, newError(ErrZeroAmount, "cannot withdraw zero from position at duration %d, lockedAt %d", tier.Duration, lockedAt)
	}
	if amount.Cmp(pos.Amount) > 0 {
		return nil, nil, nil, newError(ErrInsufficientStake, "requested %s exceeds staked %s", amount, pos.Amount)
	}

	pool := ps.get(tier.Duration)
	owed = settle(pos, pool)

	if pos.Amount, err = subAmount(pos.Amount, amount); err != nil {
		return nil, nil, nil, err
	}
	if pool.TotalStaked, err = subAmount(pool.TotalStaked, amount); err != nil {
		return nil, nil, nil, err
	}

	if pos.Amount.Sign() == 0 {
		s.DeletePosition(owner, tier.Duration, lockedAt)
		refs, err := s.GetUserIndex(owner)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := s.SetUserIndex(owner, removeRef(refs, PositionRef{tier.Duration, lockedAt})); err != nil {
			return nil, nil, nil, err
		}
		return amount, owed, nil, nil
	}

	if err := s.SetPosition(owner, tier.Duration, lockedAt, pos); err != nil {
		return nil, nil, nil, err
	}
	return amount, owed, pos, nil
}

// insertRef inserts a ref keeping (duration, lockedAt) ascending order,
// so iteration over a user's positions is deterministic.
func insertRef(refs []PositionRef, ref PositionRef) []PositionRef {
	at := len(refs)
	for i, r := range refs {
		if ref.Duration < r.Duration || (ref.Duration == r.Duration && ref.LockedAt < r.LockedAt) {
			at = i
			break
		}
	}
	out := make([]PositionRef, 0, len(refs)+1)
	out = append(out, refs[:at]...)
	out = append(out, ref)
	return append(out, refs[at:]...)
}

func removeRef(refs []PositionRef, ref PositionRef) []PositionRef {
	out := make([]PositionRef, 0, len(refs))
	for _, r := range refs {
		if r != ref {
			out = append(out, r)
		}
	}
	return out
}
