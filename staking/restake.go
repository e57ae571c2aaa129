// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"sort"

	"github.com/eclipsefi/stakevault/vault"
)

// Restake moves staked value from one tier to another. The source
// position's accrued reward is settled (implicit claim), an immature
// source forfeits the tier penalty, and the remainder opens or tops up
// a position for recipient (default caller) at the destination tier,
// locked at now. When the penalty consumes the whole amount the source
// is still closed and the settlement carries the ZeroAfterPenalty mark.
// A matured source moves its amount exactly, penalty free. Partial
// amounts follow the same rule as unstake: flexible, matured, or
// allow-listed caller.
func (s *Staker) Restake(caller vault.Address, fromDuration, lockedAt, toDuration uint64, amount *big.Int, recipient *vault.Address, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := s.store.checkAccess(cfg, caller); err != nil {
		return nil, err
	}
	to := caller
	if recipient != nil {
		to = *recipient
	}
	if to != caller {
		if err := s.store.checkAccess(cfg, to); err != nil {
			return nil, err
		}
	}

	fromTier, err := cfg.Tier(fromDuration)
	if err != nil {
		return nil, err
	}
	toTier, err := cfg.Tier(toDuration)
	if err != nil {
		return nil, err
	}
	if fromTier.Flexible() {
		lockedAt = 0
	}
	if amount != nil {
		if err := checkAmount(amount); err != nil {
			return nil, err
		}
	}

	ps, err := s.store.accrueAll(cfg, now)
	if err != nil {
		return nil, err
	}

	matured := fromTier.Flexible() || now >= lockedAt+fromTier.Duration
	if amount != nil && !matured {
		pos, err := s.store.GetPosition(caller, fromTier.Duration, lockedAt)
		if err != nil {
			return nil, err
		}
		if pos == nil {
			return nil, newError(ErrPositionNotFound, "%s has no position at duration %d, lockedAt %d", caller, fromTier.Duration, lockedAt)
		}
		if amount.Cmp(pos.Amount) < 0 {
			allowed, err := s.store.IsAllowed(caller)
			if err != nil {
				return nil, err
			}
			if !allowed {
				return nil, newError(ErrLockNotMatured, "partial restake before maturity at %d", lockedAt+fromTier.Duration)
			}
		}
	}

	withdrawn, owed, _, err := s.store.closePosition(ps, caller, fromTier, lockedAt, amount)
	if err != nil {
		return nil, err
	}

	penalty := Penalty(cfg.PenaltyCurve, withdrawn, fromTier, lockedAt, now)
	net, err := subAmount(withdrawn, penalty)
	if err != nil {
		return nil, err
	}

	result := newSettlement(caller, to)
	result.Reward = owed
	result.Penalty = penalty

	if net.Sign() == 0 {
		result.ZeroAfterPenalty = true
		if err := ps.save(s.store); err != nil {
			return nil, err
		}
		logger.Debug("restake fully consumed by penalty", "caller", caller, "from", fromDuration, "penalty", penalty)
		return result, nil
	}

	destLockedAt := now
	if toTier.Flexible() {
		destLockedAt = 0
	}
	pos, destOwed, err := s.store.openPosition(ps, to, toTier, destLockedAt, net)
	if err != nil {
		return nil, err
	}
	result.Reward = new(big.Int).Add(result.Reward, destOwed)
	result.Position = positionView(to, toTier, destLockedAt, pos, now)

	if err := ps.save(s.store); err != nil {
		return nil, err
	}
	logger.Debug("restaked", "caller", caller, "from", fromDuration, "to", toDuration, "moved", net, "penalty", penalty)
	return result, nil
}

// Relock consolidates several lock timestamps of one source tier into
// a single destination position for `to`, locked at now. Buckets are
// processed in ascending lockedAt order so repeated calls with the same
// input settle identically. Each bucket settles its reward and pays its
// own penalty when immature; addingAmount merges a fresh deposit on
// top. Moving another user's stake is a gateway operation; moving part
// of the set is just choosing fewer buckets.
func (s *Staker) Relock(caller, from vault.Address, fromDuration uint64, to vault.Address, toDuration uint64, relocking []uint64, addingAmount *big.Int, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if from != caller && caller != cfg.Owner && !cfg.IsGateway(caller) {
		return nil, newError(ErrUnauthorized, "%s cannot relock stake of %s", caller, from)
	}
	if err := s.store.checkAccess(cfg, from); err != nil {
		return nil, err
	}
	if to != from {
		if err := s.store.checkAccess(cfg, to); err != nil {
			return nil, err
		}
	}

	fromTier, err := cfg.Tier(fromDuration)
	if err != nil {
		return nil, err
	}
	toTier, err := cfg.Tier(toDuration)
	if err != nil {
		return nil, err
	}
	if len(relocking) == 0 && (addingAmount == nil || addingAmount.Sign() == 0) {
		return nil, newError(ErrZeroAmount, "nothing to relock")
	}
	if addingAmount != nil {
		if err := checkAmount(addingAmount); err != nil {
			return nil, err
		}
	}

	buckets := make([]uint64, len(relocking))
	copy(buckets, relocking)
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
	for i := 1; i < len(buckets); i++ {
		if buckets[i] == buckets[i-1] {
			return nil, newError(ErrInvalidRequest, "duplicate relock bucket %d", buckets[i])
		}
	}

	ps, err := s.store.accrueAll(cfg, now)
	if err != nil {
		return nil, err
	}

	moved := new(big.Int)
	reward := new(big.Int)
	penalty := new(big.Int)
	for _, lockedAt := range buckets {
		withdrawn, owed, _, err := s.store.closePosition(ps, from, fromTier, lockedAt, nil)
		if err != nil {
			return nil, err
		}
		bucketPenalty := Penalty(cfg.PenaltyCurve, withdrawn, fromTier, lockedAt, now)
		net, err := subAmount(withdrawn, bucketPenalty)
		if err != nil {
			return nil, err
		}
		if moved, err = addAmount(moved, net); err != nil {
			return nil, err
		}
		reward.Add(reward, owed)
		penalty.Add(penalty, bucketPenalty)
	}
	if addingAmount != nil {
		if moved, err = addAmount(moved, addingAmount); err != nil {
			return nil, err
		}
	}

	result := newSettlement(caller, to)
	result.Reward = reward
	result.Penalty = penalty

	if moved.Sign() == 0 {
		result.ZeroAfterPenalty = true
		if err := ps.save(s.store); err != nil {
			return nil, err
		}
		logger.Debug("relock fully consumed by penalty", "from", from, "buckets", len(buckets), "penalty", penalty)
		return result, nil
	}

	destLockedAt := now
	if toTier.Flexible() {
		destLockedAt = 0
	}
	pos, destOwed, err := s.store.openPosition(ps, to, toTier, destLockedAt, moved)
	if err != nil {
		return nil, err
	}
	result.Reward = new(big.Int).Add(result.Reward, destOwed)
	result.Position = positionView(to, toTier, destLockedAt, pos, now)

	if err := ps.save(s.store); err != nil {
		return nil, err
	}
	logger.Debug("relocked", "from", from, "to", to, "buckets", len(buckets), "moved", moved, "penalty", penalty)
	return result, nil
}
