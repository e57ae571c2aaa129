// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/eclipsefi/stakevault/vault"
)

// Claim settles the accrued reward of one position and returns it for
// transfer. Amount and lock are untouched. Claiming right after a claim
// yields zero and changes nothing.
func (s *Staker) Claim(caller vault.Address, duration, lockedAt uint64, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := s.store.checkAccess(cfg, caller); err != nil {
		return nil, err
	}
	return s.claimOne(cfg, caller, caller, duration, lockedAt, now)
}

// ClaimAll settles every timelocked position of caller, plus the
// flexible one when includeFlexible is set, and returns the aggregate.
func (s *Staker) ClaimAll(caller vault.Address, includeFlexible bool, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := s.store.checkAccess(cfg, caller); err != nil {
		return nil, err
	}
	return s.claimMany(cfg, caller, caller, includeFlexible, now)
}

//
// Distributor gateway surface. A configured gateway (or the owner)
// settles rewards on behalf of a user; the reward is still directed to
// the user, and blocked users stay withheld.
//

// FlexibleStakeClaim claims the user's flexible position.
func (s *Staker) FlexibleStakeClaim(caller, user vault.Address, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := s.checkGateway(cfg, caller, user); err != nil {
		return nil, err
	}
	return s.claimOne(cfg, caller, user, vault.FlexibleDuration, 0, now)
}

// TimelockStakeClaim claims one timelocked position of the user.
func (s *Staker) TimelockStakeClaim(caller vault.Address, duration, lockedAt uint64, user vault.Address, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := s.checkGateway(cfg, caller, user); err != nil {
		return nil, err
	}
	return s.claimOne(cfg, caller, user, duration, lockedAt, now)
}

// TimelockStakeClaimAll claims every timelocked position of the user.
func (s *Staker) TimelockStakeClaimAll(caller, user vault.Address, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := s.checkGateway(cfg, caller, user); err != nil {
		return nil, err
	}
	return s.claimMany(cfg, caller, user, false, now)
}

func (s *Staker) checkGateway(cfg *Config, caller, user vault.Address) error {
	if caller != cfg.Owner && !cfg.IsGateway(caller) {
		return newError(ErrUnauthorized, "%s is not a claim gateway", caller)
	}
	blocked, err := s.store.IsBlocked(user)
	if err != nil {
		return err
	}
	if blocked {
		return newError(ErrUserBlocked, "%s is blocked, rewards are withheld", user)
	}
	return nil
}

func (s *Staker) claimOne(cfg *Config, caller, user vault.Address, duration, lockedAt uint64, now uint64) (*Settlement, error) {
	tier, err := cfg.Tier(duration)
	if err != nil {
		return nil, err
	}
	if tier.Flexible() {
		lockedAt = 0
	}

	ps, err := s.store.accrueAll(cfg, now)
	if err != nil {
		return nil, err
	}

	pos, err := s.store.GetPosition(user, tier.Duration, lockedAt)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, newError(ErrPositionNotFound, "%s has no position at duration %d, lockedAt %d", user, tier.Duration, lockedAt)
	}

	owed := settle(pos, ps.get(tier.Duration))
	if err := s.store.SetPosition(user, tier.Duration, lockedAt, pos); err != nil {
		return nil, err
	}
	if err := ps.save(s.store); err != nil {
		return nil, err
	}

	result := newSettlement(caller, user)
	result.Reward = owed
	result.Position = positionView(user, tier, lockedAt, pos, now)
	logger.Debug("claimed", "user", user, "duration", duration, "reward", owed)
	return result, nil
}

func (s *Staker) claimMany(cfg *Config, caller, user vault.Address, includeFlexible bool, now uint64) (*Settlement, error) {
	ps, err := s.store.accrueAll(cfg, now)
	if err != nil {
		return nil, err
	}
	refs, err := s.store.GetUserIndex(user)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	for _, ref := range refs {
		if ref.Duration == vault.FlexibleDuration && !includeFlexible {
			continue
		}
		pos, err := s.store.GetPosition(user, ref.Duration, ref.LockedAt)
		if err != nil {
			return nil, err
		}
		if pos == nil {
			continue
		}
		total.Add(total, settle(pos, ps.get(ref.Duration)))
		if err := s.store.SetPosition(user, ref.Duration, ref.LockedAt, pos); err != nil {
			return nil, err
		}
	}
	if err := ps.save(s.store); err != nil {
		return nil, err
	}

	result := newSettlement(caller, user)
	result.Reward = total
	logger.Debug("claimed all", "user", user, "positions", len(refs), "reward", total)
	return result, nil
}
