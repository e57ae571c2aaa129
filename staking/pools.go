// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/eclipsefi/stakevault/vault"
)

// poolSet holds every tier pool of one transition, accrued to the
// operation time. All position reads and mutations go through it so
// settlements always see up-to-date accumulators.
type poolSet struct {
	cfg   *Config
	pools map[uint64]*Pool

	cursor      uint64 // schedule cursor after accrual
	cursorMoved bool
}

// accrueAll loads every tier pool, advances its accumulator to now and
// consumes due reward schedule entries. Called at the top of every
// operation, before any position is touched.
func (s *storage) accrueAll(cfg *Config, now uint64) (*poolSet, error) {
	ps := &poolSet{cfg: cfg, pools: make(map[uint64]*Pool, len(cfg.Tiers))}
	for i := range cfg.Tiers {
		tier := &cfg.Tiers[i]
		pool, err := s.GetPool(tier.Duration)
		if err != nil {
			return nil, err
		}
		accruePool(pool, tier, now)
		ps.pools[tier.Duration] = pool
	}
	if err := s.consumeSchedule(ps, now); err != nil {
		return nil, err
	}
	return ps, nil
}

// get returns the accrued pool of a tier. The tier must exist; callers
// resolve tiers through Config.Tier first.
func (ps *poolSet) get(duration uint64) *Pool {
	return ps.pools[duration]
}

// save writes every pool back, along with the advanced schedule cursor.
// Queries skip save, so accrual stays free of side effects there.
func (ps *poolSet) save(store *storage) error {
	for duration, pool := range ps.pools {
		if err := store.SetPool(duration, pool); err != nil {
			return err
		}
	}
	if ps.cursorMoved {
		return store.SetScheduleCursor(ps.cursor)
	}
	return nil
}

// accruePool advances a pool's accumulator by the tier reward rate over
// the elapsed time. While the pool has no stake the reward is parked in
// Carry rather than lost, and credited once stake reappears. A second
// call at the same time is a no-op.
func accruePool(pool *Pool, tier *TierConfig, now uint64) {
	if now <= pool.LastUpdateTime {
		return
	}
	elapsed := now - pool.LastUpdateTime
	pool.LastUpdateTime = now

	reward := new(big.Int).Mul(tier.RewardRate, new(big.Int).SetUint64(elapsed))
	creditPool(pool, reward)
}

// creditPool folds a reward amount plus the parked Carry into the
// per-share accumulator, or parks the sum in Carry when the pool has
// no stake. Carry is always consumed here, so back-to-back credits in
// one accrual never overwrite each other's residue.
func creditPool(pool *Pool, reward *big.Int) {
	reward = new(big.Int).Add(reward, pool.Carry)
	if reward.Sign() == 0 {
		return
	}
	if pool.TotalStaked.Sign() == 0 {
		pool.Carry = reward
		return
	}
	scaled := new(big.Int).Mul(reward, vault.RewardPrecision)
	delta := new(big.Int).Quo(scaled, pool.TotalStaked)
	pool.AccPerShare = new(big.Int).Add(pool.AccPerShare, delta)

	// sub-unit residue of the division stays parked
	residue := new(big.Int).Mul(delta, pool.TotalStaked)
	residue.Sub(scaled, residue)
	pool.Carry = residue.Quo(residue, vault.RewardPrecision)
}

// consumeSchedule releases every schedule entry whose time has been
// crossed, splitting it across tier pools by weighted stake
// (totalStaked x tier weight). The cursor only moves forward, so an
// entry is released exactly once; while total weighted stake is zero
// consumption is deferred, never skipped.
func (s *storage) consumeSchedule(ps *poolSet, now uint64) error {
	entries, err := s.GetSchedule()
	if err != nil {
		return err
	}
	cursor, err := s.GetScheduleCursor()
	if err != nil {
		return err
	}
	if cursor >= uint64(len(entries)) {
		return nil
	}

	next := cursor
	for next < uint64(len(entries)) && entries[next].ReleaseTime <= now {
		if !ps.release(entries[next].Amount) {
			break
		}
		next++
	}
	if next != cursor {
		ps.cursor = next
		ps.cursorMoved = true
	}
	return nil
}

// release splits one unlock amount across pools by weighted stake.
// Returns false when no pool holds stake, leaving the unlock pending.
func (ps *poolSet) release(amount *big.Int) bool {
	weighted := make(map[uint64]*big.Int, len(ps.cfg.Tiers))
	sum := new(big.Int)
	for i := range ps.cfg.Tiers {
		tier := &ps.cfg.Tiers[i]
		w := new(big.Int).Mul(ps.pools[tier.Duration].TotalStaked, new(big.Int).SetUint64(tier.WeightBps))
		weighted[tier.Duration] = w
		sum.Add(sum, w)
	}
	if sum.Sign() == 0 {
		return false
	}

	// last pool with stake absorbs the division remainder
	last := uint64(0)
	for i := range ps.cfg.Tiers {
		if weighted[ps.cfg.Tiers[i].Duration].Sign() > 0 {
			last = ps.cfg.Tiers[i].Duration
		}
	}

	assigned := new(big.Int)
	for i := range ps.cfg.Tiers {
		duration := ps.cfg.Tiers[i].Duration
		w := weighted[duration]
		if w.Sign() == 0 || duration == last {
			continue
		}
		share := mulDiv(amount, w, sum)
		creditPool(ps.pools[duration], share)
		assigned.Add(assigned, share)
	}
	creditPool(ps.pools[last], new(big.Int).Sub(amount, assigned))
	return true
}
