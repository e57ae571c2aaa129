// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/eclipsefi/stakevault/log"
	"github.com/eclipsefi/stakevault/state"
	"github.com/eclipsefi/stakevault/vault"
)

var logger = log.WithContext("pkg", "staking")

// Staker is the staking and reward distribution engine. Every method
// is one state transition over the supplied journaled state: the caller
// commits the state on success and discards it on error, so a rejected
// operation leaves no trace. Time is always the caller's now; the
// engine never reads a clock.
type Staker struct {
	store *storage
}

// New creates an engine instance over the given state.
func New(st *state.State) *Staker {
	return &Staker{store: newStorage(st)}
}

// Initialize writes the genesis configuration. It is a one-time
// operation; reinitializing an engine that has a config is rejected.
func (s *Staker) Initialize(cfg *Config, schedule []ScheduleEntry, now uint64) error {
	if existing, err := s.store.config.Get(); err != nil {
		return err
	} else if existing != nil {
		return newError(ErrInvalidConfig, "engine already initialized")
	}
	if cfg.Owner.IsZero() {
		return newError(ErrInvalidConfig, "owner must not be zero")
	}
	if err := validateTiers(cfg.Tiers); err != nil {
		return err
	}
	if err := validateSchedule(schedule, now, 0); err != nil {
		return err
	}

	if err := s.store.SetConfig(cfg); err != nil {
		return err
	}
	for i := range cfg.Tiers {
		pool := &Pool{
			TotalStaked:    new(big.Int),
			AccPerShare:    new(big.Int),
			Carry:          new(big.Int),
			LastUpdateTime: now,
		}
		if err := s.store.SetPool(cfg.Tiers[i].Duration, pool); err != nil {
			return err
		}
	}
	if err := s.store.SetSchedule(schedule); err != nil {
		return err
	}
	logger.Info("initialized", "owner", cfg.Owner, "tiers", len(cfg.Tiers), "scheduleEntries", len(schedule))
	return nil
}

// UpdateOwner transfers ownership. Owner only.
func (s *Staker) UpdateOwner(caller, newOwner vault.Address) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := requireOwner(cfg, caller); err != nil {
		return nil, err
	}
	if newOwner.IsZero() {
		return nil, newError(ErrInvalidConfig, "owner must not be zero")
	}
	cfg.Owner = newOwner
	if err := s.store.SetConfig(cfg); err != nil {
		return nil, err
	}
	logger.Info("owner updated", "owner", newOwner)
	return newSettlement(caller, caller), nil
}

// UpdateConfig applies a partial config update. Owner only. Pools are
// accrued with the old rates up to now first, so a rate change is never
// retroactive; tier weight and duration stay fixed while the tier's
// pool holds stake.
func (s *Staker) UpdateConfig(caller vault.Address, patch *ConfigPatch, now uint64) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := requireOwner(cfg, caller); err != nil {
		return nil, err
	}

	ps, err := s.store.accrueAll(cfg, now)
	if err != nil {
		return nil, err
	}

	if patch.Treasury != nil {
		cfg.Treasury = *patch.Treasury
	}
	if patch.RewardToken != nil {
		cfg.RewardToken = *patch.RewardToken
	}
	if patch.Gateways != nil {
		cfg.Gateways = patch.Gateways
	}
	if patch.AllowListed != nil {
		cfg.AllowListed = *patch.AllowListed
	}
	if patch.PenaltyCurve != nil {
		if *patch.PenaltyCurve != CurveLinear && *patch.PenaltyCurve != CurveStepped {
			return nil, newError(ErrInvalidConfig, "unknown penalty curve %d", *patch.PenaltyCurve)
		}
		cfg.PenaltyCurve = *patch.PenaltyCurve
	}

	for _, patched := range patch.Tiers {
		if err := s.applyTierPatch(cfg, ps, patched, now); err != nil {
			return nil, err
		}
	}
	if err := validateTiers(cfg.Tiers); err != nil {
		return nil, err
	}

	if len(patch.Schedule) > 0 {
		if err := s.appendSchedule(patch.Schedule, now); err != nil {
			return nil, err
		}
	}

	if err := ps.save(s.store); err != nil {
		return nil, err
	}
	if err := s.store.SetConfig(cfg); err != nil {
		return nil, err
	}
	logger.Info("config updated", "tiersPatched", len(patch.Tiers), "scheduleAppended", len(patch.Schedule))
	return newSettlement(caller, caller), nil
}

// applyTierPatch updates the tier matching the patched duration, or
// appends a new tier. Rate and penalty may change any time; weight is
// frozen while the pool holds stake.
func (s *Staker) applyTierPatch(cfg *Config, ps *poolSet, patched TierConfig, now uint64) error {
	for i := range cfg.Tiers {
		tier := &cfg.Tiers[i]
		if tier.Duration != patched.Duration {
			continue
		}
		if patched.WeightBps != tier.WeightBps && ps.get(tier.Duration).TotalStaked.Sign() > 0 {
			return newError(ErrInvalidConfig, "tier %d holds stake, weight is frozen", tier.Duration)
		}
		tier.WeightBps = patched.WeightBps
		tier.PenaltyBps = patched.PenaltyBps
		tier.RewardRate = patched.RewardRate
		return nil
	}

	cfg.Tiers = append(cfg.Tiers, patched)
	pool, err := s.store.GetPool(patched.Duration)
	if err != nil {
		return err
	}
	// an appended tier starts accruing at now, not at the epoch
	pool.LastUpdateTime = now
	ps.pools[patched.Duration] = pool
	return nil
}

// appendSchedule appends future unlocks to the pending schedule.
func (s *Staker) appendSchedule(entries []ScheduleEntry, now uint64) error {
	existing, err := s.store.GetSchedule()
	if err != nil {
		return err
	}
	var tail uint64
	if n := len(existing); n > 0 {
		tail = existing[n-1].ReleaseTime
	}
	if err := validateSchedule(entries, now, tail); err != nil {
		return err
	}
	merged := append(existing, entries...)
	if len(merged) > vault.MaxScheduleEntries {
		return newError(ErrInvalidConfig, "schedule exceeds %d entries", vault.MaxScheduleEntries)
	}
	return s.store.SetSchedule(merged)
}

// Stake opens or tops up a position for recipient (default caller)
// with the attached amount. Flexible stakes merge into the single
// position at lockedAt 0; timelocked stakes lock at now. A top-up
// settles previously accrued reward into the settlement.
func (s *Staker) Stake(caller vault.Address, duration uint64, recipient *vault.Address, amount *big.Int, now uint64) (*Settlement, error) {
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
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	tier, err := cfg.Tier(duration)
	if err != nil {
		return nil, err
	}

	ps, err := s.store.accrueAll(cfg, now)
	if err != nil {
		return nil, err
	}

	lockedAt := now
	if tier.Flexible() {
		lockedAt = 0
	}
	pos, owed, err := s.store.openPosition(ps, to, tier, lockedAt, amount)
	if err != nil {
		return nil, err
	}
	if err := ps.save(s.store); err != nil {
		return nil, err
	}

	result := newSettlement(caller, to)
	result.Reward = owed
	result.Position = positionView(to, tier, lockedAt, pos, now)
	logger.Debug("staked", "caller", caller, "recipient", to, "duration", duration, "amount", amount)
	return result, nil
}

// Unstake withdraws from a position. Flexible withdrawals are free any
// time; a timelocked position withdrawn before maturity forfeits the
// tier penalty to the treasury. Partial withdrawal of an immature
// timelocked position is reserved for allow-listed users.
func (s *Staker) Unstake(caller vault.Address, duration uint64, lockedAt uint64, amount *big.Int, recipient *vault.Address, now uint64) (*Settlement, error) {
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
	tier, err := cfg.Tier(duration)
	if err != nil {
		return nil, err
	}
	if tier.Flexible() {
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

	matured := tier.Flexible() || now >= lockedAt+tier.Duration
	if amount != nil && !matured {
		pos, err := s.store.GetPosition(caller, tier.Duration, lockedAt)
		if err != nil {
			return nil, err
		}
		if pos == nil {
			return nil, newError(ErrPositionNotFound, "%s has no position at duration %d, lockedAt %d", caller, tier.Duration, lockedAt)
		}
		if amount.Cmp(pos.Amount) < 0 {
			allowed, err := s.store.IsAllowed(caller)
			if err != nil {
				return nil, err
			}
			if !allowed {
				return nil, newError(ErrLockNotMatured, "partial withdrawal before maturity at %d", lockedAt+tier.Duration)
			}
		}
	}

	withdrawn, owed, remaining, err := s.store.closePosition(ps, caller, tier, lockedAt, amount)
	if err != nil {
		return nil, err
	}

	penalty := Penalty(cfg.PenaltyCurve, withdrawn, tier, lockedAt, now)
	net, err := subAmount(withdrawn, penalty)
	if err != nil {
		return nil, err
	}
	if err := ps.save(s.store); err != nil {
		return nil, err
	}

	result := newSettlement(caller, to)
	result.Transferred = net
	result.Reward = owed
	result.Penalty = penalty
	if remaining != nil {
		result.Position = positionView(caller, tier, lockedAt, remaining, now)
	}
	logger.Debug("unstaked", "caller", caller, "duration", duration, "withdrawn", withdrawn, "penalty", penalty)
	return result, nil
}

//
// Queries - no state change
//

// GetConfig returns the engine configuration.
func (s *Staker) GetConfig() (*Config, error) {
	return s.store.GetConfig()
}

// Owner returns the config owner.
func (s *Staker) Owner() (vault.Address, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return vault.Address{}, err
	}
	return cfg.Owner, nil
}

// Reward returns the total reward claimable by user at now, over all
// positions. Rewards of a blocked user are withheld and report zero.
func (s *Staker) Reward(user vault.Address, now uint64) (*big.Int, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	blocked, err := s.store.IsBlocked(user)
	if err != nil {
		return nil, err
	}
	if blocked {
		return new(big.Int), nil
	}

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
		pos, err := s.store.GetPosition(user, ref.Duration, ref.LockedAt)
		if err != nil {
			return nil, err
		}
		if pos == nil {
			continue
		}
		pool := ps.get(ref.Duration)
		total.Add(total, mulDiv(pos.Amount, new(big.Int).Sub(pool.AccPerShare, pos.RewardDebt), vault.RewardPrecision))
	}
	return total, nil
}

// TotalStaking returns the staked amount summed over all tiers.
func (s *Staker) TotalStaking() (*big.Int, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for i := range cfg.Tiers {
		pool, err := s.store.GetPool(cfg.Tiers[i].Duration)
		if err != nil {
			return nil, err
		}
		total.Add(total, pool.TotalStaked)
	}
	return total, nil
}

// TierTotal is the staked amount of one tier.
type TierTotal struct {
	Duration    uint64   `json:"duration"`
	WeightBps   uint64   `json:"weightBps"`
	TotalStaked *big.Int `json:"totalStaked"`
}

// TotalStakingByDuration returns per-tier staked totals in tier order.
func (s *Staker) TotalStakingByDuration() ([]TierTotal, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	totals := make([]TierTotal, 0, len(cfg.Tiers))
	for i := range cfg.Tiers {
		pool, err := s.store.GetPool(cfg.Tiers[i].Duration)
		if err != nil {
			return nil, err
		}
		totals = append(totals, TierTotal{
			Duration:    cfg.Tiers[i].Duration,
			WeightBps:   cfg.Tiers[i].WeightBps,
			TotalStaked: pool.TotalStaked,
		})
	}
	return totals, nil
}

// Staking returns all open positions of user, ordered by
// (duration, lockedAt).
func (s *Staker) Staking(user vault.Address, now uint64) ([]PositionView, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	refs, err := s.store.GetUserIndex(user)
	if err != nil {
		return nil, err
	}
	views := make([]PositionView, 0, len(refs))
	for _, ref := range refs {
		pos, err := s.store.GetPosition(user, ref.Duration, ref.LockedAt)
		if err != nil {
			return nil, err
		}
		if pos == nil {
			continue
		}
		tier, err := cfg.Tier(ref.Duration)
		if err != nil {
			return nil, err
		}
		views = append(views, *positionView(user, tier, ref.LockedAt, pos, now))
	}
	return views, nil
}

// CalculatePenalty computes the penalty an early exit would forfeit at
// now, without touching any state.
func (s *Staker) CalculatePenalty(amount *big.Int, duration, lockedAt, now uint64) (*big.Int, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	tier, err := cfg.Tier(duration)
	if err != nil {
		return nil, err
	}
	return Penalty(cfg.PenaltyCurve, amount, tier, lockedAt, now), nil
}

// PendingRewardSchedule returns the not-yet-released schedule entries.
func (s *Staker) PendingRewardSchedule() ([]ScheduleEntry, error) {
	entries, err := s.store.GetSchedule()
	if err != nil {
		return nil, err
	}
	cursor, err := s.store.GetScheduleCursor()
	if err != nil {
		return nil, err
	}
	if cursor >= uint64(len(entries)) {
		return []ScheduleEntry{}, nil
	}
	return entries[cursor:], nil
}

func positionView(owner vault.Address, tier *TierConfig, lockedAt uint64, pos *Position, now uint64) *PositionView {
	return &PositionView{
		Owner:      owner,
		Duration:   tier.Duration,
		LockedAt:   lockedAt,
		Amount:     pos.Amount,
		RewardDebt: pos.RewardDebt,
		Matured:    tier.Flexible() || now >= lockedAt+tier.Duration,
	}
}

func validateTiers(tiers []TierConfig) error {
	if len(tiers) == 0 {
		return newError(ErrInvalidConfig, "at least one tier required")
	}
	seen := make(map[uint64]bool, len(tiers))
	for i := range tiers {
		tier := &tiers[i]
		if seen[tier.Duration] {
			return newError(ErrInvalidConfig, "duplicate tier duration %d", tier.Duration)
		}
		seen[tier.Duration] = true
		if tier.WeightBps == 0 {
			return newError(ErrInvalidConfig, "tier %d weight must be positive", tier.Duration)
		}
		if tier.PenaltyBps > vault.BpsDenominator {
			return newError(ErrInvalidConfig, "tier %d penalty exceeds %d bps", tier.Duration, vault.BpsDenominator)
		}
		if tier.Flexible() && tier.PenaltyBps != 0 {
			return newError(ErrInvalidConfig, "flexible tier cannot carry a penalty")
		}
		if err := checkAmount(tier.RewardRate); err != nil {
			return err
		}
	}
	return nil
}

func validateSchedule(entries []ScheduleEntry, now, tail uint64) error {
	for _, e := range entries {
		if e.ReleaseTime <= now {
			return newError(ErrInvalidConfig, "schedule entry at %d is not in the future", e.ReleaseTime)
		}
		if e.ReleaseTime < tail {
			return newError(ErrInvalidConfig, "schedule entry at %d breaks ordering", e.ReleaseTime)
		}
		tail = e.ReleaseTime
		if err := checkAmount(e.Amount); err != nil {
			return err
		}
		if e.Amount.Sign() == 0 {
			return newError(ErrZeroAmount, "schedule entry at %d has zero amount", e.ReleaseTime)
		}
	}
	if len(entries) > vault.MaxScheduleEntries {
		return newError(ErrInvalidConfig, "schedule exceeds %d entries", vault.MaxScheduleEntries)
	}
	return nil
}
