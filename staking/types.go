// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/eclipsefi/stakevault/vault"
)

// PenaltyCurve selects the early-exit penalty shape.
type PenaltyCurve = uint8

const (
	// CurveLinear decays the penalty linearly per second of elapsed lock time.
	CurveLinear = PenaltyCurve(iota)
	// CurveStepped decays the penalty in whole-day steps.
	CurveStepped
)

// TierConfig describes one lock-duration tier. Duration 0 is the
// flexible tier. Duration and WeightBps are immutable while the tier's
// pool holds stake, so open positions never change weight retroactively.
type TierConfig struct {
	Duration   uint64   // lock length in seconds, 0 = flexible
	WeightBps  uint64   // reward weight in basis points of the flexible weight
	PenaltyBps uint64   // maximum early-exit penalty in basis points, taken at lock time
	RewardRate *big.Int // reward token units released per second to this tier's pool
}

// Flexible returns whether this is the no-lock tier.
func (t *TierConfig) Flexible() bool {
	return t.Duration == vault.FlexibleDuration
}

// Config is the owner-managed engine configuration.
type Config struct {
	Owner        vault.Address   // may mutate config and lists
	Treasury     vault.Address   // receives forfeited penalties
	RewardToken  vault.Address   // external token reference, settlement only
	Gateways     []vault.Address // principals allowed to claim on behalf of users
	AllowListed  bool            // when set, only allow-listed users may stake
	PenaltyCurve PenaltyCurve
	Tiers        []TierConfig
}

// Tier returns the tier with the given duration.
func (c *Config) Tier(duration uint64) (*TierConfig, error) {
	for i := range c.Tiers {
		if c.Tiers[i].Duration == duration {
			return &c.Tiers[i], nil
		}
	}
	return nil, newError(ErrDurationTierNotFound, "no tier with duration %d", duration)
}

// IsGateway returns whether addr is a configured claim gateway.
func (c *Config) IsGateway(addr vault.Address) bool {
	for _, g := range c.Gateways {
		if g == addr {
			return true
		}
	}
	return false
}

// Position is one staked position. Flexible positions live at
// lockedAt 0, one per owner; timelocked positions are keyed by their
// lock timestamp. A position whose amount reaches zero is deleted.
type Position struct {
	Amount     *big.Int // staked token amount, always > 0 while the record exists
	RewardDebt *big.Int // per-share accumulator snapshot at last settlement
}

// Pool is the reward accrual state of one tier.
type Pool struct {
	TotalStaked    *big.Int // sum of amounts over all open positions of the tier
	AccPerShare    *big.Int // cumulative reward per staked unit, scaled by RewardPrecision
	Carry          *big.Int // reward deferred while the pool had no stake
	LastUpdateTime uint64
}

// ScheduleEntry is one future reward unlock, split across tier pools
// by weighted stake when its release time is crossed.
type ScheduleEntry struct {
	ReleaseTime uint64   `json:"releaseTime"`
	Amount      *big.Int `json:"amount"`
}

// PositionRef locates one position of a user.
type PositionRef struct {
	Duration uint64 `json:"duration"`
	LockedAt uint64 `json:"lockedAt"`
}

// PositionView is the externally visible state of a position.
type PositionView struct {
	Owner      vault.Address `json:"owner"`
	Duration   uint64        `json:"duration"`
	LockedAt   uint64        `json:"lockedAt"`
	Amount     *big.Int      `json:"amount"`
	RewardDebt *big.Int      `json:"rewardDebt"`
	Matured    bool          `json:"matured"`
}

// Settlement is the result of a mutating operation: what to transfer,
// what was forfeited, and the resulting position state (nil when the
// operation left no position behind).
type Settlement struct {
	Caller    vault.Address `json:"caller"`
	Recipient vault.Address `json:"recipient"`

	Transferred *big.Int `json:"transferred"` // principal sent to the recipient
	Reward      *big.Int `json:"reward"`      // reward token sent to the recipient
	Penalty     *big.Int `json:"penalty"`     // forfeited to the treasury

	// ZeroAfterPenalty marks a restake whose penalty consumed the whole
	// amount; the source was closed and nothing was opened.
	ZeroAfterPenalty bool `json:"zeroAfterPenalty"`

	Position *PositionView `json:"position,omitempty"`
}

func newSettlement(caller, recipient vault.Address) *Settlement {
	return &Settlement{
		Caller:      caller,
		Recipient:   recipient,
		Transferred: new(big.Int),
		Reward:      new(big.Int),
		Penalty:     new(big.Int),
	}
}

// ConfigPatch is a partial config update. Nil fields keep their value.
// Tier entries match by duration: an existing tier takes the patched
// rate and penalty, a new duration appends a tier. Weight or duration
// of a tier whose pool holds stake cannot change.
type ConfigPatch struct {
	Treasury     *vault.Address  `json:"treasury,omitempty"`
	RewardToken  *vault.Address  `json:"rewardToken,omitempty"`
	Gateways     []vault.Address `json:"gateways,omitempty"`
	AllowListed  *bool           `json:"allowListed,omitempty"`
	PenaltyCurve *PenaltyCurve   `json:"penaltyCurve,omitempty"`
	Tiers        []TierConfig    `json:"tiers,omitempty"`
	Schedule     []ScheduleEntry `json:"schedule,omitempty"` // appended unlocks, must be future-dated
}
