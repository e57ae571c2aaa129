// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipsefi/stakevault/lvldb"
	"github.com/eclipsefi/stakevault/state"
	"github.com/eclipsefi/stakevault/vault"
)

const (
	day = 24 * 3600

	genesisTime = uint64(1_700_000_000)
)

var (
	owner    = vault.BytesToAddress([]byte{0x01})
	treasury = vault.BytesToAddress([]byte{0x02})
	token    = vault.BytesToAddress([]byte{0x03})
	alice    = vault.BytesToAddress([]byte{0x0a})
	bob      = vault.BytesToAddress([]byte{0x0b})
	carol    = vault.BytesToAddress([]byte{0x0c})
	gateway  = vault.BytesToAddress([]byte{0x1f})
)

func testConfig() *Config {
	return &Config{
		Owner:        owner,
		Treasury:     treasury,
		RewardToken:  token,
		Gateways:     []vault.Address{gateway},
		PenaltyCurve: CurveLinear,
		Tiers: []TierConfig{
			{Duration: 0, WeightBps: 10000, PenaltyBps: 0, RewardRate: big.NewInt(1000)},
			{Duration: 30 * day, WeightBps: 12500, PenaltyBps: 7000, RewardRate: big.NewInt(1250)},
			{Duration: 90 * day, WeightBps: 15000, PenaltyBps: 7000, RewardRate: big.NewInt(1500)},
		},
	}
}

func newTestStaker(t *testing.T, cfg *Config, schedule []ScheduleEntry) *Staker {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(state.New(db))
	require.NoError(t, s.Initialize(cfg, schedule, genesisTime))
	return s
}

func amt(v int64) *big.Int { return big.NewInt(v) }

func TestInitialize(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	got, err := s.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	total, err := s.TotalStaking()
	require.NoError(t, err)
	assert.Zero(t, total.Sign())

	// one-time only
	err = s.Initialize(testConfig(), nil, genesisTime)
	assert.True(t, IsKind(err, ErrInvalidConfig))
}

func TestInitializeRejectsBadConfig(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	s := New(state.New(db))

	cfg := testConfig()
	cfg.Owner = vault.Address{}
	assert.True(t, IsKind(s.Initialize(cfg, nil, genesisTime), ErrInvalidConfig))

	cfg = testConfig()
	cfg.Tiers = nil
	assert.True(t, IsKind(s.Initialize(cfg, nil, genesisTime), ErrInvalidConfig))

	cfg = testConfig()
	cfg.Tiers[0].PenaltyBps = 100 // flexible tier cannot carry a penalty
	assert.True(t, IsKind(s.Initialize(cfg, nil, genesisTime), ErrInvalidConfig))

	cfg = testConfig()
	cfg.Tiers = append(cfg.Tiers, cfg.Tiers[1])
	assert.True(t, IsKind(s.Initialize(cfg, nil, genesisTime), ErrInvalidConfig))

	// schedule entry in the past
	err = s.Initialize(testConfig(), []ScheduleEntry{{ReleaseTime: genesisTime, Amount: amt(100)}}, genesisTime)
	assert.True(t, IsKind(err, ErrInvalidConfig))
}

func TestStakeAndQueries(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	res, err := s.Stake(alice, 30*day, nil, amt(1000), genesisTime)
	require.NoError(t, err)
	assert.Equal(t, alice, res.Recipient)
	assert.Zero(t, res.Reward.Sign())
	require.NotNil(t, res.Position)
	assert.Equal(t, "1000", res.Position.Amount.String())
	assert.Equal(t, genesisTime, res.Position.LockedAt)
	assert.False(t, res.Position.Matured)

	total, err := s.TotalStaking()
	require.NoError(t, err)
	assert.Equal(t, "1000", total.String())

	byTier, err := s.TotalStakingByDuration()
	require.NoError(t, err)
	require.Len(t, byTier, 3)
	assert.Zero(t, byTier[0].TotalStaked.Sign())
	assert.Equal(t, "1000", byTier[1].TotalStaked.String())

	views, err := s.Staking(alice, genesisTime)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, uint64(30*day), views[0].Duration)
}

func TestStakeRejections(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 7*day, nil, amt(100), genesisTime)
	assert.True(t, IsKind(err, ErrDurationTierNotFound))

	_, err = s.Stake(alice, 30*day, nil, amt(0), genesisTime)
	assert.True(t, IsKind(err, ErrZeroAmount))

	_, err = s.Stake(alice, 30*day, nil, big.NewInt(-5), genesisTime)
	assert.True(t, IsKind(err, ErrArithmeticOverflow))

	over := new(big.Int).Add(vault.MaxTokenAmount, big.NewInt(1))
	_, err = s.Stake(alice, 30*day, nil, over, genesisTime)
	assert.True(t, IsKind(err, ErrArithmeticOverflow))
}

func TestFlexibleStakesMerge(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 0, nil, amt(100), genesisTime)
	require.NoError(t, err)
	res, err := s.Stake(alice, 0, nil, amt(50), genesisTime+500)
	require.NoError(t, err)

	// single flexible position at lockedAt 0
	assert.Equal(t, uint64(0), res.Position.LockedAt)
	assert.Equal(t, "150", res.Position.Amount.String())
	views, err := s.Staking(alice, genesisTime+500)
	require.NoError(t, err)
	require.Len(t, views, 1)

	// the top-up settled the reward accrued on the first 100
	assert.Equal(t, "500000", res.Reward.String()) // 1000/s x 500s, sole staker
}

func TestTwoEqualFlexibleStakers(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 0, nil, amt(100), genesisTime)
	require.NoError(t, err)
	_, err = s.Stake(bob, 0, nil, amt(100), genesisTime)
	require.NoError(t, err)

	at := genesisTime + 1000
	// 1000/s over 1000s split over equal stake
	ra, err := s.Reward(alice, at)
	require.NoError(t, err)
	rb, err := s.Reward(bob, at)
	require.NoError(t, err)
	assert.Equal(t, "500000", ra.String())
	assert.Equal(t, ra.String(), rb.String())

	claimed, err := s.Claim(alice, 0, 0, at)
	require.NoError(t, err)
	assert.Equal(t, "500000", claimed.Reward.String())

	// settled, nothing further owed at the same instant
	again, err := s.Claim(alice, 0, 0, at)
	require.NoError(t, err)
	assert.Zero(t, again.Reward.Sign())
}

func TestAccumulatorMonotonic(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 0, nil, amt(100), genesisTime)
	require.NoError(t, err)

	prev := new(big.Int)
	for i := uint64(1); i <= 10; i++ {
		r, err := s.Reward(alice, genesisTime+i*100)
		require.NoError(t, err)
		assert.True(t, r.Cmp(prev) > 0, "reward must grow with time")
		prev = r
	}
}

func TestUnstakeMaturedLock(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 30*day, nil, amt(1000), genesisTime)
	require.NoError(t, err)

	at := genesisTime + 30*day
	res, err := s.Unstake(alice, 30*day, genesisTime, nil, nil, at)
	require.NoError(t, err)
	assert.Equal(t, "1000", res.Transferred.String())
	assert.Zero(t, res.Penalty.Sign())
	// sole staker of the tier, 1250/s over the full lock
	assert.Equal(t, big.NewInt(1250*30*day).String(), res.Reward.String())
	assert.Nil(t, res.Position)

	total, err := s.TotalStaking()
	require.NoError(t, err)
	assert.Zero(t, total.Sign())
}

func TestUnstakeEarlyForfeitsPenalty(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 30*day, nil, amt(1000), genesisTime)
	require.NoError(t, err)

	// halfway through the lock: max penalty 70%, linear decay -> 35%
	at := genesisTime + 15*day
	res, err := s.Unstake(alice, 30*day, genesisTime, nil, nil, at)
	require.NoError(t, err)
	assert.Equal(t, "350", res.Penalty.String())
	assert.Equal(t, "650", res.Transferred.String())

	// principal is conserved between recipient and treasury
	back := new(big.Int).Add(res.Transferred, res.Penalty)
	assert.Equal(t, "1000", back.String())
}

func TestPartialUnstakeBeforeMaturity(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 30*day, nil, amt(1000), genesisTime)
	require.NoError(t, err)

	at := genesisTime + 10*day
	_, err = s.Unstake(alice, 30*day, genesisTime, amt(400), nil, at)
	assert.True(t, IsKind(err, ErrLockNotMatured))

	// full early exit stays legal
	res, err := s.Unstake(alice, 30*day, genesisTime, amt(1000), nil, at)
	require.NoError(t, err)
	assert.Nil(t, res.Position)

	// an allow-listed user may exit partially
	_, err = s.Stake(bob, 30*day, nil, amt(1000), at)
	require.NoError(t, err)
	_, err = s.AllowUsers(owner, []vault.Address{bob})
	require.NoError(t, err)
	res, err = s.Unstake(bob, 30*day, at, amt(400), nil, at+day)
	require.NoError(t, err)
	require.NotNil(t, res.Position)
	assert.Equal(t, "600", res.Position.Amount.String())
}

func TestUnstakeRejections(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Unstake(alice, 30*day, genesisTime, nil, nil, genesisTime+day)
	assert.True(t, IsKind(err, ErrPositionNotFound))

	_, err = s.Stake(alice, 30*day, nil, amt(100), genesisTime)
	require.NoError(t, err)
	_, err = s.Unstake(alice, 30*day, genesisTime, amt(500), nil, genesisTime+40*day)
	assert.True(t, IsKind(err, ErrInsufficientStake))
}

func TestUpdateOwner(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.UpdateOwner(alice, alice)
	assert.True(t, IsKind(err, ErrUnauthorized))

	_, err = s.UpdateOwner(owner, vault.Address{})
	assert.True(t, IsKind(err, ErrInvalidConfig))

	_, err = s.UpdateOwner(owner, alice)
	require.NoError(t, err)
	got, err := s.Owner()
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	// old owner lost its powers
	_, err = s.UpdateOwner(owner, owner)
	assert.True(t, IsKind(err, ErrUnauthorized))
}

func TestUpdateConfigRateChangeNotRetroactive(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 0, nil, amt(100), genesisTime)
	require.NoError(t, err)

	// double the flexible rate after 1000s
	at := genesisTime + 1000
	patch := &ConfigPatch{Tiers: []TierConfig{{Duration: 0, WeightBps: 10000, RewardRate: big.NewInt(2000)}}}
	_, err = s.UpdateConfig(owner, patch, at)
	require.NoError(t, err)

	r, err := s.Reward(alice, at+1000)
	require.NoError(t, err)
	// 1000/s for the first stretch, 2000/s after the change
	assert.Equal(t, "3000000", r.String())
}

func TestUpdateConfigWeightFrozenWhileStaked(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	_, err := s.Stake(alice, 30*day, nil, amt(100), genesisTime)
	require.NoError(t, err)

	patch := &ConfigPatch{Tiers: []TierConfig{{Duration: 30 * day, WeightBps: 20000, PenaltyBps: 7000, RewardRate: big.NewInt(1250)}}}
	_, err = s.UpdateConfig(owner, patch, genesisTime+1)
	assert.True(t, IsKind(err, ErrInvalidConfig))

	// drained tier unfreezes
	_, err = s.Unstake(alice, 30*day, genesisTime, nil, nil, genesisTime+30*day)
	require.NoError(t, err)
	_, err = s.UpdateConfig(owner, patch, genesisTime+30*day)
	require.NoError(t, err)
}

func TestUpdateConfigAddsTier(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	patch := &ConfigPatch{Tiers: []TierConfig{{Duration: 180 * day, WeightBps: 20000, PenaltyBps: 9000, RewardRate: big.NewInt(2000)}}}
	_, err := s.UpdateConfig(owner, patch, genesisTime+1)
	require.NoError(t, err)

	res, err := s.Stake(alice, 180*day, nil, amt(100), genesisTime+2)
	require.NoError(t, err)
	assert.Equal(t, uint64(180*day), res.Position.Duration)

	// the new pool accrues from the moment the tier was added, never
	// from before: one second parked while unstaked plus ten staked
	claim, err := s.Claim(alice, 180*day, genesisTime+2, genesisTime+12)
	require.NoError(t, err)
	assert.Equal(t, "22000", claim.Reward.String())
}

func TestUpdateConfigScalars(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	curve := CurveStepped
	allow := true
	patch := &ConfigPatch{
		Treasury:     &carol,
		PenaltyCurve: &curve,
		AllowListed:  &allow,
		Gateways:     []vault.Address{bob},
	}
	_, err := s.UpdateConfig(owner, patch, genesisTime+1)
	require.NoError(t, err)

	cfg, err := s.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, carol, cfg.Treasury)
	assert.Equal(t, CurveStepped, cfg.PenaltyCurve)
	assert.True(t, cfg.AllowListed)
	assert.True(t, cfg.IsGateway(bob))
	assert.False(t, cfg.IsGateway(gateway))

	_, err = s.UpdateConfig(alice, patch, genesisTime+2)
	assert.True(t, IsKind(err, ErrUnauthorized))
}

func TestStakeForRecipient(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	res, err := s.Stake(alice, 0, &bob, amt(100), genesisTime)
	require.NoError(t, err)
	assert.Equal(t, alice, res.Caller)
	assert.Equal(t, bob, res.Recipient)

	views, err := s.Staking(bob, genesisTime)
	require.NoError(t, err)
	require.Len(t, views, 1)
	views, err = s.Staking(alice, genesisTime)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestCalculatePenaltyQuery(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	p, err := s.CalculatePenalty(amt(1000), 30*day, genesisTime, genesisTime+15*day)
	require.NoError(t, err)
	assert.Equal(t, "350", p.String())

	p, err = s.CalculatePenalty(amt(1000), 30*day, genesisTime, genesisTime+30*day)
	require.NoError(t, err)
	assert.Zero(t, p.Sign())

	_, err = s.CalculatePenalty(amt(1000), 7*day, genesisTime, genesisTime)
	assert.True(t, IsKind(err, ErrDurationTierNotFound))
}

func TestConservationAcrossMixedSequence(t *testing.T) {
	s := newTestStaker(t, testConfig(), nil)

	deposits := new(big.Int)
	withdrawn := new(big.Int)
	penalties := new(big.Int)
	rewards := new(big.Int)

	record := func(res *Settlement, err error) {
		require.NoError(t, err)
		withdrawn.Add(withdrawn, res.Transferred)
		penalties.Add(penalties, res.Penalty)
		rewards.Add(rewards, res.Reward)
	}
	stake := func(user vault.Address, duration uint64, amount int64, at uint64) {
		res, err := s.Stake(user, duration, nil, amt(amount), at)
		record(res, err)
		deposits.Add(deposits, amt(amount))
	}

	stake(alice, 0, 1000, genesisTime)
	stake(bob, 30*day, 2000, genesisTime)
	stake(carol, 90*day, 500, genesisTime+day)
	stake(alice, 0, 300, genesisTime+2*day)

	// a tier appended mid-flight joins the books cleanly
	patch := &ConfigPatch{Tiers: []TierConfig{{Duration: 7 * day, WeightBps: 11000, PenaltyBps: 5000, RewardRate: big.NewInt(700)}}}
	_, err := s.UpdateConfig(owner, patch, genesisTime+3*day)
	require.NoError(t, err)
	stake(bob, 7*day, 800, genesisTime+4*day)

	res, err := s.Unstake(bob, 30*day, genesisTime, nil, nil, genesisTime+10*day)
	record(res, err)

	res, err = s.Restake(carol, 90*day, genesisTime+day, 30*day, nil, nil, genesisTime+20*day)
	record(res, err)

	res, err = s.Relock(carol, carol, 30*day, carol, 90*day, []uint64{genesisTime + 20*day}, amt(100), genesisTime+22*day)
	record(res, err)
	deposits.Add(deposits, amt(100))

	res, err = s.Unstake(alice, 0, 0, amt(400), nil, genesisTime+25*day)
	record(res, err)

	res, err = s.ClaimAll(bob, true, genesisTime+26*day)
	record(res, err)
	res, err = s.Claim(alice, 0, 0, genesisTime+26*day)
	record(res, err)

	// the ledger holds exactly deposits minus withdrawals and penalties
	expected := new(big.Int).Sub(deposits, withdrawn)
	expected.Sub(expected, penalties)
	total, err := s.TotalStaking()
	require.NoError(t, err)
	assert.Equal(t, expected.String(), total.String())

	ledger := new(big.Int)
	for _, user := range []vault.Address{alice, bob, carol} {
		views, err := s.Staking(user, genesisTime+26*day)
		require.NoError(t, err)
		for _, v := range views {
			ledger.Add(ledger, v.Amount)
		}
	}
	assert.Equal(t, expected.String(), ledger.String())

	// nothing was claimed beyond what the rates could have emitted
	cfg, err := s.GetConfig()
	require.NoError(t, err)
	emitted := new(big.Int)
	for _, tier := range cfg.Tiers {
		emitted.Add(emitted, new(big.Int).Mul(tier.RewardRate, big.NewInt(26*day)))
	}
	assert.True(t, rewards.Cmp(emitted) <= 0, "claimed %s, emitted at most %s", rewards, emitted)
}
