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

	"github.com/eclipsefi/stakevault/vault"
)

func newPool(t0 uint64) *Pool {
	return &Pool{
		TotalStaked:    new(big.Int),
		AccPerShare:    new(big.Int),
		Carry:          new(big.Int),
		LastUpdateTime: t0,
	}
}

func TestAccruePoolEmptyParksInCarry(t *testing.T) {
	pool := newPool(genesisTime)
	tier := &TierConfig{Duration: 0, WeightBps: 10000, RewardRate: big.NewInt(10)}

	accruePool(pool, tier, genesisTime+100)
	assert.Zero(t, pool.AccPerShare.Sign())
	assert.Equal(t, "1000", pool.Carry.String())
	assert.Equal(t, genesisTime+100, pool.LastUpdateTime)

	// carry is credited once stake exists, nothing was lost
	pool.TotalStaked = big.NewInt(50)
	accruePool(pool, tier, genesisTime+200)
	assert.Zero(t, pool.Carry.Sign())
	// (10x100 + 1000) x 1e18 / 50
	want := new(big.Int).Div(new(big.Int).Mul(big.NewInt(2000), vault.RewardPrecision), big.NewInt(50))
	assert.Equal(t, want.String(), pool.AccPerShare.String())
}

func TestAccruePoolSameInstantIsNoop(t *testing.T) {
	pool := newPool(genesisTime)
	pool.TotalStaked = big.NewInt(100)
	tier := &TierConfig{Duration: 0, WeightBps: 10000, RewardRate: big.NewInt(10)}

	accruePool(pool, tier, genesisTime+100)
	acc := new(big.Int).Set(pool.AccPerShare)

	accruePool(pool, tier, genesisTime+100)
	assert.Equal(t, acc.String(), pool.AccPerShare.String())
	accruePool(pool, tier, genesisTime+50) // time never runs backwards
	assert.Equal(t, acc.String(), pool.AccPerShare.String())
}

func TestCreditPoolKeepsResidue(t *testing.T) {
	pool := newPool(genesisTime)
	pool.TotalStaked = big.NewInt(3)

	creditPool(pool, big.NewInt(10))
	// 10x1e18/3 truncates; the sub-unit residue stays parked
	assert.Equal(t, "3333333333333333333", pool.AccPerShare.String())
	assert.Zero(t, pool.Carry.Sign()) // residue below one token unit

	// owed over all stake plus residue never exceeds the credited reward
	owed := new(big.Int).Div(new(big.Int).Mul(big.NewInt(3), pool.AccPerShare), vault.RewardPrecision)
	assert.True(t, owed.Cmp(big.NewInt(10)) <= 0)
}

func TestCreditPoolCarriesResidueForward(t *testing.T) {
	pool := newPool(genesisTime)
	// stake just over 2e18 so each 10-unit credit leaves a whole-unit
	// residue in Carry
	pool.TotalStaked = new(big.Int).Add(new(big.Int).Mul(big.NewInt(2), vault.RewardPrecision), big.NewInt(1))

	creditPool(pool, big.NewInt(10))
	assert.Equal(t, "4", pool.AccPerShare.String())
	assert.Equal(t, "1", pool.Carry.String())

	// a back-to-back credit consumes the parked unit instead of
	// overwriting it
	creditPool(pool, big.NewInt(10))
	assert.Equal(t, "9", pool.AccPerShare.String())
	assert.Zero(t, pool.Carry.Sign())
}

func TestScheduleWeightedSplit(t *testing.T) {
	cfg := testConfig()
	for i := range cfg.Tiers {
		cfg.Tiers[i].RewardRate = new(big.Int) // isolate schedule rewards
	}
	schedule := []ScheduleEntry{{ReleaseTime: genesisTime + 500, Amount: big.NewInt(9000)}}
	s := newTestStaker(t, cfg, schedule)

	_, err := s.Stake(alice, 0, nil, amt(100), genesisTime)
	require.NoError(t, err)
	_, err = s.Stake(bob, 30*day, nil, amt(100), genesisTime)
	require.NoError(t, err)

	at := genesisTime + 1000
	// weighted stake: 100x10000 vs 100x12500; alice 9000x4/9, bob takes
	// the rest including the remainder
	ra, err := s.Reward(alice, at)
	require.NoError(t, err)
	rb, err := s.Reward(bob, at)
	require.NoError(t, err)
	assert.Equal(t, "4000", ra.String())
	assert.Equal(t, "5000", rb.String())

	// released exactly once
	_, err = s.Claim(alice, 0, 0, at)
	require.NoError(t, err)
	pending, err := s.PendingRewardSchedule()
	require.NoError(t, err)
	assert.Empty(t, pending)
	ra, err = s.Reward(alice, at+1000)
	require.NoError(t, err)
	assert.Zero(t, ra.Sign())
}

func TestScheduleDeferredWhileUnstaked(t *testing.T) {
	cfg := testConfig()
	for i := range cfg.Tiers {
		cfg.Tiers[i].RewardRate = new(big.Int)
	}
	schedule := []ScheduleEntry{{ReleaseTime: genesisTime + 100, Amount: big.NewInt(9000)}}
	s := newTestStaker(t, cfg, schedule)

	// release time passes with nobody staked; the unlock stays pending
	_, err := s.Stake(alice, 0, nil, amt(100), genesisTime+500)
	require.NoError(t, err)
	pending, err := s.PendingRewardSchedule()
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// the next accrual with stake on the books releases it in full
	r, err := s.Reward(alice, genesisTime+600)
	require.NoError(t, err)
	assert.Equal(t, "9000", r.String())
}

func TestScheduleMultipleEntriesInOrder(t *testing.T) {
	cfg := testConfig()
	for i := range cfg.Tiers {
		cfg.Tiers[i].RewardRate = new(big.Int)
	}
	schedule := []ScheduleEntry{
		{ReleaseTime: genesisTime + 100, Amount: big.NewInt(1000)},
		{ReleaseTime: genesisTime + 200, Amount: big.NewInt(2000)},
		{ReleaseTime: genesisTime + 300, Amount: big.NewInt(4000)},
	}
	s := newTestStaker(t, cfg, schedule)

	_, err := s.Stake(alice, 0, nil, amt(100), genesisTime)
	require.NoError(t, err)

	r, err := s.Reward(alice, genesisTime+250)
	require.NoError(t, err)
	assert.Equal(t, "3000", r.String())

	r, err = s.Reward(alice, genesisTime+300)
	require.NoError(t, err)
	assert.Equal(t, "7000", r.String())
}

func TestAppendScheduleViaConfig(t *testing.T) {
	cfg := testConfig()
	for i := range cfg.Tiers {
		cfg.Tiers[i].RewardRate = new(big.Int)
	}
	s := newTestStaker(t, cfg, []ScheduleEntry{{ReleaseTime: genesisTime + 100, Amount: big.NewInt(1000)}})

	// appended entries must not break the tail ordering
	bad := &ConfigPatch{Schedule: []ScheduleEntry{{ReleaseTime: genesisTime + 50, Amount: big.NewInt(500)}}}
	_, err := s.UpdateConfig(owner, bad, genesisTime+10)
	assert.True(t, IsKind(err, ErrInvalidConfig))

	good := &ConfigPatch{Schedule: []ScheduleEntry{{ReleaseTime: genesisTime + 200, Amount: big.NewInt(500)}}}
	_, err = s.UpdateConfig(owner, good, genesisTime+10)
	require.NoError(t, err)

	pending, err := s.PendingRewardSchedule()
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
