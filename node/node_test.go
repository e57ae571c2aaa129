// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipsefi/stakevault/lvldb"
	"github.com/eclipsefi/stakevault/settledb"
	"github.com/eclipsefi/stakevault/staking"
	"github.com/eclipsefi/stakevault/vault"
)

const (
	day       = 24 * 3600
	startTime = uint64(1_700_000_000)
)

var (
	nodeOwner = vault.BytesToAddress([]byte{0x01})
	nodeUser  = vault.BytesToAddress([]byte{0x0a})
)

func testNodeConfig() *staking.Config {
	return &staking.Config{
		Owner:        nodeOwner,
		Treasury:     nodeOwner,
		RewardToken:  vault.BytesToAddress([]byte{0x03}),
		PenaltyCurve: staking.CurveLinear,
		Tiers: []staking.TierConfig{
			{Duration: 0, WeightBps: 10000, PenaltyBps: 0, RewardRate: big.NewInt(1000)},
			{Duration: 30 * day, WeightBps: 12500, PenaltyBps: 7000, RewardRate: big.NewInt(1250)},
		},
	}
}

func newTestNode(t *testing.T) *Node {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sdb, err := settledb.New("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })

	n := New(db, sdb)
	initialized, err := n.Initialize(testNodeConfig(), nil, nil, startTime)
	require.NoError(t, err)
	require.True(t, initialized)
	return n
}

func TestInitializeOnce(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	n := New(db, nil)
	initialized, err := n.Initialize(testNodeConfig(), nil, []vault.Address{nodeUser}, startTime)
	require.NoError(t, err)
	assert.True(t, initialized)

	// second run over the same store is a no-op
	initialized, err = n.Initialize(testNodeConfig(), nil, nil, startTime+100)
	require.NoError(t, err)
	assert.False(t, initialized)

	allowed, err := n.Staker().IsAllowed(nodeUser)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestExecuteCommits(t *testing.T) {
	n := newTestNode(t)
	gen := n.Generation()

	res, err := n.Execute(context.Background(), &staking.Message{
		Caller:   nodeUser,
		Now:      startTime,
		Action:   staking.ActionStake,
		Amount:   big.NewInt(1000),
		Duration: 30 * day,
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", res.Position.Amount.String())
	assert.Equal(t, gen+1, n.Generation())

	total, err := n.Staker().TotalStaking()
	require.NoError(t, err)
	assert.Equal(t, "1000", total.String())

	// the settlement landed in the history index
	entries, err := n.SettleDB().Query(context.Background(), &settledb.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, staking.ActionStake, entries[0].Action)
}

func TestExecuteRejectionLeavesStoreUntouched(t *testing.T) {
	n := newTestNode(t)
	gen := n.Generation()

	_, err := n.Execute(context.Background(), &staking.Message{
		Caller:   nodeUser,
		Now:      startTime,
		Action:   staking.ActionStake,
		Amount:   big.NewInt(1000),
		Duration: 7 * day, // no such tier
	})
	require.Error(t, err)
	assert.True(t, staking.IsKind(err, staking.ErrDurationTierNotFound))
	assert.Equal(t, gen, n.Generation())

	total, err := n.Staker().TotalStaking()
	require.NoError(t, err)
	assert.Zero(t, total.Sign())

	entries, err := n.SettleDB().Query(context.Background(), &settledb.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecuteFillsWallClock(t *testing.T) {
	n := newTestNode(t)

	// a zero Now is filled in, so the stake locks at a real timestamp
	res, err := n.Execute(context.Background(), &staking.Message{
		Caller:   nodeUser,
		Action:   staking.ActionStake,
		Amount:   big.NewInt(10),
		Duration: 30 * day,
	})
	require.NoError(t, err)
	assert.True(t, res.Position.LockedAt >= startTime)
}
