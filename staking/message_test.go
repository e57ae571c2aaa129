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
)

func newTestState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)
	require.NoError(t, New(st).Initialize(testConfig(), nil, genesisTime))
	return st
}

func TestApplyDispatch(t *testing.T) {
	st := newTestState(t)

	res, err := Apply(st, &Message{
		Caller:   alice,
		Now:      genesisTime,
		Action:   ActionStake,
		Amount:   amt(1000),
		Duration: 30 * day,
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", res.Position.Amount.String())

	locked := genesisTime
	res, err = Apply(st, &Message{
		Caller:   alice,
		Now:      genesisTime + 30*day,
		Action:   ActionUnstake,
		Duration: 30 * day,
		LockedAt: &locked,
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", res.Transferred.String())

	_, err = Apply(st, &Message{Caller: alice, Action: "mint"})
	assert.True(t, IsKind(err, ErrInvalidRequest))
}

func TestApplyParameterChecks(t *testing.T) {
	st := newTestState(t)

	_, err := Apply(st, &Message{Caller: alice, Action: ActionStake, Duration: 30 * day})
	assert.True(t, IsKind(err, ErrZeroAmount))

	_, err = Apply(st, &Message{Caller: owner, Action: ActionUpdateOwner})
	assert.True(t, IsKind(err, ErrInvalidRequest))

	_, err = Apply(st, &Message{Caller: owner, Action: ActionUpdateConfig})
	assert.True(t, IsKind(err, ErrInvalidRequest))

	_, err = Apply(st, &Message{Caller: gateway, Action: ActionFlexibleStakeClaim})
	assert.True(t, IsKind(err, ErrInvalidRequest))

	// the attached deposit must match the declared addingAmount
	_, err = Apply(st, &Message{
		Caller:       alice,
		Action:       ActionRelock,
		FromDuration: 30 * day,
		ToDuration:   90 * day,
		AddingAmount: amt(50),
		Amount:       amt(40),
	})
	assert.True(t, IsKind(err, ErrInvalidRequest))
}

func TestTokenReceived(t *testing.T) {
	st := newTestState(t)

	// the transport's sender and value override whatever the message says
	res, err := TokenReceived(st, alice, big.NewInt(500), &Message{
		Caller:   bob,
		Now:      genesisTime,
		Action:   ActionStake,
		Duration: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, alice, res.Caller)
	assert.Equal(t, "500", res.Position.Amount.String())

	// only deposit-bearing actions may ride the hook
	_, err = TokenReceived(st, alice, big.NewInt(500), &Message{Action: ActionClaim, Now: genesisTime})
	assert.True(t, IsKind(err, ErrInvalidRequest))
	_, err = TokenReceived(st, alice, big.NewInt(500), &Message{Action: ActionUnstake, Now: genesisTime})
	assert.True(t, IsKind(err, ErrInvalidRequest))
}
