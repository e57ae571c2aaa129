// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipsefi/stakevault/staking"
	"github.com/eclipsefi/stakevault/vault"
)

func TestDevnetBuild(t *testing.T) {
	owner := vault.MustParseAddress("0x0000000000000000000000000000000000000001")
	cfg, schedule, err := Devnet(owner).Build()
	require.NoError(t, err)

	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, owner, cfg.Treasury)
	assert.Equal(t, staking.CurveLinear, cfg.PenaltyCurve)
	assert.Empty(t, schedule)

	require.Len(t, cfg.Tiers, 4)
	assert.Equal(t, uint64(0), cfg.Tiers[0].Duration)
	assert.Equal(t, 30*vault.DayInSeconds, cfg.Tiers[1].Duration)
	assert.Equal(t, uint64(7000), cfg.Tiers[1].PenaltyBps)
	assert.Equal(t, uint64(12500), cfg.Tiers[1].WeightBps)
}

func TestLoadYAML(t *testing.T) {
	preset := `
owner: "0x0000000000000000000000000000000000000001"
treasury: "0x0000000000000000000000000000000000000002"
allowListed: true
penaltyCurve: stepped
tiers:
  - durationDays: 0
    weightBps: 10000
    rewardRate: "100"
  - durationDays: 90
    weightBps: 15000
    penaltyBps: 5000
    rewardRate: "340282366920938463463374607431768211455"
schedule:
  - releaseTime: 1000
    amount: "500000"
allowedUsers:
  - "0x0000000000000000000000000000000000000003"
`
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(preset), 0o600))

	p, err := Load(path)
	require.NoError(t, err)

	cfg, schedule, err := p.Build()
	require.NoError(t, err)
	assert.True(t, cfg.AllowListed)
	assert.Equal(t, staking.CurveStepped, cfg.PenaltyCurve)
	require.Len(t, cfg.Tiers, 2)
	assert.Equal(t, vault.MaxTokenAmount, cfg.Tiers[1].RewardRate)
	require.Len(t, schedule, 1)
	assert.Equal(t, big.NewInt(500000), schedule[0].Amount)

	users, err := p.AllowList()
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestBuildRejectsBadInput(t *testing.T) {
	p := Devnet(vault.MustParseAddress("0x0000000000000000000000000000000000000001"))
	p.PenaltyCurve = "exponential"
	_, _, err := p.Build()
	assert.Error(t, err)

	p = Devnet(vault.MustParseAddress("0x0000000000000000000000000000000000000001"))
	p.Tiers[0].RewardRate = "-5"
	_, _, err = p.Build()
	assert.Error(t, err)

	p = &Preset{Owner: "nonsense"}
	_, _, err = p.Build()
	assert.Error(t, err)
}
