// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingapi

import (
	"math/big"

	"github.com/eclipsefi/stakevault/staking"
	"github.com/eclipsefi/stakevault/vault"
)

// ConfigView is the JSON shape of the engine config.
type ConfigView struct {
	Owner        vault.Address   `json:"owner"`
	Treasury     vault.Address   `json:"treasury"`
	RewardToken  vault.Address   `json:"rewardToken"`
	Gateways     []vault.Address `json:"gateways"`
	AllowListed  bool            `json:"allowListed"`
	PenaltyCurve string          `json:"penaltyCurve"`
	Tiers        []TierView      `json:"tiers"`
}

// TierView is the JSON shape of one tier.
type TierView struct {
	Duration   uint64   `json:"duration"`
	WeightBps  uint64   `json:"weightBps"`
	PenaltyBps uint64   `json:"penaltyBps"`
	RewardRate *big.Int `json:"rewardRate"`
}

func convertConfig(cfg *staking.Config) *ConfigView {
	curve := "linear"
	if cfg.PenaltyCurve == staking.CurveStepped {
		curve = "stepped"
	}
	view := &ConfigView{
		Owner:        cfg.Owner,
		Treasury:     cfg.Treasury,
		RewardToken:  cfg.RewardToken,
		Gateways:     cfg.Gateways,
		AllowListed:  cfg.AllowListed,
		PenaltyCurve: curve,
	}
	for _, tier := range cfg.Tiers {
		view.Tiers = append(view.Tiers, TierView{
			Duration:   tier.Duration,
			WeightBps:  tier.WeightBps,
			PenaltyBps: tier.PenaltyBps,
			RewardRate: tier.RewardRate,
		})
	}
	return view
}
