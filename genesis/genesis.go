// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the initial engine configuration, either from
// the built-in devnet preset or from a user supplied YAML file.
package genesis

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/eclipsefi/stakevault/staking"
	"github.com/eclipsefi/stakevault/vault"
)

// Preset is a user customized genesis.
type Preset struct {
	Owner        string          `yaml:"owner"`
	Treasury     string          `yaml:"treasury"`
	RewardToken  string          `yaml:"rewardToken"`
	Gateways     []string        `yaml:"gateways"`
	AllowListed  bool            `yaml:"allowListed"`
	PenaltyCurve string          `yaml:"penaltyCurve"` // linear | stepped
	Tiers        []TierPreset    `yaml:"tiers"`
	Schedule     []SchedulePoint `yaml:"schedule"`
	AllowedUsers []string        `yaml:"allowedUsers"`
}

// TierPreset is one duration tier of the preset.
type TierPreset struct {
	DurationDays uint64 `yaml:"durationDays"` // 0 = flexible
	WeightBps    uint64 `yaml:"weightBps"`
	PenaltyBps   uint64 `yaml:"penaltyBps"`
	RewardRate   string `yaml:"rewardRate"` // token units per second, decimal
}

// SchedulePoint is one future reward unlock of the preset.
type SchedulePoint struct {
	ReleaseTime uint64 `yaml:"releaseTime"`
	Amount      string `yaml:"amount"`
}

// Load reads a preset from a YAML file.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read genesis file")
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to parse genesis file")
	}
	return &p, nil
}

// Devnet returns the development preset: the classic four tiers with
// the 0.7 early-exit penalty, owned by the first dev account.
func Devnet(owner vault.Address) *Preset {
	return &Preset{
		Owner:        owner.String(),
		Treasury:     owner.String(),
		PenaltyCurve: "linear",
		Tiers: []TierPreset{
			{DurationDays: 0, WeightBps: 10000, PenaltyBps: 0, RewardRate: "1000"},
			{DurationDays: 30, WeightBps: 12500, PenaltyBps: 7000, RewardRate: "1250"},
			{DurationDays: 90, WeightBps: 15000, PenaltyBps: 7000, RewardRate: "1500"},
			{DurationDays: 180, WeightBps: 20000, PenaltyBps: 7000, RewardRate: "2000"},
		},
	}
}

// Build converts the preset into the engine config and schedule.
func (p *Preset) Build() (*staking.Config, []staking.ScheduleEntry, error) {
	owner, err := vault.ParseAddress(p.Owner)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid owner address")
	}
	cfg := &staking.Config{
		Owner:       *owner,
		AllowListed: p.AllowListed,
	}

	if p.Treasury != "" {
		treasury, err := vault.ParseAddress(p.Treasury)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid treasury address")
		}
		cfg.Treasury = *treasury
	}
	if p.RewardToken != "" {
		token, err := vault.ParseAddress(p.RewardToken)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid reward token address")
		}
		cfg.RewardToken = *token
	}
	for _, g := range p.Gateways {
		gw, err := vault.ParseAddress(g)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid gateway address")
		}
		cfg.Gateways = append(cfg.Gateways, *gw)
	}

	switch p.PenaltyCurve {
	case "", "linear":
		cfg.PenaltyCurve = staking.CurveLinear
	case "stepped":
		cfg.PenaltyCurve = staking.CurveStepped
	default:
		return nil, nil, errors.Errorf("unknown penalty curve %q", p.PenaltyCurve)
	}

	for _, tp := range p.Tiers {
		rate, err := parseAmount(tp.RewardRate)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "tier %d reward rate", tp.DurationDays)
		}
		cfg.Tiers = append(cfg.Tiers, staking.TierConfig{
			Duration:   tp.DurationDays * vault.DayInSeconds,
			WeightBps:  tp.WeightBps,
			PenaltyBps: tp.PenaltyBps,
			RewardRate: rate,
		})
	}

	var schedule []staking.ScheduleEntry
	for _, sp := range p.Schedule {
		amount, err := parseAmount(sp.Amount)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "schedule entry at %d", sp.ReleaseTime)
		}
		schedule = append(schedule, staking.ScheduleEntry{
			ReleaseTime: sp.ReleaseTime,
			Amount:      amount,
		})
	}
	return cfg, schedule, nil
}

// AllowList returns the preset's initial allow-listed users.
func (p *Preset) AllowList() ([]vault.Address, error) {
	users := make([]vault.Address, 0, len(p.AllowedUsers))
	for _, u := range p.AllowedUsers {
		addr, err := vault.ParseAddress(u)
		if err != nil {
			return nil, errors.Wrap(err, "invalid allowed user address")
		}
		users = append(users, *addr)
	}
	return users, nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("malformed amount %q", s)
	}
	return v, nil
}
