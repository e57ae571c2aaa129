// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/eclipsefi/stakevault/state"
	"github.com/eclipsefi/stakevault/vault"
)

// Action names of the message surface.
const (
	ActionUpdateOwner           = "updateOwner"
	ActionUpdateConfig          = "updateConfig"
	ActionStake                 = "stake"
	ActionUnstake               = "unstake"
	ActionRestake               = "restake"
	ActionRelock                = "relock"
	ActionClaim                 = "claim"
	ActionClaimAll              = "claimAll"
	ActionAllowUsers            = "allowUsers"
	ActionBlockUsers            = "blockUsers"
	ActionFlexibleStakeClaim    = "flexibleStakeClaim"
	ActionTimelockStakeClaim    = "timelockStakeClaim"
	ActionTimelockStakeClaimAll = "timelockStakeClaimAll"
)

// Message is one submitted state transition. Amount carries the value
// attached by the token transfer notification for deposit-bearing
// actions (stake, relock with addingAmount); for all other actions it
// must be absent. Now is the transition time supplied by the execution
// environment.
type Message struct {
	Caller vault.Address `json:"caller"`
	Now    uint64        `json:"now"`
	Action string        `json:"action"`
	Amount *big.Int      `json:"amount,omitempty"`

	// action parameters, used per action
	Owner        *vault.Address  `json:"owner,omitempty"`
	Patch        *ConfigPatch    `json:"patch,omitempty"`
	Duration     uint64          `json:"duration,omitempty"`
	FromDuration uint64          `json:"fromDuration,omitempty"`
	ToDuration   uint64          `json:"toDuration,omitempty"`
	LockedAt     *uint64         `json:"lockedAt,omitempty"`
	UnstakeAmt   *big.Int        `json:"unstakeAmount,omitempty"`
	Recipient    *vault.Address  `json:"recipient,omitempty"`
	From         *vault.Address  `json:"from,omitempty"`
	To           *vault.Address  `json:"to,omitempty"`
	Relocking    []uint64        `json:"relocking,omitempty"`
	AddingAmount *big.Int        `json:"addingAmount,omitempty"`
	IncludeFlex  bool            `json:"includeFlexible,omitempty"`
	User         *vault.Address  `json:"user,omitempty"`
	Users        []vault.Address `json:"users,omitempty"`
}

func (m *Message) lockedAt() uint64 {
	if m.LockedAt == nil {
		return 0
	}
	return *m.LockedAt
}

// Apply executes one message against the state and returns the
// settlement. Nothing is committed here: on success the caller commits
// the state stage; on error the state is discarded, so every message is
// all-or-nothing.
func Apply(st *state.State, msg *Message) (*Settlement, error) {
	s := New(st)
	switch msg.Action {
	case ActionUpdateOwner:
		if msg.Owner == nil {
			return nil, newError(ErrInvalidRequest, "updateOwner requires owner")
		}
		return s.UpdateOwner(msg.Caller, *msg.Owner)
	case ActionUpdateConfig:
		if msg.Patch == nil {
			return nil, newError(ErrInvalidRequest, "updateConfig requires patch")
		}
		return s.UpdateConfig(msg.Caller, msg.Patch, msg.Now)
	case ActionStake:
		if msg.Amount == nil {
			return nil, newError(ErrZeroAmount, "stake requires an attached amount")
		}
		return s.Stake(msg.Caller, msg.Duration, msg.Recipient, msg.Amount, msg.Now)
	case ActionUnstake:
		return s.Unstake(msg.Caller, msg.Duration, msg.lockedAt(), msg.UnstakeAmt, msg.Recipient, msg.Now)
	case ActionRestake:
		return s.Restake(msg.Caller, msg.FromDuration, msg.lockedAt(), msg.ToDuration, msg.UnstakeAmt, msg.Recipient, msg.Now)
	case ActionRelock:
		from := msg.Caller
		if msg.From != nil {
			from = *msg.From
		}
		to := from
		if msg.To != nil {
			to = *msg.To
		}
		if msg.AddingAmount != nil && (msg.Amount == nil || msg.Amount.Cmp(msg.AddingAmount) != 0) {
			return nil, newError(ErrInvalidRequest, "addingAmount does not match the attached amount")
		}
		return s.Relock(msg.Caller, from, msg.FromDuration, to, msg.ToDuration, msg.Relocking, msg.AddingAmount, msg.Now)
	case ActionClaim:
		return s.Claim(msg.Caller, msg.Duration, msg.lockedAt(), msg.Now)
	case ActionClaimAll:
		return s.ClaimAll(msg.Caller, msg.IncludeFlex, msg.Now)
	case ActionAllowUsers:
		return s.AllowUsers(msg.Caller, msg.Users)
	case ActionBlockUsers:
		return s.BlockUsers(msg.Caller, msg.Users)
	case ActionFlexibleStakeClaim:
		if msg.User == nil {
			return nil, newError(ErrInvalidRequest, "flexibleStakeClaim requires user")
		}
		return s.FlexibleStakeClaim(msg.Caller, *msg.User, msg.Now)
	case ActionTimelockStakeClaim:
		if msg.User == nil {
			return nil, newError(ErrInvalidRequest, "timelockStakeClaim requires user")
		}
		return s.TimelockStakeClaim(msg.Caller, msg.Duration, msg.lockedAt(), *msg.User, msg.Now)
	case ActionTimelockStakeClaimAll:
		if msg.User == nil {
			return nil, newError(ErrInvalidRequest, "timelockStakeClaimAll requires user")
		}
		return s.TimelockStakeClaimAll(msg.Caller, *msg.User, msg.Now)
	default:
		return nil, newError(ErrInvalidRequest, "unknown action %q", msg.Action)
	}
}

// TokenReceived is the deposit hook: the token transport notifies the
// engine that `from` sent `amount`, with the follow-up instruction
// embedded. Only deposit-bearing actions may ride the hook.
func TokenReceived(st *state.State, from vault.Address, amount *big.Int, inner *Message) (*Settlement, error) {
	if inner.Action != ActionStake && inner.Action != ActionRelock {
		return nil, newError(ErrInvalidRequest, "action %q cannot carry a deposit", inner.Action)
	}
	msg := *inner
	msg.Caller = from
	msg.Amount = amount
	return Apply(st, &msg)
}
