// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/eclipsefi/stakevault/vault"
)

// checkAccess gates every stake-mutating entry point. Block takes
// precedence over allow; with the allow list enabled, absence from it
// is a rejection. Read-only queries never call this.
func (s *storage) checkAccess(cfg *Config, user vault.Address) error {
	blocked, err := s.IsBlocked(user)
	if err != nil {
		return err
	}
	if blocked {
		return newError(ErrUserBlocked, "%s is blocked", user)
	}
	if cfg.AllowListed {
		allowed, err := s.IsAllowed(user)
		if err != nil {
			return err
		}
		if !allowed {
			return newError(ErrUserNotAllowed, "%s is not on the allow list", user)
		}
	}
	return nil
}

func requireOwner(cfg *Config, caller vault.Address) error {
	if caller != cfg.Owner {
		return newError(ErrUnauthorized, "%s is not the owner", caller)
	}
	return nil
}

// AllowUsers puts users on the allow list. Owner only.
func (s *Staker) AllowUsers(caller vault.Address, users []vault.Address) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := requireOwner(cfg, caller); err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := s.store.SetAllowed(u, true); err != nil {
			return nil, err
		}
	}
	logger.Info("allowed users", "count", len(users))
	return newSettlement(caller, caller), nil
}

// BlockUsers puts users on the block list and drops them from the
// allow list. Owner only.
func (s *Staker) BlockUsers(caller vault.Address, users []vault.Address) (*Settlement, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := requireOwner(cfg, caller); err != nil {
		return nil, err
	}
	for _, u := range users {
		if err := s.store.SetBlocked(u, true); err != nil {
			return nil, err
		}
		if err := s.store.SetAllowed(u, false); err != nil {
			return nil, err
		}
	}
	logger.Info("blocked users", "count", len(users))
	return newSettlement(caller, caller), nil
}

// IsAllowed reports whether user may stake under the current config.
func (s *Staker) IsAllowed(user vault.Address) (bool, error) {
	cfg, err := s.store.GetConfig()
	if err != nil {
		return false, err
	}
	if err := s.store.checkAccess(cfg, user); err != nil {
		if IsKind(err, ErrUserBlocked) || IsKind(err, ErrUserNotAllowed) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
