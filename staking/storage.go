// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/eclipsefi/stakevault/state"
	"github.com/eclipsefi/stakevault/vault"
)

var (
	slotConfig         = state.NameToSlot("config")
	slotPools          = state.NameToSlot("pools")
	slotPositions      = state.NameToSlot("positions")
	slotUserIndex      = state.NameToSlot("user-index")
	slotAllowList      = state.NameToSlot("allow-list")
	slotBlockList      = state.NameToSlot("block-list")
	slotSchedule       = state.NameToSlot("reward-schedule")
	slotScheduleCursor = state.NameToSlot("reward-schedule-cursor")
)

// durationKey addresses a tier pool by its duration.
type durationKey uint64

func (k durationKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// positionKey addresses one position by (owner, duration, lockedAt).
type positionKey struct {
	owner    vault.Address
	duration uint64
	lockedAt uint64
}

func (k positionKey) Bytes() []byte {
	b := make([]byte, vault.AddressLength+16)
	copy(b, k.owner.Bytes())
	binary.BigEndian.PutUint64(b[vault.AddressLength:], k.duration)
	binary.BigEndian.PutUint64(b[vault.AddressLength+8:], k.lockedAt)
	return b
}

// storage is the root storage of the staking engine, typed views over
// one journaled state. Positions live in a hashed mapping and are not
// iterable, so a per-user index of refs is maintained alongside.
type storage struct {
	config    *state.Item[*Config]
	pools     *state.Mapping[durationKey, *Pool]
	positions *state.Mapping[positionKey, *Position]
	userIndex *state.Mapping[vault.Address, []PositionRef]
	allowList *state.Mapping[vault.Address, bool]
	blockList *state.Mapping[vault.Address, bool]
	schedule  *state.Item[[]ScheduleEntry]
	cursor    *state.Item[uint64]
}

func newStorage(st *state.State) *storage {
	return &storage{
		config:    state.NewItem[*Config](st, slotConfig),
		pools:     state.NewMapping[durationKey, *Pool](st, slotPools),
		positions: state.NewMapping[positionKey, *Position](st, slotPositions),
		userIndex: state.NewMapping[vault.Address, []PositionRef](st, slotUserIndex),
		allowList: state.NewMapping[vault.Address, bool](st, slotAllowList),
		blockList: state.NewMapping[vault.Address, bool](st, slotBlockList),
		schedule:  state.NewItem[[]ScheduleEntry](st, slotSchedule),
		cursor:    state.NewItem[uint64](st, slotScheduleCursor),
	}
}

func (s *storage) GetConfig() (*Config, error) {
	cfg, err := s.config.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	if cfg == nil {
		return nil, newError(ErrInvalidConfig, "engine not initialized")
	}
	return cfg, nil
}

func (s *storage) SetConfig(cfg *Config) error {
	if err := s.config.Put(cfg); err != nil {
		return errors.Wrap(err, "failed to set config")
	}
	return nil
}

// GetPool loads a tier pool, creating a fresh zero pool view when the
// tier exists but its pool was never written.
func (s *storage) GetPool(duration uint64) (*Pool, error) {
	pool, err := s.pools.Get(durationKey(duration))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	if pool == nil {
		pool = &Pool{
			TotalStaked: new(big.Int),
			AccPerShare: new(big.Int),
			Carry:       new(big.Int),
		}
	}
	return pool, nil
}

func (s *storage) SetPool(duration uint64, pool *Pool) error {
	if err := s.pools.Set(durationKey(duration), pool); err != nil {
		return errors.Wrap(err, "failed to set pool")
	}
	return nil
}

func (s *storage) GetPosition(owner vault.Address, duration, lockedAt uint64) (*Position, error) {
	pos, err := s.positions.Get(positionKey{owner, duration, lockedAt})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return pos, nil
}

func (s *storage) SetPosition(owner vault.Address, duration, lockedAt uint64, pos *Position) error {
	if err := s.positions.Set(positionKey{owner, duration, lockedAt}, pos); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return nil
}

func (s *storage) DeletePosition(owner vault.Address, duration, lockedAt uint64) {
	s.positions.Delete(positionKey{owner, duration, lockedAt})
}

// GetUserIndex returns the user's position refs ordered by
// (duration, lockedAt) ascending.
func (s *storage) GetUserIndex(owner vault.Address) ([]PositionRef, error) {
	refs, err := s.userIndex.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user index")
	}
	return refs, nil
}

func (s *storage) SetUserIndex(owner vault.Address, refs []PositionRef) error {
	if len(refs) == 0 {
		s.userIndex.Delete(owner)
		return nil
	}
	if err := s.userIndex.Set(owner, refs); err != nil {
		return errors.Wrap(err, "failed to set user index")
	}
	return nil
}

func (s *storage) IsAllowed(addr vault.Address) (bool, error) {
	ok, err := s.allowList.Get(addr)
	if err != nil {
		return false, errors.Wrap(err, "failed to get allow list entry")
	}
	return ok, nil
}

func (s *storage) SetAllowed(addr vault.Address, allowed bool) error {
	if !allowed {
		s.allowList.Delete(addr)
		return nil
	}
	if err := s.allowList.Set(addr, true); err != nil {
		return errors.Wrap(err, "failed to set allow list entry")
	}
	return nil
}

func (s *storage) IsBlocked(addr vault.Address) (bool, error) {
	ok, err := s.blockList.Get(addr)
	if err != nil {
		return false, errors.Wrap(err, "failed to get block list entry")
	}
	return ok, nil
}

func (s *storage) SetBlocked(addr vault.Address, blocked bool) error {
	if !blocked {
		s.blockList.Delete(addr)
		return nil
	}
	if err := s.blockList.Set(addr, true); err != nil {
		return errors.Wrap(err, "failed to set block list entry")
	}
	return nil
}

func (s *storage) GetSchedule() ([]ScheduleEntry, error) {
	entries, err := s.schedule.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get schedule")
	}
	return entries, nil
}

func (s *storage) SetSchedule(entries []ScheduleEntry) error {
	if err := s.schedule.Put(entries); err != nil {
		return errors.Wrap(err, "failed to set schedule")
	}
	return nil
}

func (s *storage) GetScheduleCursor() (uint64, error) {
	cur, err := s.cursor.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get schedule cursor")
	}
	return cur, nil
}

func (s *storage) SetScheduleCursor(cur uint64) error {
	if err := s.cursor.Put(cur); err != nil {
		return errors.Wrap(err, "failed to set schedule cursor")
	}
	return nil
}
