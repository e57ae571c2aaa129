// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/eclipsefi/stakevault/kv"
)

// Slot is a 32-byte storage slot address.
type Slot [32]byte

// Bytes returns byte slice form of the slot.
func (s Slot) Bytes() []byte { return s[:] }

// NameToSlot derives the root slot of a named storage item.
func NameToSlot(name string) (s Slot) {
	copy(s[:], crypto.Keccak256([]byte(name)))
	return
}

// elemSlot derives the slot of a mapping element under a root slot.
func elemSlot(root Slot, key []byte) (s Slot) {
	copy(s[:], crypto.Keccak256(key, root[:]))
	return
}

// State provides an uncommitted overlay view over the persistent store.
// All reads hit the overlay first; all writes stay in the overlay until
// staged and committed, so an aborted operation leaves the store untouched.
type State struct {
	src     kv.Getter
	changes map[Slot][]byte // nil value marks deletion
}

// New creates a state over the given source store.
func New(src kv.Getter) *State {
	return &State{
		src:     src,
		changes: make(map[Slot][]byte),
	}
}

// Get returns the raw value stored at slot, or nil if absent.
func (s *State) Get(slot Slot) ([]byte, error) {
	if v, ok := s.changes[slot]; ok {
		return v, nil
	}
	v, err := s.src.Get(slot[:])
	if err != nil {
		if s.src.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "state get")
	}
	return v, nil
}

// Put stores the raw value at slot.
func (s *State) Put(slot Slot, value []byte) {
	s.changes[slot] = value
}

// Delete removes the value at slot.
func (s *State) Delete(slot Slot) {
	s.changes[slot] = nil
}

// Stage collects all pending changes for commit.
func (s *State) Stage() *Stage {
	changes := make(map[Slot][]byte, len(s.changes))
	for k, v := range s.changes {
		changes[k] = v
	}
	return &Stage{changes: changes}
}

// Stage is a read-only set of state changes ready to be committed.
type Stage struct {
	changes map[Slot][]byte
}

// Commit writes all changes to the store in one batch.
func (st *Stage) Commit(putter kv.Putter) error {
	batch := putter.NewBatch()
	for slot, v := range st.changes {
		if v == nil {
			if err := batch.Delete(slot[:]); err != nil {
				return errors.Wrap(err, "stage delete")
			}
			continue
		}
		if err := batch.Put(slot[:], v); err != nil {
			return errors.Wrap(err, "stage put")
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "stage commit")
	}
	return nil
}

// Stater creates states over a persistent store.
type Stater struct {
	store kv.GetPutter
}

// NewStater creates a stater.
func NewStater(store kv.GetPutter) *Stater {
	return &Stater{store: store}
}

// NewState spawns a fresh overlay over the current store content.
func (s *Stater) NewState() *State {
	return New(s.store)
}

// Store exposes the underlying store, for committing stages.
func (s *Stater) Store() kv.GetPutter {
	return s.store
}
