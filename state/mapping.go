// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Key of a mapping element.
type Key interface {
	Bytes() []byte
}

// Item is a single typed storage item, addressed by a fixed slot.
// Values are RLP encoded. A missing item decodes to the zero value.
type Item[V any] struct {
	state *State
	slot  Slot
}

// NewItem creates a typed item at the named slot.
func NewItem[V any](state *State, slot Slot) *Item[V] {
	return &Item[V]{state: state, slot: slot}
}

// Get loads the item value, or the zero value if unset.
func (i *Item[V]) Get() (value V, err error) {
	raw, err := i.state.Get(i.slot)
	if err != nil {
		return value, err
	}
	return decodeValue[V](raw)
}

// Put stores the item value.
func (i *Item[V]) Put(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode item")
	}
	i.state.Put(i.slot, raw)
	return nil
}

// Mapping is a typed key/value storage collection, similar to a mapping
// in contract storage. Element slots are derived by hashing, so the
// collection is not iterable; callers keep explicit indexes when
// iteration is needed.
type Mapping[K Key, V any] struct {
	state *State
	root  Slot
}

// NewMapping creates a typed mapping rooted at the named slot.
func NewMapping[K Key, V any](state *State, root Slot) *Mapping[K, V] {
	return &Mapping[K, V]{state: state, root: root}
}

// Get loads the element at key, or the zero value if unset.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	raw, err := m.state.Get(elemSlot(m.root, key.Bytes()))
	if err != nil {
		return value, err
	}
	return decodeValue[V](raw)
}

// Has returns whether an element exists at key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.state.Get(elemSlot(m.root, key.Bytes()))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Set stores the element at key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode mapping element")
	}
	m.state.Put(elemSlot(m.root, key.Bytes()), raw)
	return nil
}

// Delete removes the element at key.
func (m *Mapping[K, V]) Delete(key K) {
	m.state.Delete(elemSlot(m.root, key.Bytes()))
}

func decodeValue[V any](raw []byte) (value V, err error) {
	if len(raw) == 0 {
		return value, nil
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		var zero V
		return zero, errors.Wrap(err, "decode storage value")
	}
	return value, nil
}
