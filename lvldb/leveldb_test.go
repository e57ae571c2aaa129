// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eclipsefi/stakevault/kv"
)

func TestGetPut(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Get([]byte("missing"))
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, db.Put([]byte("key"), []byte("value")))

	v, err := db.Get([]byte("key"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	has, err := db.Has([]byte("key"))
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, db.Delete([]byte("key")))
	_, err = db.Get([]byte("key"))
	assert.True(t, db.IsNotFound(err))
}

func TestBatch(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	assert.NoError(t, batch.Put([]byte("k1"), []byte("v1")))
	assert.NoError(t, batch.Put([]byte("k2"), []byte("v2")))
	assert.Equal(t, 2, batch.Len())

	// nothing visible before write
	_, err = db.Get([]byte("k1"))
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, batch.Write())

	v, err := db.Get([]byte("k2"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)
}

func TestIterator(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Put([]byte("a1"), []byte("1")))
	assert.NoError(t, db.Put([]byte("a2"), []byte("2")))
	assert.NoError(t, db.Put([]byte("b1"), []byte("3")))

	it := db.NewIterator(kv.Range{From: []byte("a"), To: []byte("b")})
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.NoError(t, it.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
}
