// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package settledb persists the settlement history of applied
// transitions in sqlite, queryable by user and time range. It is a
// side index for operators and the API; the engine state itself lives
// in the key-value store.
package settledb

import (
	"context"
	"database/sql"
	"math/big"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/eclipsefi/stakevault/staking"
	"github.com/eclipsefi/stakevault/vault"
)

const settlementTableSchema = `CREATE TABLE IF NOT EXISTS settlement (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	action TEXT NOT NULL,
	caller BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	transferred TEXT NOT NULL,
	reward TEXT NOT NULL,
	penalty TEXT NOT NULL,
	zeroAfterPenalty INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS settlement_ts ON settlement(ts);
CREATE INDEX IF NOT EXISTS settlement_recipient ON settlement(recipient);`

// SettleDB is the settlement history store.
type SettleDB struct {
	path string
	db   *sql.DB
}

// New creates or opens the settlement db at the given path.
func New(path string) (sdb *SettleDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if sdb == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(settlementTableSchema); err != nil {
		return nil, err
	}
	return &SettleDB{path, db}, nil
}

// NewMem creates a settlement db in ram.
func NewMem() (*SettleDB, error) {
	return New("file::memory:?cache=shared")
}

// Close closes the settlement db.
func (s *SettleDB) Close() error {
	return s.db.Close()
}

func (s *SettleDB) Path() string {
	return s.path
}

// Record appends one settlement applied at ts.
func (s *SettleDB) Record(ctx context.Context, ts uint64, action string, settlement *staking.Settlement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlement(ts, action, caller, recipient, transferred, reward, penalty, zeroAfterPenalty)
		 VALUES(?,?,?,?,?,?,?,?)`,
		ts, action,
		settlement.Caller.Bytes(), settlement.Recipient.Bytes(),
		settlement.Transferred.String(), settlement.Reward.String(), settlement.Penalty.String(),
		settlement.ZeroAfterPenalty,
	)
	return errors.Wrap(err, "failed to record settlement")
}

// Entry is one recorded settlement.
type Entry struct {
	Seq              uint64        `json:"seq"`
	Timestamp        uint64        `json:"timestamp"`
	Action           string        `json:"action"`
	Caller           vault.Address `json:"caller"`
	Recipient        vault.Address `json:"recipient"`
	Transferred      *big.Int      `json:"transferred"`
	Reward           *big.Int      `json:"reward"`
	Penalty          *big.Int      `json:"penalty"`
	ZeroAfterPenalty bool          `json:"zeroAfterPenalty"`
}

// Filter selects settlements. Zero-value fields are ignored; Address
// matches the recipient.
type Filter struct {
	Address *vault.Address
	From    uint64
	To      uint64
	Limit   uint64
}

// Query returns matching settlements in insertion order.
func (s *SettleDB) Query(ctx context.Context, filter *Filter) ([]*Entry, error) {
	stmt := "SELECT seq, ts, action, caller, recipient, transferred, reward, penalty, zeroAfterPenalty FROM settlement WHERE 1"
	var args []any
	if filter != nil {
		if filter.Address != nil {
			stmt += " AND recipient = ?"
			args = append(args, filter.Address.Bytes())
		}
		if filter.From > 0 {
			stmt += " AND ts >= ?"
			args = append(args, filter.From)
		}
		if filter.To > 0 {
			stmt += " AND ts <= ?"
			args = append(args, filter.To)
		}
	}
	stmt += " ORDER BY seq"
	if filter != nil && filter.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query settlements")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry       Entry
			caller      []byte
			recipient   []byte
			transferred string
			reward      string
			penalty     string
		)
		if err := rows.Scan(
			&entry.Seq, &entry.Timestamp, &entry.Action,
			&caller, &recipient,
			&transferred, &reward, &penalty,
			&entry.ZeroAfterPenalty,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan settlement")
		}
		entry.Caller = vault.BytesToAddress(caller)
		entry.Recipient = vault.BytesToAddress(recipient)
		if entry.Transferred, err = parseAmount(transferred); err != nil {
			return nil, err
		}
		if entry.Reward, err = parseAmount(reward); err != nil {
			return nil, err
		}
		if entry.Penalty, err = parseAmount(penalty); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("malformed stored amount %q", s)
	}
	return v, nil
}
