// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node is the execution boundary of the engine: it serializes
// submitted messages, runs each one as a state transition over a fresh
// journaled overlay, commits the stage on success and records the
// settlement. A rejected message never reaches the store.
package node

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eclipsefi/stakevault/kv"
	"github.com/eclipsefi/stakevault/log"
	"github.com/eclipsefi/stakevault/metrics"
	"github.com/eclipsefi/stakevault/settledb"
	"github.com/eclipsefi/stakevault/staking"
	"github.com/eclipsefi/stakevault/state"
	"github.com/eclipsefi/stakevault/vault"
)

var (
	logger = log.WithContext("pkg", "node")

	metricTransitions    = metrics.CounterVec("transitions_total", []string{"action", "outcome"})
	metricTransitionMs   = metrics.Histogram("transition_duration_ms", metrics.BucketHTTPReqs)
	metricTotalStaked    = metrics.Gauge("total_staked_lowbits")
	metricPenaltiesPaid  = metrics.Counter("penalties_recorded_total")
	metricRewardsSettled = metrics.Counter("rewards_settled_total")

	gaugeMask = new(big.Int).SetUint64(1<<53 - 1)
)

// Node drives the staking engine over a persistent store.
type Node struct {
	mu     sync.Mutex
	stater *state.Stater
	sdb    *settledb.SettleDB
	gen    atomic.Uint64
}

// New creates a node over the given store. Engine state lives under its
// own bucket so the main store can host other namespaces. sdb may be
// nil to skip settlement history.
func New(store kv.GetPutter, sdb *settledb.SettleDB) *Node {
	return &Node{
		stater: state.NewStater(kv.Bucket("engine/").NewGetPutter(store)),
		sdb:    sdb,
	}
}

// Initialize writes the genesis config unless the store already has
// one. Returns whether initialization ran.
func (n *Node) Initialize(cfg *staking.Config, schedule []staking.ScheduleEntry, allowed []vault.Address, now uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	st := n.stater.NewState()
	engine := staking.New(st)
	if _, err := engine.GetConfig(); err == nil {
		return false, nil
	} else if !staking.IsKind(err, staking.ErrInvalidConfig) {
		return false, err
	}

	if err := engine.Initialize(cfg, schedule, now); err != nil {
		return false, err
	}
	for _, u := range allowed {
		if _, err := engine.AllowUsers(cfg.Owner, []vault.Address{u}); err != nil {
			return false, err
		}
	}
	if err := st.Stage().Commit(n.stater.Store()); err != nil {
		return false, err
	}
	n.gen.Add(1)
	return true, nil
}

// Generation counts committed transitions. Query caches key on it so
// any commit invalidates them.
func (n *Node) Generation() uint64 {
	return n.gen.Load()
}

// Execute applies one message. A zero msg.Now is filled with the wall
// clock, keeping caller-supplied time the rule and the clock the solo
// convenience.
func (n *Node) Execute(ctx context.Context, msg *staking.Message) (*staking.Settlement, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if msg.Now == 0 {
		msg.Now = uint64(time.Now().Unix())
	}

	began := time.Now()
	st := n.stater.NewState()
	settlement, err := staking.Apply(st, msg)
	if err != nil {
		metricTransitions.AddWithLabel(1, map[string]string{"action": msg.Action, "outcome": "rejected"})
		logger.Debug("transition rejected", "action", msg.Action, "caller", msg.Caller, "error", err)
		return nil, err
	}
	if err := st.Stage().Commit(n.stater.Store()); err != nil {
		metricTransitions.AddWithLabel(1, map[string]string{"action": msg.Action, "outcome": "failed"})
		return nil, err
	}
	n.gen.Add(1)
	metricTransitions.AddWithLabel(1, map[string]string{"action": msg.Action, "outcome": "applied"})
	metricTransitionMs.Observe(time.Since(began).Milliseconds())

	if settlement.Penalty.Sign() > 0 {
		metricPenaltiesPaid.Add(1)
	}
	if settlement.Reward.Sign() > 0 {
		metricRewardsSettled.Add(1)
	}
	if total, err := staking.New(n.stater.NewState()).TotalStaking(); err == nil {
		// gauge is float64-backed, clamp the low bits
		metricTotalStaked.Set(new(big.Int).And(total, gaugeMask).Int64())
	}

	if n.sdb != nil {
		if err := n.sdb.Record(ctx, msg.Now, msg.Action, settlement); err != nil {
			// history is an index, the committed state stands
			logger.Warn("failed to record settlement", "action", msg.Action, "error", err)
		}
	}
	return settlement, nil
}

// Staker returns a read-only engine view over the current store.
func (n *Node) Staker() *staking.Staker {
	return staking.New(n.stater.NewState())
}

// SettleDB exposes the settlement history, nil when disabled.
func (n *Node) SettleDB() *settledb.SettleDB {
	return n.sdb
}
