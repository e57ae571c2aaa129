// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakingapi exposes the engine's query surface and, in solo
// mode, message submission over REST.
package stakingapi

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/eclipsefi/stakevault/api/restutil"
	"github.com/eclipsefi/stakevault/cache"
	"github.com/eclipsefi/stakevault/node"
	"github.com/eclipsefi/stakevault/staking"
	"github.com/eclipsefi/stakevault/vault"
)

const penaltyCacheSize = 512

// API serves the staking endpoints.
type API struct {
	node         *node.Node
	allowExecute bool
	penaltyCache *cache.LRU
}

// New creates the staking API. allowExecute opens the message
// submission endpoint (solo mode only).
func New(n *node.Node, allowExecute bool) *API {
	penaltyCache, _ := cache.NewLRU(penaltyCacheSize)
	return &API{
		node:         n,
		allowExecute: allowExecute,
		penaltyCache: penaltyCache,
	}
}

func (a *API) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	cfg, err := a.node.Staker().GetConfig()
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, convertConfig(cfg))
}

func (a *API) handleGetOwner(w http.ResponseWriter, _ *http.Request) error {
	owner, err := a.node.Staker().Owner()
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"owner": owner})
}

func (a *API) handleGetTotal(w http.ResponseWriter, _ *http.Request) error {
	total, err := a.node.Staker().TotalStaking()
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"totalStaking": total})
}

func (a *API) handleGetTotalByDuration(w http.ResponseWriter, _ *http.Request) error {
	totals, err := a.node.Staker().TotalStakingByDuration()
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, totals)
}

func (a *API) handleGetStaking(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddressVar(r)
	if err != nil {
		return err
	}
	views, err := a.node.Staker().Staking(*addr, nowParam(r))
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, views)
}

func (a *API) handleGetReward(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddressVar(r)
	if err != nil {
		return err
	}
	reward, err := a.node.Staker().Reward(*addr, nowParam(r))
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"reward": reward})
}

func (a *API) handleGetAllowed(w http.ResponseWriter, r *http.Request) error {
	addr, err := parseAddressVar(r)
	if err != nil {
		return err
	}
	allowed, err := a.node.Staker().IsAllowed(*addr)
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"allowed": allowed})
}

func (a *API) handleGetSchedule(w http.ResponseWriter, _ *http.Request) error {
	entries, err := a.node.Staker().PendingRewardSchedule()
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, entries)
}

func (a *API) handleGetPenalty(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	amount, ok := new(big.Int).SetString(query.Get("amount"), 10)
	if !ok {
		return restutil.BadRequest(errors.New("amount: malformed decimal"))
	}
	duration, err := strconv.ParseUint(query.Get("duration"), 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "duration"))
	}
	lockedAt, err := strconv.ParseUint(query.Get("lockedAt"), 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "lockedAt"))
	}
	now := nowParam(r)

	// pure function of state generation and params, safe to memoize
	key := fmt.Sprintf("%d/%s/%d/%d/%d", a.node.Generation(), amount, duration, lockedAt, now)
	penalty, err := a.penaltyCache.GetOrLoad(key, func(any) (any, error) {
		return a.node.Staker().CalculatePenalty(amount, duration, lockedAt, now)
	})
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"penalty": penalty})
}

func (a *API) handlePostExecute(w http.ResponseWriter, r *http.Request) error {
	var msg staking.Message
	if err := restutil.ParseJSON(r.Body, &msg); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	settlement, err := a.node.Execute(r.Context(), &msg)
	if err != nil {
		return convertEngineError(err)
	}
	return restutil.WriteJSON(w, settlement)
}

// Mount attaches the endpoints under pathPrefix.
func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/config").
		Methods(http.MethodGet).
		Name("GET /config").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetConfig))
	sub.Path("/owner").
		Methods(http.MethodGet).
		Name("GET /owner").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetOwner))
	sub.Path("/total").
		Methods(http.MethodGet).
		Name("GET /total").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetTotal))
	sub.Path("/total/tiers").
		Methods(http.MethodGet).
		Name("GET /total/tiers").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetTotalByDuration))
	sub.Path("/stakers/{address}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetStaking))
	sub.Path("/stakers/{address}/reward").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/reward").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetReward))
	sub.Path("/allowed/{address}").
		Methods(http.MethodGet).
		Name("GET /allowed/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAllowed))
	sub.Path("/schedule").
		Methods(http.MethodGet).
		Name("GET /schedule").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetSchedule))
	sub.Path("/penalty").
		Methods(http.MethodGet).
		Name("GET /penalty").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetPenalty))

	if a.allowExecute {
		sub.Path("/execute").
			Methods(http.MethodPost).
			Name("POST /execute").
			HandlerFunc(restutil.WrapHandlerFunc(a.handlePostExecute))
	}
}

func parseAddressVar(r *http.Request) (*vault.Address, error) {
	addr, err := vault.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		return nil, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

// nowParam reads the optional now override, defaulting to wall clock.
func nowParam(r *http.Request) uint64 {
	if v := r.URL.Query().Get("now"); v != "" {
		if now, err := strconv.ParseUint(v, 10, 64); err == nil {
			return now
		}
	}
	return uint64(time.Now().Unix())
}

// convertEngineError maps engine error kinds onto http statuses.
func convertEngineError(err error) error {
	switch staking.KindOf(err) {
	case staking.ErrUnauthorized, staking.ErrUserBlocked, staking.ErrUserNotAllowed:
		return restutil.Forbidden(err)
	case staking.ErrPositionNotFound, staking.ErrDurationTierNotFound:
		return restutil.NotFound(err)
	case staking.ErrInsufficientStake, staking.ErrLockNotMatured,
		staking.ErrArithmeticOverflow, staking.ErrZeroAmount,
		staking.ErrInvalidRequest, staking.ErrInvalidConfig:
		return restutil.BadRequest(err)
	default:
		return err
	}
}
