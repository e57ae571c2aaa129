// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package settlements serves the settlement history recorded by the
// node.
package settlements

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/eclipsefi/stakevault/api/restutil"
	"github.com/eclipsefi/stakevault/settledb"
	"github.com/eclipsefi/stakevault/vault"
)

const defaultLimit = 256

// API serves the settlements endpoint.
type API struct {
	db *settledb.SettleDB
}

// New creates the settlements API.
func New(db *settledb.SettleDB) *API {
	return &API{db: db}
}

func (a *API) handleGetSettlements(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	filter := &settledb.Filter{Limit: defaultLimit}

	if s := query.Get("address"); s != "" {
		addr, err := vault.ParseAddress(s)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "address"))
		}
		filter.Address = addr
	}
	var err error
	if s := query.Get("from"); s != "" {
		if filter.From, err = strconv.ParseUint(s, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "from"))
		}
	}
	if s := query.Get("to"); s != "" {
		if filter.To, err = strconv.ParseUint(s, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "to"))
		}
	}
	if s := query.Get("limit"); s != "" {
		if filter.Limit, err = strconv.ParseUint(s, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "limit"))
		}
		if filter.Limit > defaultLimit {
			filter.Limit = defaultLimit
		}
	}

	entries, err := a.db.Query(r.Context(), filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*settledb.Entry{}
	}
	return restutil.WriteJSON(w, entries)
}

// Mount attaches the endpoint under pathPrefix.
func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /settlements").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetSettlements))
}
