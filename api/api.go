// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/eclipsefi/stakevault/api/restutil"
	"github.com/eclipsefi/stakevault/api/settlements"
	"github.com/eclipsefi/stakevault/api/stakingapi"
	"github.com/eclipsefi/stakevault/metrics"
	"github.com/eclipsefi/stakevault/node"
)

// Options of the api router.
type Options struct {
	AllowedOrigins string
	AllowExecute   bool
	PprofOn        bool
	EnableMetrics  bool
}

// New returns the api handler.
func New(n *node.Node, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	stakingapi.New(n, opts.AllowExecute).
		Mount(router, "/staking")
	if n.SettleDB() != nil {
		settlements.New(n.SettleDB()).
			Mount(router, "/settlements")
	}

	router.Path("/healthz").Methods(http.MethodGet).HandlerFunc(
		restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			return restutil.WriteJSON(w, restutil.M{"healthy": true})
		}))

	if opts.EnableMetrics {
		if h := metrics.HTTPHandler(); h != nil {
			router.Path("/metrics").Handler(h)
		}
		router.Use(metricsMiddleware)
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	return handler
}
