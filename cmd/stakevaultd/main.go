// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/eclipsefi/stakevault/api"
	"github.com/eclipsefi/stakevault/log"
	"github.com/eclipsefi/stakevault/metrics"
	"github.com/eclipsefi/stakevault/node"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if version == "" {
		return "dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakevaultd",
		Usage:     "staking & reward distribution engine",
		Copyright: "2026 Eclipse Fi",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			ownerFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiExecuteFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			pprofFlag,
			skipHistoryFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	dir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(dir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	sdb, err := openSettleDB(ctx, dir)
	if err != nil {
		return err
	}
	if sdb != nil {
		defer func() { logger.Info("closing settlement database..."); sdb.Close() }()
	}

	preset, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	cfg, schedule, err := preset.Build()
	if err != nil {
		return err
	}
	allowed, err := preset.AllowList()
	if err != nil {
		return err
	}

	n := node.New(mainDB, sdb)
	initialized, err := n.Initialize(cfg, schedule, allowed, uint64(time.Now().Unix()))
	if err != nil {
		return err
	}
	if initialized {
		logger.Info("genesis applied", "owner", cfg.Owner, "tiers", len(cfg.Tiers))
	} else {
		logger.Info("existing state found, genesis skipped")
	}

	handler := api.New(n, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		AllowExecute:   ctx.Bool(apiExecuteFlag.Name),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	return serveAPI(handleExitSignal(), ctx.String(apiAddrFlag.Name), handler)
}

func serveAPI(ctx context.Context, addr string, handler http.Handler) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var group errgroup.Group
	group.Go(func() error {
		logger.Info("API server started", "addr", "http://"+listener.Addr().String())
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
