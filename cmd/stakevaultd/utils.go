// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	isatty "github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/eclipsefi/stakevault/genesis"
	"github.com/eclipsefi/stakevault/log"
	"github.com/eclipsefi/stakevault/lvldb"
	"github.com/eclipsefi/stakevault/settledb"
	"github.com/eclipsefi/stakevault/vault"
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stakevault"
	}
	return filepath.Join(home, ".stakevault")
}

// initLogger: logfmt when attached to a terminal unless JSON forced.
func initLogger(ctx *cli.Context) {
	var level slog.Level
	switch ctx.Int(verbosityFlag.Name) {
	case 0:
		level = slog.LevelError
	case 1:
		level = slog.LevelWarn
	case 2:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	json := ctx.Bool(jsonLogsFlag.Name) || !isatty.IsTerminal(os.Stderr.Fd())
	log.Init(os.Stderr, level, json)
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir %q", dir)
	}
	return dir, nil
}

func openMainDB(dir string) (*lvldb.LevelDB, error) {
	db, err := lvldb.New(filepath.Join(dir, "main.db"), lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	return db, errors.Wrap(err, "open main database")
}

func openSettleDB(ctx *cli.Context, dir string) (*settledb.SettleDB, error) {
	if ctx.Bool(skipHistoryFlag.Name) {
		return nil, nil
	}
	db, err := settledb.New(filepath.Join(dir, "settlements.db"))
	return db, errors.Wrap(err, "open settlement database")
}

func selectGenesis(ctx *cli.Context) (*genesis.Preset, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.Load(path)
	}
	owner, err := vault.ParseAddress(ctx.String(ownerFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "invalid owner address")
	}
	return genesis.Devnet(*owner), nil
}

// handleExitSignal returns a context canceled on SIGINT/SIGTERM.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
