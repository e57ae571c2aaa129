// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for engine databases",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a YAML genesis preset (defaults to the devnet preset)",
	}
	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Usage: "owner address of the devnet preset",
		Value: "0x0000000000000000000000000000000000000001",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8569",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiExecuteFlag = cli.BoolFlag{
		Name:  "api-execute",
		Usage: "open the message submission endpoint (solo mode)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 2,
		Usage: "log verbosity (0-4: error, warn, info, debug, trace)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "force JSON log output",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "expose prometheus metrics at /metrics",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "expose pprof endpoints",
	}
	skipHistoryFlag = cli.BoolFlag{
		Name:  "skip-history",
		Usage: "do not record settlement history",
	}
)
