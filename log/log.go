// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the structured logger of the repo, a thin facade over
// log/slog with a process-wide root handler. Packages grab a child
// logger once via WithContext; the root is configured by the daemon at
// startup and swaps atomically, so package-level loggers pick up the
// final configuration regardless of init order.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger is the logging surface handed to packages.
type Logger interface {
	With(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Init replaces the root handler. JSON output when json is set,
// logfmt otherwise.
func Init(w io.Writer, level slog.Level, json bool) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	root.Store(slog.New(h))
}

// WithContext returns a logger carrying the given key-value context.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

type logger struct {
	ctx []any
}

func (l *logger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &logger{ctx: merged}
}

func (l *logger) out() *slog.Logger {
	return root.Load().With(l.ctx...)
}

func (l *logger) Debug(msg string, ctx ...any) { l.out().Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.out().Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.out().Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.out().Error(msg, ctx...) }
