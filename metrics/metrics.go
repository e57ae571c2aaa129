// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics is a singleton meter registry. It defaults to a
// no-op implementation; the daemon switches it to Prometheus at
// startup, so packages can define meters unconditionally.
package metrics

import "net/http"

var registry Metrics = &noopMetrics{}

// Metrics is the meter factory implemented by the noop and Prometheus
// backends.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHandler() http.Handler
}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a counter with labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a value that can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// HistogramMeter aggregates reported measurements into buckets.
type HistogramMeter interface {
	Observe(int64)
}

// BucketHTTPReqs buckets request latency in milliseconds.
var BucketHTTPReqs = []int64{
	0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
	150, 200, 300, 400, 500, 750, 1000,
	1500, 2000, 3000, 4000, 5000, 10000,
}

// Meters resolve the registry lazily on every use. Package-level meter
// vars are created before the daemon switches the backend; binding the
// registry at creation time would freeze them as no-ops.

func Counter(name string) CountMeter { return lazyCounter{name} }

func CounterVec(name string, labels []string) CountVecMeter {
	return lazyCounterVec{name, labels}
}

func Gauge(name string) GaugeMeter { return lazyGauge{name} }

func Histogram(name string, buckets []int64) HistogramMeter {
	return lazyHistogram{name, buckets}
}

type lazyCounter struct{ name string }

func (l lazyCounter) Add(v int64) { registry.GetOrCreateCountMeter(l.name).Add(v) }

type lazyCounterVec struct {
	name   string
	labels []string
}

func (l lazyCounterVec) AddWithLabel(v int64, labels map[string]string) {
	registry.GetOrCreateCountVecMeter(l.name, l.labels).AddWithLabel(v, labels)
}

type lazyGauge struct{ name string }

func (l lazyGauge) Add(v int64) { registry.GetOrCreateGaugeMeter(l.name).Add(v) }
func (l lazyGauge) Set(v int64) { registry.GetOrCreateGaugeMeter(l.name).Set(v) }

type lazyHistogram struct {
	name    string
	buckets []int64
}

func (l lazyHistogram) Observe(v int64) {
	registry.GetOrCreateHistogramMeter(l.name, l.buckets).Observe(v)
}

// HTTPHandler returns the handler serving the metrics endpoint, nil
// under the noop backend.
func HTTPHandler() http.Handler { return registry.GetOrCreateHandler() }

type noopMetrics struct{}

type noopMeter struct{}

func (noopMeter) Add(int64)                            {}
func (noopMeter) Set(int64)                            {}
func (noopMeter) Observe(int64)                        {}
func (noopMeter) AddWithLabel(int64, map[string]string) {}

func (*noopMetrics) GetOrCreateCountMeter(string) CountMeter { return noopMeter{} }
func (*noopMetrics) GetOrCreateCountVecMeter(string, []string) CountVecMeter {
	return noopMeter{}
}
func (*noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter { return noopMeter{} }
func (*noopMetrics) GetOrCreateHistogramMeter(string, []int64) HistogramMeter {
	return noopMeter{}
}
func (*noopMetrics) GetOrCreateHandler() http.Handler { return nil }
