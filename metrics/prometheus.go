// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eclipsefi/stakevault/log"
)

const namespace = "stakevault"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the registry to the Prometheus
// backend. Calling it twice keeps the first instance.
func InitializePrometheusMetrics() {
	if _, ok := registry.(*prometheusMetrics); !ok {
		registry = &prometheusMetrics{}
	}
}

type prometheusMetrics struct {
	counters    sync.Map
	counterVecs sync.Map
	gauges      sync.Map
	histograms  sync.Map
}

func (p *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	if meter, ok := p.counters.Load(name); ok {
		return meter.(CountMeter)
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
	if err := prometheus.Register(c); err != nil {
		logger.Warn("unable to register counter", "name", name, "error", err)
	}
	meter := &promCountMeter{c}
	p.counters.Store(name, meter)
	return meter
}

func (p *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	if meter, ok := p.counterVecs.Load(name); ok {
		return meter.(CountVecMeter)
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
	if err := prometheus.Register(c); err != nil {
		logger.Warn("unable to register counter vec", "name", name, "error", err)
	}
	meter := &promCountVecMeter{c}
	p.counterVecs.Store(name, meter)
	return meter
}

func (p *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	if meter, ok := p.gauges.Load(name); ok {
		return meter.(GaugeMeter)
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
	if err := prometheus.Register(g); err != nil {
		logger.Warn("unable to register gauge", "name", name, "error", err)
	}
	meter := &promGaugeMeter{g}
	p.gauges.Store(name, meter)
	return meter
}

func (p *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	if meter, ok := p.histograms.Load(name); ok {
		return meter.(HistogramMeter)
	}
	floats := make([]float64, len(buckets))
	for i, b := range buckets {
		floats[i] = float64(b)
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: name, Buckets: floats})
	if err := prometheus.Register(h); err != nil {
		logger.Warn("unable to register histogram", "name", name, "error", err)
	}
	meter := &promHistogramMeter{h}
	p.histograms.Store(name, meter)
	return meter
}

func (p *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) { c.counter.Add(float64(i)) }

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (g *promGaugeMeter) Add(i int64) { g.gauge.Add(float64(i)) }
func (g *promGaugeMeter) Set(i int64) { g.gauge.Set(float64(i)) }

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (h *promHistogramMeter) Observe(i int64) { h.histogram.Observe(float64(i)) }
