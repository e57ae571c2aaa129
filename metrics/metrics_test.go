// Copyright (c) 2026 The Eclipse Fi developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNoopByDefault(t *testing.T) {
	require.IsType(t, &noopMetrics{}, registry)
	require.Nil(t, HTTPHandler())

	// meters usable without a backend
	Counter("noop_count").Add(1)
	Gauge("noop_gauge").Set(2)
	Histogram("noop_hist", BucketHTTPReqs).Observe(3)
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	count := Counter("transitions_total")
	count.Add(1)
	count.Add(2)

	gauge := Gauge("total_staked")
	gauge.Set(100)
	gauge.Add(-25)

	countVec := CounterVec("transitions_by_action", []string{"action"})
	for i := range 4 {
		countVec.AddWithLabel(1, map[string]string{"action": strconv.Itoa(i % 2)})
	}

	hist := Histogram("transition_duration_ms", BucketHTTPReqs)
	hist.Observe(5)
	hist.Observe(50)

	gathered, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(gathered))
	for _, mf := range gathered {
		byName[mf.GetName()] = mf
	}

	mf := byName[namespace+"_transitions_total"]
	require.NotNil(t, mf)
	require.Equal(t, float64(3), mf.GetMetric()[0].GetCounter().GetValue())

	mf = byName[namespace+"_total_staked"]
	require.NotNil(t, mf)
	require.Equal(t, float64(75), mf.GetMetric()[0].GetGauge().GetValue())

	mf = byName[namespace+"_transitions_by_action"]
	require.NotNil(t, mf)
	require.Len(t, mf.GetMetric(), 2)

	mf = byName[namespace+"_transition_duration_ms"]
	require.NotNil(t, mf)
	require.Equal(t, uint64(2), mf.GetMetric()[0].GetHistogram().GetSampleCount())

	require.NotNil(t, HTTPHandler())
}
