// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRegistryCountersIncrement(t *testing.T) {
	reg := NewRegistry(nil)

	reg.FilesScanned.Inc()
	reg.FilesScanned.Inc()
	reg.LogHits.Inc()
	reg.FilesSkipped.WithLabelValues("not_a_table").Inc()

	require.Equal(t, float64(2), counterValue(t, reg.FilesScanned))
	require.Equal(t, float64(1), counterValue(t, reg.LogHits))
	require.Equal(t, float64(0), counterValue(t, reg.TableHits))
	require.Equal(t, float64(1), counterValue(t, reg.FilesSkipped.WithLabelValues("not_a_table")))
}

func TestRegistryLatencySnapshot(t *testing.T) {
	reg := NewRegistry(nil)
	for _, d := range []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond} {
		reg.ObserveLatency(d)
	}

	p50, p90, p99 := reg.LatencySnapshot()
	require.Greater(t, p50, int64(0))
	require.GreaterOrEqual(t, p99, p90)
	require.GreaterOrEqual(t, p90, p50)
}

func TestRegistryUsesOwnRegistryWhenNilPassed(t *testing.T) {
	a := NewRegistry(nil)
	b := NewRegistry(nil)
	a.FilesScanned.Inc()
	require.Equal(t, float64(1), counterValue(t, a.FilesScanned))
	require.Equal(t, float64(0), counterValue(t, b.FilesScanned))
}
