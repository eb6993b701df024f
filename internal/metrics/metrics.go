// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package metrics instruments the rootlist locator's directory scan: how
// many candidate files were probed, how many hit, how many were skipped
// for I/O or corruption reasons, and how long each probe took. This is a
// SPEC_FULL.md domain-stack addition — spec.md's core has no metrics
// component — built the way the example pack wires Prometheus: counters
// via promauto, latencies via an HdrHistogram.
package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every metric the locator updates during a scan. The
// zero value is not usable; use NewRegistry.
type Registry struct {
	FilesScanned prometheus.Counter
	LogHits      prometheus.Counter
	TableHits    prometheus.Counter
	FilesSkipped *prometheus.CounterVec

	mu      sync.Mutex
	latency *hdrhistogram.Histogram
}

// NewRegistry registers and returns a fresh set of metrics under reg (or
// prometheus.NewRegistry() if reg is nil, keeping tests isolated from the
// global default registry).
func NewRegistry(reg *prometheus.Registry) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Registry{
		FilesScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "spotifyfolders_files_scanned_total",
			Help: "Number of candidate .log/.ldb files probed by the locator.",
		}),
		LogHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "spotifyfolders_log_hits_total",
			Help: "Number of times the rootlist key was found in a .log file.",
		}),
		TableHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "spotifyfolders_table_hits_total",
			Help: "Number of times the rootlist key was found in a .ldb file.",
		}),
		FilesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spotifyfolders_files_skipped_total",
			Help: "Number of candidate files skipped, labeled by reason.",
		}, []string{"reason"}),
		latency: hdrhistogram.New(1, int64(10*time.Second/time.Microsecond), 3),
	}
}

// ObserveLatency records how long a single file probe took, in
// microseconds, into the HdrHistogram (surfaced by the CLI's stats
// subcommand).
func (r *Registry) ObserveLatency(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.latency.RecordValue(int64(d / time.Microsecond))
}

// LatencySnapshot returns percentile latencies (p50, p90, p99) in
// microseconds, recorded so far.
func (r *Registry) LatencySnapshot() (p50, p90, p99 int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latency.ValueAtQuantile(50), r.latency.ValueAtQuantile(90), r.latency.ValueAtQuantile(99)
}
