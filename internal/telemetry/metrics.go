/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes Prometheus metrics for the station engine.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GenerationsTotal counts engine generations by operation (advance|peek).
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skald_station_generations_total",
		Help: "Total station generation calls by operation.",
	}, []string{"operation"})

	// GenerationDuration observes end-to-end generation latency.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skald_station_generation_duration_seconds",
		Help:    "Station generation latency by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// PoolCacheHits counts candidate pool cache hits.
	PoolCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skald_pool_cache_hits_total",
		Help: "Candidate pool cache hits.",
	})

	// PoolCacheMisses counts candidate pool cache misses.
	PoolCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skald_pool_cache_misses_total",
		Help: "Candidate pool cache misses.",
	})

	// ExclusionRelaxationsTotal counts relaxed constraints (artist|track).
	ExclusionRelaxationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skald_exclusion_relaxations_total",
		Help: "Exclusion constraints relaxed to keep a station alive.",
	}, []string{"constraint"})

	// PlayEventsTotal counts recorded play events.
	PlayEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skald_play_events_total",
		Help: "Play events appended by advance calls.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
