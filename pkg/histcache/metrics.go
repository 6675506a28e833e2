/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package histcache pkg/histcache/metrics.go
package histcache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes cache behavior as Prometheus counters. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	queries        prometheus.Counter
	hits           prometheus.Counter
	misses         prometheus.Counter
	fetchesNeeded  prometheus.Counter
	pointsIngested prometheus.Counter
	pointsDropped  prometheus.Counter
	pointsExpired  prometheus.Counter
	pointsEvicted  prometheus.Counter
}

// NewMetrics builds the collectors and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "queries_total",
			Help:      "Range queries served by the cache.",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "hits_total",
			Help:      "Queries answered without needing a remote fetch.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "misses_total",
			Help:      "Queries for entities with no cached metadata.",
		}),
		fetchesNeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "fetches_needed_total",
			Help:      "Queries where the gap analyzer requested a remote fetch.",
		}),
		pointsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "points_ingested_total",
			Help:      "Valid points accepted by CacheData.",
		}),
		pointsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "points_dropped_total",
			Help:      "Invalid points dropped during validation.",
		}),
		pointsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "points_expired_total",
			Help:      "Points removed by the rolling expiration window.",
		}),
		pointsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "histcache",
			Name:      "points_evicted_total",
			Help:      "Points evicted by the per-entity cap.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.queries, m.hits, m.misses, m.fetchesNeeded,
			m.pointsIngested, m.pointsDropped, m.pointsExpired, m.pointsEvicted,
		)
	}

	return m
}

func (m *Metrics) query(hit, miss, fetchNeeded bool) {
	if m == nil {
		return
	}

	m.queries.Inc()

	if hit {
		m.hits.Inc()
	}

	if miss {
		m.misses.Inc()
	}

	if fetchNeeded {
		m.fetchesNeeded.Inc()
	}
}

func (m *Metrics) ingest(accepted, dropped, expired, evicted int) {
	if m == nil {
		return
	}

	m.pointsIngested.Add(float64(accepted))
	m.pointsDropped.Add(float64(dropped))
	m.pointsExpired.Add(float64(expired))
	m.pointsEvicted.Add(float64(evicted))
}
