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

// Package histcache pkg/histcache/gap.go
package histcache

import (
	"time"

	"github.com/carverauto/histcache/pkg/models"
)

// FindDataGap computes the minimal sub-range of requested that is not
// covered by the cached span described by meta, or nil when the cache is
// good enough. Thresholds are asymmetric: trailing gaps (new data) are
// cheap to fetch and usually succeed, leading gaps (older data) frequently
// fail against upstream retention limits and need stronger justification.
func FindDataGap(requested models.TimeRange, meta *models.EntityMetadata, cfg GapConfig) *models.TimeRange {
	if meta == nil {
		gap := requested

		return &gap
	}

	duration := requested.Duration()
	if duration <= 0 {
		return nil
	}

	tolerance := edgeTolerance(duration, cfg)

	cached := meta.CachedRange()

	coverage := float64(cached.Overlap(requested)) / float64(duration)
	if coverage >= cfg.MinCoverageRatio {
		return nil
	}

	endGap := requested.End.Sub(cached.End)
	startGap := cached.Start.Sub(requested.Start)

	if endGap > tolerance && float64(endGap) >= cfg.ForwardGapFraction*float64(duration) {
		start := cached.End
		if requested.Start.After(start) {
			start = requested.Start
		}

		return &models.TimeRange{Start: start, End: requested.End}
	}

	if startGap > tolerance && float64(startGap) >= cfg.HistoricalGapFraction*float64(duration) {
		end := cached.Start
		if requested.End.Before(end) {
			end = requested.End
		}

		return &models.TimeRange{Start: requested.Start, End: end}
	}

	combined := absDuration(startGap) + absDuration(endGap)
	if float64(combined) < cfg.CombinedGapFraction*float64(duration) {
		return nil
	}

	// Marginal cases deliberately fall through to no-gap: over-fetching on
	// every query is worse than a slightly stale edge.
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}

func edgeTolerance(duration time.Duration, cfg GapConfig) time.Duration {
	tolerance := time.Duration(cfg.EdgeToleranceFraction * float64(duration))

	if tolerance > cfg.MaxEdgeTolerance {
		tolerance = cfg.MaxEdgeTolerance
	}

	if tolerance < cfg.MinEdgeTolerance {
		tolerance = cfg.MinEdgeTolerance
	}

	return tolerance
}
