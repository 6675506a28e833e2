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

// Package histcache pkg/histcache/timerange.go
package histcache

import (
	"sort"
	"time"

	"github.com/carverauto/histcache/pkg/models"
)

// RangeForScale maps a named scale to a concrete range ending at reference.
// ScaleStage anchors the start at stageStart; passing a nil stageStart for
// that scale is a caller contract violation and returns an error.
func RangeForScale(scale models.TimeScale, reference time.Time, stageStart *time.Time) (models.TimeRange, error) {
	switch scale {
	case models.ScaleDay:
		return models.TimeRange{Start: reference.AddDate(0, 0, -1), End: reference}, nil
	case models.ScaleWeek:
		return models.TimeRange{Start: reference.AddDate(0, 0, -7), End: reference}, nil
	case models.ScaleMonth:
		return models.TimeRange{Start: reference.AddDate(0, -1, 0), End: reference}, nil
	case models.ScaleStage:
		if stageStart == nil {
			return models.TimeRange{}, errStageStartRequired
		}

		if stageStart.After(reference) {
			return models.TimeRange{}, errInvalidRange
		}

		return models.TimeRange{Start: *stageStart, End: reference}, nil
	default:
		return models.TimeRange{}, errUnknownScale
	}
}

// IsExpired reports whether ts falls outside the rolling window of
// maxAgeMonths before now. Rolling, not a fixed calendar boundary.
func IsExpired(ts time.Time, maxAgeMonths int, now time.Time) bool {
	cutoff := now.AddDate(0, -maxAgeMonths, 0)

	return ts.Before(cutoff)
}

// FilterByRange returns the points inside the range, bounds inclusive.
// Input order is preserved.
func FilterByRange(points []models.DataPoint, r models.TimeRange) []models.DataPoint {
	out := make([]models.DataPoint, 0, len(points))

	for _, p := range points {
		if r.Contains(p.Timestamp) {
			out = append(out, p)
		}
	}

	return out
}

// MergeAndDedupe combines cached and fresh points. A fresh point whose
// timestamp already exists in cached is discarded: fresh data for an
// already-seen instant is assumed identical or stale, so cached wins.
// The result is sorted ascending and timestamp-unique.
func MergeAndDedupe(cached, fresh []models.DataPoint) []models.DataPoint {
	seen := make(map[int64]struct{}, len(cached)+len(fresh))
	merged := make([]models.DataPoint, 0, len(cached)+len(fresh))

	for _, p := range cached {
		key := p.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		merged = append(merged, p)
	}

	for _, p := range fresh {
		key := p.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		merged = append(merged, p)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	return merged
}

// RemoveExpired filters out points older than the rolling window.
func RemoveExpired(points []models.DataPoint, maxAgeMonths int, now time.Time) []models.DataPoint {
	out := make([]models.DataPoint, 0, len(points))

	for _, p := range points {
		if !IsExpired(p.Timestamp, maxAgeMonths, now) {
			out = append(out, p)
		}
	}

	return out
}

// CapNewest keeps at most limit points, preferring the newest, and returns
// them sorted ascending. The retained window is always the most recent
// data, never an arbitrary truncation.
func CapNewest(points []models.DataPoint, limit int) []models.DataPoint {
	if limit <= 0 || len(points) <= limit {
		return points
	}

	sorted := make([]models.DataPoint, len(points))
	copy(sorted, points)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	return sorted[len(sorted)-limit:]
}
