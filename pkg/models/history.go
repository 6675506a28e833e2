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

// Package models pkg/models/history.go
package models

import (
	"time"
)

// DataPoint is one observed telemetry sample for an entity. Within any
// stored sequence timestamps are unique and sorted ascending.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	State     string    `json:"state"`
}

// EntityInfo carries the optional descriptive fields a caller may supply
// alongside fresh data. Absent fields get defaults when metadata is built.
type EntityInfo struct {
	Unit         string `json:"unit,omitempty"`
	DeviceClass  string `json:"device_class,omitempty"`
	FriendlyName string `json:"friendly_name,omitempty"`
}

// EntityMetadata describes one cached entity. Metadata and the stored data
// sequence are always updated together, never independently.
type EntityMetadata struct {
	EntityID             string    `json:"entity_id"`
	SourceID             int       `json:"source_id"`
	Unit                 string    `json:"unit,omitempty"`
	DeviceClass          string    `json:"device_class"`
	FriendlyName         string    `json:"friendly_name"`
	FirstCachedTimestamp time.Time `json:"first_cached_timestamp"`
	LastCachedTimestamp  time.Time `json:"last_cached_timestamp"`
	DataPointsCount      int       `json:"data_points_count"`
	FileSizeBytes        int64     `json:"file_size_bytes"`
	LastUpdated          time.Time `json:"last_updated"`
	CacheFormatVersion   string    `json:"cache_format_version"`
}

// CachedRange returns the time span covered by the entity's stored data.
func (m *EntityMetadata) CachedRange() TimeRange {
	return TimeRange{Start: m.FirstCachedTimestamp, End: m.LastCachedTimestamp}
}

// TimeRange is a closed interval [Start, End] with Start <= End.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains reports whether t falls inside the range, bounds inclusive.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlap returns the duration shared between the two ranges, zero when
// they are disjoint.
func (r TimeRange) Overlap(other TimeRange) time.Duration {
	start := r.Start
	if other.Start.After(start) {
		start = other.Start
	}

	end := r.End
	if other.End.Before(end) {
		end = other.End
	}

	if !end.After(start) {
		return 0
	}

	return end.Sub(start)
}

// TimeScale names a window used to derive a concrete time range.
type TimeScale string

const (
	ScaleDay   TimeScale = "day"
	ScaleWeek  TimeScale = "week"
	ScaleMonth TimeScale = "month"
	// ScaleStage anchors the range start at a caller-supplied stage start
	// instead of a fixed window.
	ScaleStage TimeScale = "stage"
)

// CacheQueryResult is the answer to a range query: the cached subset plus
// the minimal remaining range the caller must fetch remotely, if any.
type CacheQueryResult struct {
	CachedData           []DataPoint `json:"cached_data"`
	NeedsFetch           bool        `json:"needs_fetch"`
	FetchRange           *TimeRange  `json:"fetch_range,omitempty"`
	CacheHitRatio        float64     `json:"cache_hit_ratio"`
	FirstCachedTimestamp *time.Time  `json:"first_cached_timestamp,omitempty"`
	LastCachedTimestamp  *time.Time  `json:"last_cached_timestamp,omitempty"`
}

// RemoteSample is one raw sample as returned by the remote history API.
// Pointer fields because upstream omits either one on bad rows.
type RemoteSample struct {
	Timestamp *time.Time `json:"timestamp"`
	State     *string    `json:"state"`
}
