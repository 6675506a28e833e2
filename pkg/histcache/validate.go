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

// Package histcache pkg/histcache/validate.go
package histcache

import (
	"math"

	"github.com/carverauto/histcache/pkg/models"
)

// ValidDataPoint reports whether a point is structurally sound: a real
// timestamp and a finite value. Invalid points are dropped, never fatal.
func ValidDataPoint(p models.DataPoint) bool {
	if p.Timestamp.IsZero() {
		return false
	}

	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return false
	}

	return true
}

// ValidMetadata reports whether an index entry is usable. One bad entry
// must never poison the rest of the index.
func ValidMetadata(m models.EntityMetadata) bool {
	if m.EntityID == "" {
		return false
	}

	if m.DataPointsCount < 0 || m.FileSizeBytes < 0 {
		return false
	}

	if m.FirstCachedTimestamp.IsZero() || m.LastCachedTimestamp.IsZero() || m.LastUpdated.IsZero() {
		return false
	}

	if m.FirstCachedTimestamp.After(m.LastCachedTimestamp) {
		return false
	}

	return true
}
