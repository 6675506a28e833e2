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

// Package histcache pkg/histcache/convert.go
package histcache

import (
	"sort"
	"strconv"
	"strings"

	"github.com/carverauto/histcache/pkg/models"
)

// ConvertRemoteSamples turns raw remote history samples into cacheable
// points. Samples missing a timestamp or state are dropped. Numeric states
// become the point value; non-numeric states ("on", "unavailable") keep
// value 0.0 with the original state string preserved. Output is sorted
// ascending.
func ConvertRemoteSamples(samples []models.RemoteSample) []models.DataPoint {
	points := make([]models.DataPoint, 0, len(samples))

	for _, s := range samples {
		if s.Timestamp == nil || s.State == nil {
			continue
		}

		state := *s.State

		value, err := strconv.ParseFloat(strings.TrimSpace(state), 64)
		if err != nil {
			value = 0.0
		}

		points = append(points, models.DataPoint{
			Timestamp: *s.Timestamp,
			Value:     value,
			State:     state,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points
}
