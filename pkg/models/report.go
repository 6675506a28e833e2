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

// Package models pkg/models/report.go
package models

// OperationResult classifies the outcome of a cache operation.
type OperationResult string

const (
	ResultSuccess        OperationResult = "success"
	ResultPartialSuccess OperationResult = "partial_success"
	ResultFailure        OperationResult = "failure"
	ResultNotFound       OperationResult = "not_found"
)

// OperationReport is returned by every mutating cache operation. Expected
// failure modes are reported here, never as Go errors.
type OperationReport struct {
	OperationID         string          `json:"operation_id"`
	Result              OperationResult `json:"result"`
	Message             string          `json:"message"`
	EntitiesAffected    int             `json:"entities_affected"`
	DataPointsProcessed int             `json:"data_points_processed"`
	DurationMs          int64           `json:"duration_ms"`
	Errors              []string        `json:"errors,omitempty"`
}

// CacheHealth classifies total cache size against the configured maximum.
type CacheHealth string

const (
	HealthHealthy  CacheHealth = "healthy"
	HealthWarning  CacheHealth = "warning"
	HealthCritical CacheHealth = "critical"
	HealthUnknown  CacheHealth = "unknown"
)

// SourceStats aggregates cached state for one upstream source (gateway).
type SourceStats struct {
	Entities   int   `json:"entities"`
	DataPoints int   `json:"data_points"`
	SizeBytes  int64 `json:"size_bytes"`
}

// CacheStats is the aggregate view over the whole index. Read-only; built
// by scanning index metadata, never the stored blobs.
type CacheStats struct {
	TotalEntities   int                 `json:"total_entities"`
	TotalDataPoints int                 `json:"total_data_points"`
	TotalSizeBytes  int64               `json:"total_size_bytes"`
	MaxSizeBytes    int64               `json:"max_size_bytes"`
	UsageRatio      float64             `json:"usage_ratio"`
	Health          CacheHealth         `json:"health"`
	BySource        map[int]SourceStats `json:"by_source,omitempty"`
}

// SourceCleanupResult reports what DeleteSourceCache removed.
type SourceCleanupResult struct {
	SourceID        int      `json:"source_id"`
	EntitiesRemoved int      `json:"entities_removed"`
	PointsRemoved   int      `json:"points_removed"`
	BytesRemoved    int64    `json:"bytes_removed"`
	Errors          []string `json:"errors,omitempty"`
}
