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

// Package histcache pkg/histcache/config.go
package histcache

import (
	"time"
)

const (
	defaultMaxAgeMonths  = 2
	defaultMaxPoints     = 100_000
	defaultMaxSizeBytes  = 500 << 20
	defaultBatchSize     = 1_000
	defaultFormatVersion = "1.0"

	// Health thresholds against MaxTotalSizeBytes.
	healthWarningRatio = 0.80
)

// GapConfig carries the gap analyzer tunables. The defaults were chosen
// empirically against Home Assistant recorder retention behavior; treat
// them as a starting point, not an optimum.
type GapConfig struct {
	// EdgeToleranceFraction of the requested duration, clamped to
	// [MinEdgeTolerance, MaxEdgeTolerance], absorbed at range edges before a
	// gap is considered real.
	EdgeToleranceFraction float64       `json:"edge_tolerance_fraction" yaml:"edge_tolerance_fraction"`
	MinEdgeTolerance      time.Duration `json:"min_edge_tolerance" yaml:"min_edge_tolerance"`
	MaxEdgeTolerance      time.Duration `json:"max_edge_tolerance" yaml:"max_edge_tolerance"`

	// MinCoverageRatio above which the cache is good enough and no fetch
	// happens at all.
	MinCoverageRatio float64 `json:"min_coverage_ratio" yaml:"min_coverage_ratio"`

	// ForwardGapFraction is the minimum trailing gap, as a fraction of the
	// requested duration, that triggers a fetch for new data.
	ForwardGapFraction float64 `json:"forward_gap_fraction" yaml:"forward_gap_fraction"`

	// HistoricalGapFraction is the minimum leading gap that triggers a fetch
	// for older data. Deliberately much higher than the forward threshold:
	// upstream retention limits make small historical fetches fail often.
	HistoricalGapFraction float64 `json:"historical_gap_fraction" yaml:"historical_gap_fraction"`

	// CombinedGapFraction below which the summed edge gaps are ignored.
	CombinedGapFraction float64 `json:"combined_gap_fraction" yaml:"combined_gap_fraction"`
}

func (c *GapConfig) SetDefaults() {
	if c.EdgeToleranceFraction == 0 {
		c.EdgeToleranceFraction = 0.005
	}

	if c.MinEdgeTolerance == 0 {
		c.MinEdgeTolerance = 5 * time.Minute
	}

	if c.MaxEdgeTolerance == 0 {
		c.MaxEdgeTolerance = time.Hour
	}

	if c.MinCoverageRatio == 0 {
		c.MinCoverageRatio = 0.95
	}

	if c.ForwardGapFraction == 0 {
		c.ForwardGapFraction = 0.01
	}

	if c.HistoricalGapFraction == 0 {
		c.HistoricalGapFraction = 0.10
	}

	if c.CombinedGapFraction == 0 {
		c.CombinedGapFraction = 0.02
	}
}

// Config holds the cache limits and the gap tunables.
type Config struct {
	// MaxAgeMonths is the rolling expiration window.
	MaxAgeMonths int `json:"max_age_months" yaml:"max_age_months"`

	// MaxPointsPerEntity caps each stored sequence; the newest points win.
	MaxPointsPerEntity int `json:"max_points_per_entity" yaml:"max_points_per_entity"`

	// MaxTotalSizeBytes drives the health classification only; writes are
	// never refused on size.
	MaxTotalSizeBytes int64 `json:"max_total_size_bytes" yaml:"max_total_size_bytes"`

	// BatchSize bounds per-chunk processing of large inputs.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// FormatVersion is stamped on every persisted record and checked on load.
	FormatVersion string `json:"format_version" yaml:"format_version"`

	Gap GapConfig `json:"gap" yaml:"gap"`
}

func (c *Config) SetDefaults() {
	if c.MaxAgeMonths == 0 {
		c.MaxAgeMonths = defaultMaxAgeMonths
	}

	if c.MaxPointsPerEntity == 0 {
		c.MaxPointsPerEntity = defaultMaxPoints
	}

	if c.MaxTotalSizeBytes == 0 {
		c.MaxTotalSizeBytes = defaultMaxSizeBytes
	}

	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}

	if c.FormatVersion == "" {
		c.FormatVersion = defaultFormatVersion
	}

	c.Gap.SetDefaults()
}

func (c *Config) Validate() error {
	if c.MaxAgeMonths <= 0 {
		return errMaxAgeInvalid
	}

	if c.MaxPointsPerEntity <= 0 {
		return errMaxPointsInvalid
	}

	if c.MaxTotalSizeBytes <= 0 {
		return errMaxSizeInvalid
	}

	if c.BatchSize <= 0 {
		return errBatchSizeInvalid
	}

	if c.FormatVersion == "" {
		return errFormatVersionMissing
	}

	return nil
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var cfg Config

	cfg.SetDefaults()

	return cfg
}
