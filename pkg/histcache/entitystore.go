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

// Package histcache pkg/histcache/entitystore.go
package histcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/histcache/pkg/logger"
	"github.com/carverauto/histcache/pkg/models"
	"github.com/carverauto/histcache/pkg/storage"
)

// entityEnvelope is the persisted per-entity record.
type entityEnvelope struct {
	Metadata      models.EntityMetadata `json:"metadata"`
	Data          []models.DataPoint    `json:"data"`
	FormatVersion string                `json:"format_version"`
	LastModified  time.Time             `json:"last_modified"`
}

// rawEnvelope defers point decoding so one corrupt element cannot fail the
// whole record.
type rawEnvelope struct {
	Metadata      models.EntityMetadata `json:"metadata"`
	Data          []json.RawMessage     `json:"data"`
	FormatVersion string                `json:"format_version"`
	LastModified  time.Time             `json:"last_modified"`
}

// entityStore persists one entity's metadata+data bundle as a named blob.
// It never touches the index; the manager keeps both in step.
type entityStore struct {
	blobs         storage.BlobStore
	formatVersion string
	logger        logger.Logger
}

func newEntityStore(blobs storage.BlobStore, formatVersion string, log logger.Logger) *entityStore {
	return &entityStore{blobs: blobs, formatVersion: formatVersion, logger: log}
}

// BlobKey derives the collision-free, filesystem-safe storage key for an
// entity: sensor_{source_id}_{sanitized_entity_id}.json.
func BlobKey(sourceID int, entityID string) string {
	return fmt.Sprintf("sensor_%d_%s.json", sourceID, SanitizeEntityID(entityID))
}

// SanitizeEntityID lowercases the id and replaces every character outside
// [a-z0-9_-] with an underscore.
func SanitizeEntityID(entityID string) string {
	lowered := strings.ToLower(entityID)

	var b strings.Builder

	b.Grow(len(lowered))

	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}

// load reads and decodes the entity's blob, validating each point and
// dropping invalid ones. A missing blob or a format-version mismatch is a
// cache-miss (nil, no error), not a failure.
func (s *entityStore) load(ctx context.Context, meta *models.EntityMetadata) ([]models.DataPoint, error) {
	key := BlobKey(meta.SourceID, meta.EntityID)

	data, err := s.blobs.Read(ctx, key)
	if errors.Is(err, storage.ErrBlobNotFound) {
		s.logger.Warn().
			Str("entity_id", meta.EntityID).
			Str("blob", key).
			Msg("cached blob missing, treating as cache miss")

		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load entity %s: %w", meta.EntityID, err)
	}

	var envelope rawEnvelope

	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Warn().
			Err(err).
			Str("entity_id", meta.EntityID).
			Msg("corrupt entity blob, treating as cache miss")

		return nil, nil
	}

	if envelope.FormatVersion != s.formatVersion {
		s.logger.Warn().
			Str("entity_id", meta.EntityID).
			Str("blob_version", envelope.FormatVersion).
			Str("expected_version", s.formatVersion).
			Msg("cache format version mismatch, treating as cache miss")

		return nil, nil
	}

	points := make([]models.DataPoint, 0, len(envelope.Data))
	dropped := 0

	for _, raw := range envelope.Data {
		var p models.DataPoint

		if err := json.Unmarshal(raw, &p); err != nil || !ValidDataPoint(p) {
			dropped++
			continue
		}

		points = append(points, p)
	}

	if dropped > 0 {
		s.logger.Warn().
			Str("entity_id", meta.EntityID).
			Int("dropped", dropped).
			Msg("dropped invalid points while loading entity blob")
	}

	return points, nil
}

// save writes the bundle atomically and returns the stored size in bytes.
func (s *entityStore) save(ctx context.Context, meta models.EntityMetadata, points []models.DataPoint, now time.Time) (int64, error) {
	envelope := entityEnvelope{
		Metadata:      meta,
		Data:          points,
		FormatVersion: s.formatVersion,
		LastModified:  now,
	}

	data, err := json.Marshal(&envelope)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize entity %s: %w", meta.EntityID, err)
	}

	key := BlobKey(meta.SourceID, meta.EntityID)

	if err := s.blobs.Write(ctx, key, data); err != nil {
		return 0, fmt.Errorf("failed to persist entity %s: %w", meta.EntityID, err)
	}

	return int64(len(data)), nil
}

func (s *entityStore) delete(ctx context.Context, meta models.EntityMetadata) error {
	return s.blobs.Delete(ctx, BlobKey(meta.SourceID, meta.EntityID))
}
