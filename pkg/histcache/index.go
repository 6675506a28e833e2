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

// Package histcache pkg/histcache/index.go
package histcache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carverauto/histcache/pkg/logger"
	"github.com/carverauto/histcache/pkg/models"
	"github.com/carverauto/histcache/pkg/storage"
)

const indexKey = "sensor_cache_index"

// cacheIndex is the in-memory entity_id -> metadata map, persisted as one
// serialized record in the KV store. It holds no business logic beyond
// load, save and lookup; all mutations go through the manager.
type cacheIndex struct {
	kv      storage.KVStore
	entries map[string]models.EntityMetadata
	logger  logger.Logger
}

func newCacheIndex(kv storage.KVStore, log logger.Logger) *cacheIndex {
	return &cacheIndex{
		kv:      kv,
		entries: make(map[string]models.EntityMetadata),
		logger:  log,
	}
}

// load reads the persisted index, validating each entry individually. A
// corrupt record restarts the cache from an empty index: availability over
// completeness.
func (i *cacheIndex) load(ctx context.Context) error {
	i.entries = make(map[string]models.EntityMetadata)

	data, found, err := i.kv.Get(ctx, indexKey)
	if err != nil {
		return fmt.Errorf("failed to read cache index: %w", err)
	}

	if !found {
		return nil
	}

	var raw map[string]json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		i.logger.Error().Err(err).Msg("cache index unparseable, starting from empty index")

		return nil
	}

	dropped := 0

	for entityID, rawMeta := range raw {
		var meta models.EntityMetadata

		if err := json.Unmarshal(rawMeta, &meta); err != nil || !ValidMetadata(meta) {
			dropped++

			i.logger.Warn().Str("entity_id", entityID).Msg("discarding invalid index entry")

			continue
		}

		i.entries[entityID] = meta
	}

	if dropped > 0 {
		i.logger.Warn().
			Int("dropped", dropped).
			Int("loaded", len(i.entries)).
			Msg("cache index loaded with invalid entries discarded")
	}

	return nil
}

// persist writes the full map back to the KV store in one record.
func (i *cacheIndex) persist(ctx context.Context) error {
	data, err := json.Marshal(i.entries)
	if err != nil {
		return fmt.Errorf("failed to serialize cache index: %w", err)
	}

	if err := i.kv.Put(ctx, indexKey, data, 0); err != nil {
		return fmt.Errorf("failed to persist cache index: %w", err)
	}

	return nil
}

func (i *cacheIndex) get(entityID string) (models.EntityMetadata, bool) {
	meta, ok := i.entries[entityID]

	return meta, ok
}

func (i *cacheIndex) set(meta models.EntityMetadata) {
	i.entries[meta.EntityID] = meta
}

func (i *cacheIndex) remove(entityID string) {
	delete(i.entries, entityID)
}

// snapshot returns a copy of the entries for read-only scans.
func (i *cacheIndex) snapshot() map[string]models.EntityMetadata {
	out := make(map[string]models.EntityMetadata, len(i.entries))

	for k, v := range i.entries {
		out[k] = v
	}

	return out
}
