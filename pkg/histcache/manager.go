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

// Package histcache implements the differential sensor-history cache: a
// local, persistent time-series cache that serves range queries from local
// storage and computes the minimal remaining range a caller must fetch from
// the remote history API.
package histcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/carverauto/histcache/pkg/logger"
	"github.com/carverauto/histcache/pkg/models"
	"github.com/carverauto/histcache/pkg/storage"
)

// Manager composes the index, the entity store and the gap analyzer behind
// the public cache contract. Construct one per process at the composition
// root and call Initialize before use.
type Manager struct {
	cfg     Config
	index   *cacheIndex
	store   *entityStore
	metrics *Metrics
	logger  zerolog.Logger

	mu          sync.Mutex
	entityLocks map[string]*sync.Mutex
	initialized bool

	now func() time.Time
}

// NewManager wires the cache against a KV store (index record) and a blob
// store (per-entity bundles). reg may be nil to disable metrics.
func NewManager(cfg Config, kv storage.KVStore, blobs storage.BlobStore, reg prometheus.Registerer, log logger.Logger) *Manager {
	cfg.SetDefaults()

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Manager{
		cfg:         cfg,
		index:       newCacheIndex(kv, log),
		store:       newEntityStore(blobs, cfg.FormatVersion, log),
		metrics:     NewMetrics(reg),
		logger:      log.WithComponent("histcache"),
		entityLocks: make(map[string]*sync.Mutex),
		now:         time.Now,
	}
}

// Initialize loads the persisted index. Idempotent; safe to call multiple
// times.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := m.cfg.Validate(); err != nil {
		return err
	}

	if err := m.index.load(ctx); err != nil {
		return fmt.Errorf("cache initialization failed: %w", err)
	}

	m.initialized = true

	m.logger.Info().Int("entities", len(m.index.entries)).Msg("sensor history cache initialized")

	return nil
}

// GetCachedData answers a range query from local storage only. It never
// fetches remotely; when the gap analyzer finds missing data the result
// carries the minimal range the caller should fetch.
func (m *Manager) GetCachedData(ctx context.Context, entityID string, requested models.TimeRange) (*models.CacheQueryResult, error) {
	if entityID == "" {
		return nil, errEntityIDRequired
	}

	if requested.Start.After(requested.End) {
		return nil, errInvalidRange
	}

	if err := m.requireInitialized(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	meta, ok := m.index.get(entityID)
	m.mu.Unlock()

	if !ok {
		gap := requested

		m.metrics.query(false, true, true)

		return &models.CacheQueryResult{
			CachedData: []models.DataPoint{},
			NeedsFetch: true,
			FetchRange: &gap,
		}, nil
	}

	points, err := m.store.load(ctx, &meta)
	if err != nil {
		// Storage trouble degrades to a cache miss, never a broken query.
		m.logger.Error().Err(err).Str("entity_id", entityID).Msg("entity load failed, degrading to cache miss")

		gap := requested

		m.metrics.query(false, true, true)

		return &models.CacheQueryResult{
			CachedData: []models.DataPoint{},
			NeedsFetch: true,
			FetchRange: &gap,
		}, nil
	}

	gap := FindDataGap(requested, &meta, m.cfg.Gap)

	first := meta.FirstCachedTimestamp
	last := meta.LastCachedTimestamp

	result := &models.CacheQueryResult{
		CachedData:           FilterByRange(points, requested),
		NeedsFetch:           gap != nil,
		FetchRange:           gap,
		CacheHitRatio:        hitRatio(requested, meta),
		FirstCachedTimestamp: &first,
		LastCachedTimestamp:  &last,
	}

	m.metrics.query(gap == nil, false, gap != nil)

	m.logger.Debug().
		Str("entity_id", entityID).
		Int("points", len(result.CachedData)).
		Bool("needs_fetch", result.NeedsFetch).
		Float64("hit_ratio", result.CacheHitRatio).
		Msg("cache query served")

	return result, nil
}

// CacheData merges freshly fetched points into the entity's stored
// sequence: validate, merge (cached wins on timestamp conflict), expire,
// cap to the newest N, persist, update the index. Expected failures are
// reported in the result, not returned as errors.
func (m *Manager) CacheData(ctx context.Context, entityID string, sourceID int, fresh []models.DataPoint, info *models.EntityInfo) *models.OperationReport {
	rep := newReport()

	if entityID == "" {
		return rep.failure(errEntityIDRequired.Error())
	}

	if err := m.requireInitialized(); err != nil {
		return rep.failure(err.Error())
	}

	unlock := m.lockEntity(entityID)
	defer unlock()

	now := m.now()

	valid, dropped := m.validateBatched(fresh)
	if dropped > 0 {
		m.logger.Warn().
			Str("entity_id", entityID).
			Int("dropped", dropped).
			Msg("dropped invalid incoming points")
	}

	m.mu.Lock()
	existingMeta, hasMeta := m.index.get(entityID)
	m.mu.Unlock()

	var cached []models.DataPoint

	if hasMeta {
		var err error

		cached, err = m.store.load(ctx, &existingMeta)
		if err != nil {
			m.logger.Error().Err(err).Str("entity_id", entityID).Msg("existing data unreadable, rebuilding from fresh points")

			cached = nil
		}
	}

	merged := MergeAndDedupe(cached, valid)

	afterMerge := len(merged)

	merged = RemoveExpired(merged, m.cfg.MaxAgeMonths, now)
	expired := afterMerge - len(merged)

	beforeCap := len(merged)

	merged = CapNewest(merged, m.cfg.MaxPointsPerEntity)
	evicted := beforeCap - len(merged)

	m.metrics.ingest(len(valid), dropped, expired, evicted)

	if len(merged) == 0 {
		// Nothing left to store; an empty bundle would violate the metadata
		// invariants, so drop the entry entirely.
		return m.removeEntity(ctx, entityID, existingMeta, hasMeta, rep, dropped, len(fresh))
	}

	meta := buildMetadata(entityID, sourceID, merged, info, existingMeta, hasMeta, m.cfg.FormatVersion, now)

	size, err := m.store.save(ctx, meta, merged, now)
	if err != nil {
		m.logger.Error().Err(err).Str("entity_id", entityID).Msg("entity persist failed")

		return rep.failure(err.Error())
	}

	meta.FileSizeBytes = size

	m.mu.Lock()
	m.index.set(meta)
	err = m.index.persist(ctx)
	m.mu.Unlock()

	if err != nil {
		m.logger.Error().Err(err).Str("entity_id", entityID).Msg("index persist failed")

		return rep.failure(err.Error())
	}

	rep.op.EntitiesAffected = 1
	rep.op.DataPointsProcessed = len(merged)

	msg := fmt.Sprintf("cached %d points (%d expired, %d evicted)", len(merged), expired, evicted)

	if dropped > 0 {
		return rep.partial(msg, fmt.Sprintf("%d invalid points dropped", dropped))
	}

	return rep.success(msg)
}

// PurgeOldData removes expired points for one entity. Expiration is lazy;
// there is no background timer in this component.
func (m *Manager) PurgeOldData(ctx context.Context, entityID string) *models.OperationReport {
	rep := newReport()

	if entityID == "" {
		return rep.failure(errEntityIDRequired.Error())
	}

	if err := m.requireInitialized(); err != nil {
		return rep.failure(err.Error())
	}

	unlock := m.lockEntity(entityID)
	defer unlock()

	m.mu.Lock()
	meta, ok := m.index.get(entityID)
	m.mu.Unlock()

	if !ok {
		return rep.notFound(fmt.Sprintf("no cache entry for entity %s", entityID))
	}

	now := m.now()

	points, err := m.store.load(ctx, &meta)
	if err != nil {
		return rep.failure(err.Error())
	}

	remaining := RemoveExpired(points, m.cfg.MaxAgeMonths, now)

	purged := len(points) - len(remaining)
	if purged == 0 {
		rep.op.DataPointsProcessed = len(points)

		return rep.success("no expired points")
	}

	m.metrics.ingest(0, 0, purged, 0)

	if len(remaining) == 0 {
		return m.removeEntity(ctx, entityID, meta, true, rep, 0, purged)
	}

	meta.FirstCachedTimestamp = remaining[0].Timestamp
	meta.LastCachedTimestamp = remaining[len(remaining)-1].Timestamp
	meta.DataPointsCount = len(remaining)
	meta.LastUpdated = now

	size, err := m.store.save(ctx, meta, remaining, now)
	if err != nil {
		return rep.failure(err.Error())
	}

	meta.FileSizeBytes = size

	m.mu.Lock()
	m.index.set(meta)
	err = m.index.persist(ctx)
	m.mu.Unlock()

	if err != nil {
		return rep.failure(err.Error())
	}

	rep.op.EntitiesAffected = 1
	rep.op.DataPointsProcessed = purged

	return rep.success(fmt.Sprintf("purged %d expired points", purged))
}

// DeleteSourceCache removes every cached entity belonging to a source,
// used when an upstream gateway is deregistered. Individual blob failures
// are collected, not fatal.
func (m *Manager) DeleteSourceCache(ctx context.Context, sourceID int) *models.SourceCleanupResult {
	result := &models.SourceCleanupResult{SourceID: sourceID}

	if err := m.requireInitialized(); err != nil {
		result.Errors = append(result.Errors, err.Error())

		return result
	}

	m.mu.Lock()
	entries := m.index.snapshot()
	m.mu.Unlock()

	removed := make([]string, 0)

	for entityID, meta := range entries {
		if meta.SourceID != sourceID {
			continue
		}

		if err := m.store.delete(ctx, meta); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entityID, err))
			continue
		}

		removed = append(removed, entityID)
		result.EntitiesRemoved++
		result.PointsRemoved += meta.DataPointsCount
		result.BytesRemoved += meta.FileSizeBytes
	}

	if len(removed) == 0 {
		return result
	}

	m.mu.Lock()

	for _, entityID := range removed {
		m.index.remove(entityID)
	}

	err := m.index.persist(ctx)

	m.mu.Unlock()

	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	m.logger.Info().
		Int("source_id", sourceID).
		Int("entities", result.EntitiesRemoved).
		Int("points", result.PointsRemoved).
		Int64("bytes", result.BytesRemoved).
		Msg("source cache deleted")

	return result
}

// Stats aggregates index metadata and classifies cache health. Scans the
// index only, never the stored blobs.
func (m *Manager) Stats(_ context.Context) *models.CacheStats {
	stats := &models.CacheStats{
		MaxSizeBytes: m.cfg.MaxTotalSizeBytes,
		BySource:     make(map[int]models.SourceStats),
	}

	if err := m.requireInitialized(); err != nil {
		stats.Health = models.HealthUnknown

		return stats
	}

	m.mu.Lock()
	entries := m.index.snapshot()
	m.mu.Unlock()

	for _, meta := range entries {
		stats.TotalEntities++
		stats.TotalDataPoints += meta.DataPointsCount
		stats.TotalSizeBytes += meta.FileSizeBytes

		src := stats.BySource[meta.SourceID]
		src.Entities++
		src.DataPoints += meta.DataPointsCount
		src.SizeBytes += meta.FileSizeBytes
		stats.BySource[meta.SourceID] = src
	}

	stats.UsageRatio = float64(stats.TotalSizeBytes) / float64(m.cfg.MaxTotalSizeBytes)

	switch {
	case stats.TotalSizeBytes >= m.cfg.MaxTotalSizeBytes:
		stats.Health = models.HealthCritical
	case stats.UsageRatio >= healthWarningRatio:
		stats.Health = models.HealthWarning
	default:
		stats.Health = models.HealthHealthy
	}

	return stats
}

func (m *Manager) requireInitialized() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return errNotInitialized
	}

	return nil
}

// lockEntity serializes the read-merge-write critical section per entity;
// concurrent CacheData calls for the same id would otherwise silently drop
// one of the two updates.
func (m *Manager) lockEntity(entityID string) func() {
	m.mu.Lock()

	lock, ok := m.entityLocks[entityID]
	if !ok {
		lock = &sync.Mutex{}
		m.entityLocks[entityID] = lock
	}

	m.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

// validateBatched validates incoming points in bounded chunks so very
// large remote responses do not spike memory.
func (m *Manager) validateBatched(points []models.DataPoint) (valid []models.DataPoint, dropped int) {
	valid = make([]models.DataPoint, 0, len(points))

	for start := 0; start < len(points); start += m.cfg.BatchSize {
		end := start + m.cfg.BatchSize
		if end > len(points) {
			end = len(points)
		}

		for _, p := range points[start:end] {
			if ValidDataPoint(p) {
				valid = append(valid, p)
			} else {
				dropped++
			}
		}
	}

	return valid, dropped
}

func (m *Manager) removeEntity(ctx context.Context, entityID string, meta models.EntityMetadata, hasMeta bool, rep *report, dropped, processed int) *models.OperationReport {
	if hasMeta {
		if err := m.store.delete(ctx, meta); err != nil {
			return rep.failure(err.Error())
		}

		m.mu.Lock()
		m.index.remove(entityID)
		err := m.index.persist(ctx)
		m.mu.Unlock()

		if err != nil {
			return rep.failure(err.Error())
		}

		rep.op.EntitiesAffected = 1
	}

	rep.op.DataPointsProcessed = processed

	msg := "no cacheable points"
	if hasMeta {
		msg = "no points remain after expiration, entry removed"
	}

	if dropped > 0 {
		return rep.partial(msg, fmt.Sprintf("%d invalid points dropped", dropped))
	}

	return rep.success(msg)
}

// hitRatio is the fraction of the requested range covered by the cached
// span, clamped to [0,1].
func hitRatio(requested models.TimeRange, meta models.EntityMetadata) float64 {
	duration := requested.Duration()
	if duration <= 0 {
		if meta.CachedRange().Contains(requested.Start) {
			return 1
		}

		return 0
	}

	ratio := float64(meta.CachedRange().Overlap(requested)) / float64(duration)
	if ratio > 1 {
		ratio = 1
	}

	return ratio
}

func buildMetadata(entityID string, sourceID int, points []models.DataPoint, info *models.EntityInfo, existing models.EntityMetadata, hasExisting bool, formatVersion string, now time.Time) models.EntityMetadata {
	meta := models.EntityMetadata{
		EntityID:             entityID,
		SourceID:             sourceID,
		DeviceClass:          "sensor",
		FriendlyName:         entityID,
		FirstCachedTimestamp: points[0].Timestamp,
		LastCachedTimestamp:  points[len(points)-1].Timestamp,
		DataPointsCount:      len(points),
		LastUpdated:          now,
		CacheFormatVersion:   formatVersion,
	}

	if hasExisting {
		meta.Unit = existing.Unit
		meta.DeviceClass = existing.DeviceClass
		meta.FriendlyName = existing.FriendlyName
	}

	if info != nil {
		if info.Unit != "" {
			meta.Unit = info.Unit
		}

		if info.DeviceClass != "" {
			meta.DeviceClass = info.DeviceClass
		}

		if info.FriendlyName != "" {
			meta.FriendlyName = info.FriendlyName
		}
	}

	return meta
}
