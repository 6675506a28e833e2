package histcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/histcache/pkg/models"
)

func gapConfig() GapConfig {
	var cfg GapConfig

	cfg.SetDefaults()

	return cfg
}

func metaCovering(first, last time.Time) *models.EntityMetadata {
	return &models.EntityMetadata{
		EntityID:             "sensor.temp",
		SourceID:             1,
		FirstCachedTimestamp: first,
		LastCachedTimestamp:  last,
		DataPointsCount:      100,
		LastUpdated:          last,
	}
}

func TestFindDataGapNoMetadataReturnsFullRange(t *testing.T) {
	requested := models.TimeRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	gap := FindDataGap(requested, nil, gapConfig())

	require.NotNil(t, gap)
	assert.Equal(t, requested, *gap)
}

func TestFindDataGapWithinToleranceReturnsNone(t *testing.T) {
	// Cached [Jan 1, Jan 10], query [Jan 1 00:02, Jan 9 23:58]: the cached
	// span fully covers the query, small edge offsets must not trigger a
	// fetch.
	meta := metaCovering(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	)

	requested := models.TimeRange{
		Start: time.Date(2025, 1, 1, 0, 2, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 9, 23, 58, 0, 0, time.UTC),
	}

	assert.Nil(t, FindDataGap(requested, meta, gapConfig()))
}

func TestFindDataGapForwardGapDetected(t *testing.T) {
	// Cached ends Jan 10, query ends Jan 12: an 18% trailing gap means new
	// data must be fetched from the cached end forward.
	meta := metaCovering(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	)

	requested := models.TimeRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
	}

	gap := FindDataGap(requested, meta, gapConfig())

	require.NotNil(t, gap)
	assert.Equal(t, meta.LastCachedTimestamp, gap.Start)
	assert.Equal(t, requested.End, gap.End)
}

func TestFindDataGapSmallHistoricalGapSuppressed(t *testing.T) {
	// Cached starts Jan 5; a 90-day query reaching one day further back is
	// a <10% historical gap and must not trigger a fetch: upstream
	// retention rarely has it anyway.
	meta := metaCovering(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC),
	)

	requested := models.TimeRange{
		Start: time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC),
	}

	assert.Nil(t, FindDataGap(requested, meta, gapConfig()))
}

func TestFindDataGapLargeHistoricalGapDetected(t *testing.T) {
	// Cached covers only the last 2 days of a 10-day query: 80% of the
	// request lies before the cached start, well past the 10% threshold.
	meta := metaCovering(
		time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	)

	requested := models.TimeRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	}

	gap := FindDataGap(requested, meta, gapConfig())

	require.NotNil(t, gap)
	assert.Equal(t, requested.Start, gap.Start)
	assert.Equal(t, meta.FirstCachedTimestamp, gap.End)
}

func TestFindDataGapHighCoverageShortCircuits(t *testing.T) {
	// 96% coverage is good enough even though the trailing edge is stale.
	meta := metaCovering(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(96*time.Hour),
	)

	requested := models.TimeRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(100 * time.Hour),
	}

	assert.Nil(t, FindDataGap(requested, meta, gapConfig()))
}

func TestFindDataGapEmptyRequestedRange(t *testing.T) {
	at := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	meta := metaCovering(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	)

	assert.Nil(t, FindDataGap(models.TimeRange{Start: at, End: at}, meta, gapConfig()))
}

func TestEdgeToleranceClamped(t *testing.T) {
	cfg := gapConfig()

	tests := []struct {
		name     string
		duration time.Duration
		want     time.Duration
	}{
		{name: "short range floors at five minutes", duration: time.Hour, want: 5 * time.Minute},
		{name: "long range caps at one hour", duration: 90 * 24 * time.Hour, want: time.Hour},
		{name: "mid range scales at half percent", duration: 100 * time.Hour, want: 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, edgeTolerance(tt.duration, cfg))
		})
	}
}
