package histcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/histcache/pkg/models"
)

func point(ts time.Time, value float64) models.DataPoint {
	return models.DataPoint{Timestamp: ts, Value: value, State: "ok"}
}

func TestRangeForScale(t *testing.T) {
	reference := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	stageStart := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		scale      models.TimeScale
		stageStart *time.Time
		wantStart  time.Time
		wantErr    error
	}{
		{name: "day", scale: models.ScaleDay, wantStart: reference.AddDate(0, 0, -1)},
		{name: "week", scale: models.ScaleWeek, wantStart: reference.AddDate(0, 0, -7)},
		{name: "month", scale: models.ScaleMonth, wantStart: reference.AddDate(0, -1, 0)},
		{name: "stage", scale: models.ScaleStage, stageStart: &stageStart, wantStart: stageStart},
		{name: "stage without start", scale: models.ScaleStage, wantErr: errStageStartRequired},
		{name: "unknown", scale: models.TimeScale("year"), wantErr: errUnknownScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := RangeForScale(tt.scale, reference, tt.stageStart)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, reference, r.End)
		})
	}
}

func TestIsExpiredRollingWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsExpired(now.AddDate(0, -3, 0), 2, now))
	assert.False(t, IsExpired(now.AddDate(0, -1, 0), 2, now))
	// A point exactly at the cutoff is still inside the window.
	assert.False(t, IsExpired(now.AddDate(0, -2, 0), 2, now))
}

func TestFilterByRangeInclusiveBounds(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	points := []models.DataPoint{
		point(base.Add(-time.Second), 1),
		point(base, 2),
		point(base.Add(time.Hour), 3),
		point(base.Add(2*time.Hour), 4),
		point(base.Add(2*time.Hour+time.Second), 5),
	}

	got := FilterByRange(points, models.TimeRange{Start: base, End: base.Add(2 * time.Hour)})

	require.Len(t, got, 3)
	assert.Equal(t, 2.0, got[0].Value)
	assert.Equal(t, 4.0, got[2].Value)
}

func TestMergeAndDedupeCachedWins(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cached := []models.DataPoint{
		point(base, 10),
		point(base.Add(time.Hour), 11),
	}

	fresh := []models.DataPoint{
		point(base.Add(time.Hour), 99), // same instant, must lose to cached
		point(base.Add(2*time.Hour), 12),
		point(base.Add(-time.Hour), 9),
	}

	merged := MergeAndDedupe(cached, fresh)

	require.Len(t, merged, 4)

	// Sorted ascending.
	for i := 1; i < len(merged); i++ {
		assert.True(t, merged[i-1].Timestamp.Before(merged[i].Timestamp))
	}

	// The conflicting instant kept the cached value.
	assert.Equal(t, 11.0, merged[2].Value)
}

func TestMergeAndDedupeFreshDuplicates(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	fresh := []models.DataPoint{
		point(base, 1),
		point(base, 2),
		point(base, 3),
	}

	merged := MergeAndDedupe(nil, fresh)

	require.Len(t, merged, 1)
	assert.Equal(t, 1.0, merged[0].Value)
}

func TestRemoveExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	points := []models.DataPoint{
		point(now.AddDate(0, -3, 0), 1),
		point(now.AddDate(0, -1, 0), 2),
		point(now, 3),
	}

	got := RemoveExpired(points, 2, now)

	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Value)
}

func TestCapNewestKeepsMostRecentSortedAscending(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	points := make([]models.DataPoint, 0, 150)
	for i := 0; i < 150; i++ {
		points = append(points, point(base.Add(time.Duration(i)*time.Minute), float64(i)))
	}

	got := CapNewest(points, 100)

	require.Len(t, got, 100)
	assert.Equal(t, 50.0, got[0].Value)
	assert.Equal(t, 149.0, got[99].Value)

	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Timestamp.Before(got[i].Timestamp))
	}
}

func TestCapNewestUnderLimitUntouched(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	points := []models.DataPoint{point(base, 1), point(base.Add(time.Hour), 2)}

	assert.Len(t, CapNewest(points, 100), 2)
}
