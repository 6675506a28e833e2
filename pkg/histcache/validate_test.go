package histcache

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/histcache/pkg/models"
)

func TestValidDataPoint(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		point models.DataPoint
		want  bool
	}{
		{name: "valid", point: models.DataPoint{Timestamp: ts, Value: 21.5, State: "21.5"}, want: true},
		{name: "zero value ok", point: models.DataPoint{Timestamp: ts, State: "off"}, want: true},
		{name: "empty state ok", point: models.DataPoint{Timestamp: ts, Value: 1}, want: true},
		{name: "zero timestamp", point: models.DataPoint{Value: 1, State: "x"}, want: false},
		{name: "NaN value", point: models.DataPoint{Timestamp: ts, Value: math.NaN()}, want: false},
		{name: "Inf value", point: models.DataPoint{Timestamp: ts, Value: math.Inf(1)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidDataPoint(tt.point))
		})
	}
}

func TestValidMetadata(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := models.EntityMetadata{
		EntityID:             "sensor.temp",
		SourceID:             3,
		FirstCachedTimestamp: ts,
		LastCachedTimestamp:  ts.Add(time.Hour),
		DataPointsCount:      10,
		FileSizeBytes:        512,
		LastUpdated:          ts.Add(time.Hour),
	}

	assert.True(t, ValidMetadata(valid))

	tests := []struct {
		name   string
		mutate func(*models.EntityMetadata)
	}{
		{name: "empty entity id", mutate: func(m *models.EntityMetadata) { m.EntityID = "" }},
		{name: "negative count", mutate: func(m *models.EntityMetadata) { m.DataPointsCount = -1 }},
		{name: "negative size", mutate: func(m *models.EntityMetadata) { m.FileSizeBytes = -1 }},
		{name: "zero first timestamp", mutate: func(m *models.EntityMetadata) { m.FirstCachedTimestamp = time.Time{} }},
		{name: "zero last updated", mutate: func(m *models.EntityMetadata) { m.LastUpdated = time.Time{} }},
		{name: "first after last", mutate: func(m *models.EntityMetadata) {
			m.FirstCachedTimestamp = m.LastCachedTimestamp.Add(time.Hour)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			assert.False(t, ValidMetadata(m))
		})
	}
}
