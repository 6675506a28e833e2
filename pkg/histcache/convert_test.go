package histcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/histcache/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func TestConvertRemoteSamples(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)

	samples := []models.RemoteSample{
		{Timestamp: &t3, State: strPtr("22.5")},
		{Timestamp: &t1, State: strPtr(" 19.0 ")},
		{Timestamp: nil, State: strPtr("20.0")},  // dropped: no timestamp
		{Timestamp: &t2, State: nil},             // dropped: no state
		{Timestamp: &t2, State: strPtr("unavailable")},
	}

	points := ConvertRemoteSamples(samples)

	require.Len(t, points, 3)

	// Sorted ascending regardless of input order.
	assert.Equal(t, t1, points[0].Timestamp)
	assert.Equal(t, 19.0, points[0].Value)

	// Non-numeric state keeps value 0.0 and the original string.
	assert.Equal(t, t2, points[1].Timestamp)
	assert.Equal(t, 0.0, points[1].Value)
	assert.Equal(t, "unavailable", points[1].State)

	assert.Equal(t, 22.5, points[2].Value)
}

func TestConvertRemoteSamplesEmpty(t *testing.T) {
	assert.Empty(t, ConvertRemoteSamples(nil))
}
