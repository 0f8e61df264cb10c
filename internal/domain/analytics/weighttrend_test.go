package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func measurement(daysAgo int, weight float64) Measurement {
	base := time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)
	return Measurement{MeasuredAt: base.AddDate(0, 0, -daysAgo), Weight: weight}
}

func TestComputeWeightTrendInsufficientData(t *testing.T) {
	trend := ComputeWeightTrend([]Measurement{measurement(0, 180)}, 30)
	require.Equal(t, "insufficient data to determine a trend", trend.Label)
	require.Equal(t, 0.0, trend.WeeklyRateOfChange)

	trend = ComputeWeightTrend(nil, 30)
	require.Equal(t, "insufficient data to determine a trend", trend.Label)
}

func TestComputeWeightTrendLosing(t *testing.T) {
	points := []Measurement{measurement(7, 200), measurement(0, 193)}
	trend := ComputeWeightTrend(points, 7)
	require.InDelta(t, -7.0, trend.WeeklyRateOfChange, 1e-9)
	require.Contains(t, trend.Label, "losing")
	require.Contains(t, trend.Label, "7.0")
}

func TestComputeWeightTrendGaining(t *testing.T) {
	points := []Measurement{measurement(14, 180), measurement(0, 182)}
	trend := ComputeWeightTrend(points, 14)
	require.InDelta(t, 1.0, trend.WeeklyRateOfChange, 1e-9)
	require.Contains(t, trend.Label, "gaining")
}

func TestComputeWeightTrendMaintaining(t *testing.T) {
	points := []Measurement{measurement(7, 185), measurement(0, 185.05)}
	trend := ComputeWeightTrend(points, 7)
	require.Contains(t, trend.Label, "maintaining")
}

func TestComputeWeightTrendIgnoresIntermediateFluctuation(t *testing.T) {
	points := []Measurement{
		measurement(14, 190),
		measurement(7, 199),
		measurement(0, 190),
	}
	trend := ComputeWeightTrend(points, 14)
	require.Equal(t, 0.0, trend.WeeklyRateOfChange)
	require.Contains(t, trend.Label, "maintaining")
}
