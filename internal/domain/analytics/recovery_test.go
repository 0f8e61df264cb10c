package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var recoveryNow = time.Date(2024, 7, 15, 18, 0, 0, 0, time.UTC)

func activity(daysAgo int, intensity Intensity) Activity {
	return Activity{
		Date:      recoveryNow.AddDate(0, 0, -daysAgo),
		Type:      ActivityOther,
		Intensity: intensity,
	}
}

func TestRecoveryEmptyWindow(t *testing.T) {
	ctx := Recovery(nil, recoveryNow)
	require.Equal(t, 0, ctx.WeeklyIntensityScore)
	require.Nil(t, ctx.DaysSinceLastHard)
	require.False(t, ctx.NeedsRecovery)
	require.Contains(t, ctx.Recommendation, "Recovery looks good")
}

func TestRecoveryHardSessionToday(t *testing.T) {
	ctx := Recovery([]Activity{activity(0, IntensityHard)}, recoveryNow)
	require.NotNil(t, ctx.DaysSinceLastHard)
	require.Equal(t, 0, *ctx.DaysSinceLastHard)
	require.Equal(t, 3, ctx.WeeklyIntensityScore)
	require.True(t, ctx.NeedsRecovery)
	require.Contains(t, ctx.Recommendation, "hard today")
}

func TestRecoveryScoreThresholdIsStrict(t *testing.T) {
	// Five days of moderate plus light is exactly 15, which does not
	// trip the cumulative-load flag.
	var acts []Activity
	for d := 1; d <= 5; d++ {
		acts = append(acts, activity(d, IntensityModerate), activity(d, IntensityLight))
	}
	ctx := Recovery(acts, recoveryNow)
	require.Equal(t, 15, ctx.WeeklyIntensityScore)
	require.False(t, ctx.NeedsRecovery)

	acts = append(acts, activity(6, IntensityLight))
	ctx = Recovery(acts, recoveryNow)
	require.Equal(t, 16, ctx.WeeklyIntensityScore)
	require.True(t, ctx.NeedsRecovery)
	require.Contains(t, ctx.Recommendation, "load")
}

func TestRecoverySameDayHardWinsOverCumulativeMessage(t *testing.T) {
	acts := []Activity{activity(0, IntensityHard)}
	for d := 1; d <= 5; d++ {
		acts = append(acts, activity(d, IntensityHard))
	}
	ctx := Recovery(acts, recoveryNow)
	require.Greater(t, ctx.WeeklyIntensityScore, recoveryScoreThreshold)
	require.Contains(t, ctx.Recommendation, "hard today")
}

func TestRecoveryIgnoresActivitiesOutsideWindow(t *testing.T) {
	acts := []Activity{
		activity(8, IntensityHard),
		activity(2, IntensityLight),
	}
	ctx := Recovery(acts, recoveryNow)
	require.Equal(t, 1, ctx.WeeklyIntensityScore)
	require.Nil(t, ctx.DaysSinceLastHard)
}

func TestRecoveryWindowSpansExactlySevenDays(t *testing.T) {
	// Day boundary: 6 days ago is the oldest day inside the window,
	// 7 days ago is already out.
	ctx := Recovery([]Activity{activity(7, IntensityHard)}, recoveryNow)
	require.Equal(t, 0, ctx.WeeklyIntensityScore)
	require.Nil(t, ctx.DaysSinceLastHard)
	require.False(t, ctx.NeedsRecovery)

	ctx = Recovery([]Activity{activity(6, IntensityHard)}, recoveryNow)
	require.Equal(t, 3, ctx.WeeklyIntensityScore)
	require.NotNil(t, ctx.DaysSinceLastHard)
	require.Equal(t, 6, *ctx.DaysSinceLastHard)
}

func TestRecoveryDaysSinceLastHard(t *testing.T) {
	acts := []Activity{
		activity(5, IntensityHard),
		activity(3, IntensityHard),
	}
	ctx := Recovery(acts, recoveryNow)
	require.NotNil(t, ctx.DaysSinceLastHard)
	require.Equal(t, 3, *ctx.DaysSinceLastHard)
	require.False(t, ctx.NeedsRecovery)
}
