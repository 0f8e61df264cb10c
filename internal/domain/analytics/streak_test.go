package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

func completedOn(day time.Time) Session {
	start := day.Add(7 * time.Hour)
	done := start.Add(45 * time.Minute)
	return Session{StartedAt: start, CompletedAt: &done}
}

func TestCalculateStreakEmpty(t *testing.T) {
	result := CalculateStreak(nil, testToday)
	require.Equal(t, 0, result.CurrentStreak)
	require.Equal(t, 0, result.LongestStreak)
	require.Nil(t, result.LastActiveDate)
}

func TestCalculateStreakIgnoresIncompleteSessions(t *testing.T) {
	sessions := []Session{
		{StartedAt: testToday.Add(8 * time.Hour)},
		{StartedAt: testToday.AddDate(0, 0, -1).Add(8 * time.Hour)},
	}
	result := CalculateStreak(sessions, testToday)
	require.Equal(t, 0, result.CurrentStreak)
	require.Nil(t, result.LastActiveDate)
}

func TestCalculateStreakThreeConsecutiveDays(t *testing.T) {
	sessions := []Session{
		completedOn(testToday),
		completedOn(testToday.AddDate(0, 0, -1)),
		completedOn(testToday.AddDate(0, 0, -2)),
	}
	result := CalculateStreak(sessions, testToday)
	require.Equal(t, 3, result.CurrentStreak)
	require.Equal(t, 3, result.LongestStreak)
	require.NotNil(t, result.LastActiveDate)
	require.Equal(t, dateOf(testToday), *result.LastActiveDate)
}

func TestCalculateStreakGapResetsCurrent(t *testing.T) {
	sessions := []Session{
		completedOn(testToday),
		completedOn(testToday.AddDate(0, 0, -2)),
	}
	result := CalculateStreak(sessions, testToday)
	require.Equal(t, 1, result.CurrentStreak)
	require.Equal(t, 1, result.LongestStreak)
}

func TestCalculateStreakYesterdayKeepsStreakAlive(t *testing.T) {
	sessions := []Session{
		completedOn(testToday.AddDate(0, 0, -1)),
		completedOn(testToday.AddDate(0, 0, -2)),
	}
	result := CalculateStreak(sessions, testToday)
	require.Equal(t, 2, result.CurrentStreak)
}

func TestCalculateStreakStaleHistoryZeroesCurrent(t *testing.T) {
	sessions := []Session{
		completedOn(testToday.AddDate(0, 0, -5)),
		completedOn(testToday.AddDate(0, 0, -6)),
		completedOn(testToday.AddDate(0, 0, -7)),
	}
	result := CalculateStreak(sessions, testToday)
	require.Equal(t, 0, result.CurrentStreak)
	require.Equal(t, 3, result.LongestStreak)
}

func TestCalculateStreakLongestFromPastRun(t *testing.T) {
	sessions := []Session{
		completedOn(testToday),
		// 4-day run two weeks back.
		completedOn(testToday.AddDate(0, 0, -10)),
		completedOn(testToday.AddDate(0, 0, -11)),
		completedOn(testToday.AddDate(0, 0, -12)),
		completedOn(testToday.AddDate(0, 0, -13)),
	}
	result := CalculateStreak(sessions, testToday)
	require.Equal(t, 1, result.CurrentStreak)
	require.Equal(t, 4, result.LongestStreak)
}

func TestCalculateStreakDeduplicatesSameDay(t *testing.T) {
	sessions := []Session{
		completedOn(testToday),
		completedOn(testToday), // second workout that day
		completedOn(testToday.AddDate(0, 0, -1)),
	}
	result := CalculateStreak(sessions, testToday)
	require.Equal(t, 2, result.CurrentStreak)
	require.Equal(t, 2, result.LongestStreak)
}

func TestCalculateStreakLongestNeverBelowCurrent(t *testing.T) {
	cases := [][]Session{
		nil,
		{completedOn(testToday)},
		{completedOn(testToday), completedOn(testToday.AddDate(0, 0, -1))},
		{completedOn(testToday.AddDate(0, 0, -3)), completedOn(testToday)},
		{completedOn(testToday.AddDate(0, 0, -1)), completedOn(testToday.AddDate(0, 0, -9))},
	}
	for _, sessions := range cases {
		result := CalculateStreak(sessions, testToday)
		require.GreaterOrEqual(t, result.LongestStreak, result.CurrentStreak)
	}
}

func TestCalculateStreakIdempotent(t *testing.T) {
	sessions := []Session{
		completedOn(testToday),
		completedOn(testToday.AddDate(0, 0, -1)),
		completedOn(testToday.AddDate(0, 0, -4)),
	}
	first := CalculateStreak(sessions, testToday)
	second := CalculateStreak(sessions, testToday)
	require.Equal(t, first, second)
}
