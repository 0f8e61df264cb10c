package analytics

import (
	"sort"
	"time"
)

// CalculateStreak derives the current and longest consecutive-day completion
// streaks from a set of workout sessions. The caller supplies today so the
// function stays deterministic; sessions may arrive in any order.
//
// The current streak survives a missing log for today itself: if the most
// recent completed day is yesterday the streak still counts, giving the user
// until end of day to extend it. The longest-streak walk grants no such grace.
func CalculateStreak(sessions []Session, today time.Time) StreakResult {
	days := completedDays(sessions)
	if len(days) == 0 {
		return StreakResult{}
	}

	// Newest first.
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	last := days[0]
	current := 0
	if sameDay(last, today) || sameDay(last, today.AddDate(0, 0, -1)) {
		current = 1
		for i := 1; i < len(days); i++ {
			if sameDay(days[i], days[i-1].AddDate(0, 0, -1)) {
				current++
			} else {
				break
			}
		}
	}

	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		if sameDay(days[i], days[i-1].AddDate(0, 0, -1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	if current > longest {
		longest = current
	}

	return StreakResult{
		CurrentStreak:  current,
		LongestStreak:  longest,
		LastActiveDate: &last,
	}
}

// completedDays reduces completed sessions to a deduplicated set of days.
func completedDays(sessions []Session) []time.Time {
	seen := make(map[string]time.Time)
	for _, s := range sessions {
		if s.CompletedAt == nil {
			continue
		}
		day := dateOf(s.StartedAt)
		seen[dayKey(day)] = day
	}
	days := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		days = append(days, day)
	}
	return days
}

func sameDay(a, b time.Time) bool {
	return dayKey(dateOf(a)) == dayKey(dateOf(b))
}
