package analytics

import (
	"math"
	"time"
)

// toleranceBand is the symmetric fraction around the caloric target inside
// which a day counts as on track. Boundary values are on track.
const toleranceBand = 0.1

// DailySummary aggregates all entries logged on the given calendar day and
// classifies the total against targetCalories. The target must already be
// resolved by the caller; this function never substitutes a default.
func DailySummary(entries []NutritionEntry, date time.Time, targetCalories int) DailyNutritionSummary {
	day := dateOf(date)
	summary := DailyNutritionSummary{Date: day}
	for _, e := range entries {
		if !sameDay(e.Date, day) {
			continue
		}
		summary.TotalCalories += e.Calories
		summary.TotalProtein += deref(e.Protein)
		summary.TotalCarbs += deref(e.Carbs)
		summary.TotalFats += deref(e.Fats)
		summary.MealCount++
	}
	summary.TargetStatus = classify(summary.TotalCalories, targetCalories)
	return summary
}

// WeeklyAdherenceRate classifies each logged day in the 7-day window starting
// at weekStart. Days without any entry are absent from the grouping: they do
// not count as zero-calorie days, and AdherencePct is 0 when nothing was
// logged at all.
func WeeklyAdherenceRate(entries []NutritionEntry, weekStart time.Time, targetCalories int) WeeklyAdherence {
	start := dateOf(weekStart)
	end := start.AddDate(0, 0, 7)

	type dayTotals struct {
		calories int
		protein  float64
	}
	byDay := make(map[string]*dayTotals)
	for _, e := range entries {
		day := dateOf(e.Date)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		key := dayKey(day)
		totals, ok := byDay[key]
		if !ok {
			totals = &dayTotals{}
			byDay[key] = totals
		}
		totals.calories += e.Calories
		totals.protein += deref(e.Protein)
	}

	var out WeeklyAdherence
	var sumCalories int
	var sumProtein float64
	for _, totals := range byDay {
		switch classify(totals.calories, targetCalories) {
		case StatusUnder:
			out.DaysUnder++
		case StatusOver:
			out.DaysOver++
		default:
			out.DaysOnTrack++
		}
		sumCalories += totals.calories
		sumProtein += totals.protein
	}
	out.TotalDays = len(byDay)
	if out.TotalDays > 0 {
		out.AdherencePct = int(math.Round(100 * float64(out.DaysOnTrack) / float64(out.TotalDays)))
		out.AvgCalories = int(math.Round(float64(sumCalories) / float64(out.TotalDays)))
		out.AvgProtein = int(math.Round(sumProtein / float64(out.TotalDays)))
	}
	return out
}

func classify(totalCalories, target int) TargetStatus {
	lower := float64(target) * (1 - toleranceBand)
	upper := float64(target) * (1 + toleranceBand)
	switch {
	case float64(totalCalories) < lower:
		return StatusUnder
	case float64(totalCalories) > upper:
		return StatusOver
	default:
		return StatusOnTrack
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
