package analytics

import (
	"fmt"
	"math"
)

// maintainBand is the weekly rate (in weight units) below which a change
// counts as maintaining.
const maintainBand = 0.1

// ComputeWeightTrend fits a straight line through the first and last
// measurement of the window and scales the slope to a weekly rate.
// Measurements must be sorted ascending by MeasuredAt and pre-filtered to the
// window. Intermediate fluctuation is ignored on purpose; this is a two-point
// approximation, not a regression.
func ComputeWeightTrend(measurements []Measurement, windowDays int) WeightTrend {
	if len(measurements) < 2 || windowDays <= 0 {
		return WeightTrend{Label: "insufficient data to determine a trend"}
	}

	first := measurements[0].Weight
	last := measurements[len(measurements)-1].Weight
	weeklyRate := (last - first) / float64(windowDays) * 7

	var label string
	switch {
	case weeklyRate < -maintainBand:
		label = fmt.Sprintf("losing %.1f lbs per week", math.Abs(weeklyRate))
	case weeklyRate > maintainBand:
		label = fmt.Sprintf("gaining %.1f lbs per week", weeklyRate)
	default:
		label = fmt.Sprintf("maintaining weight (%.1f lbs per week)", weeklyRate)
	}

	return WeightTrend{WeeklyRateOfChange: weeklyRate, Label: label}
}
