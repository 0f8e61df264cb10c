package analytics

import "time"

// Intensity weights for the weekly load score.
var intensityScore = map[Intensity]int{
	IntensityLight:    1,
	IntensityModerate: 2,
	IntensityHard:     3,
}

// recoveryScoreThreshold is the weekly load above which (strictly) the
// fatigue flag trips regardless of when the last hard session was.
const recoveryScoreThreshold = 15

// Recovery scores the trailing 7-day activity window ending at now.
// A same-day hard session and a cumulative score above the threshold are
// independent fatigue triggers; the same-day message wins when both hold.
func Recovery(activities []Activity, now time.Time) RecoveryContext {
	// 7 calendar days including today.
	windowStart := dateOf(now).AddDate(0, 0, -6)

	score := 0
	var lastHard *time.Time
	for _, a := range activities {
		day := dateOf(a.Date)
		if day.Before(windowStart) || day.After(dateOf(now)) {
			continue
		}
		score += intensityScore[a.Intensity]
		if a.Intensity == IntensityHard && (lastHard == nil || day.After(*lastHard)) {
			d := day
			lastHard = &d
		}
	}

	ctx := RecoveryContext{WeeklyIntensityScore: score}
	if lastHard != nil {
		days := int(now.Sub(*lastHard).Hours() / 24)
		if days < 0 {
			days = 0
		}
		ctx.DaysSinceLastHard = &days
	}

	sameDayHard := ctx.DaysSinceLastHard != nil && *ctx.DaysSinceLastHard < 1
	heavyWeek := score > recoveryScoreThreshold
	ctx.NeedsRecovery = sameDayHard || heavyWeek

	switch {
	case sameDayHard:
		ctx.Recommendation = "You trained hard today. Prioritize sleep and keep tomorrow light."
	case heavyWeek:
		ctx.Recommendation = "Training load has stacked up this week. Schedule an easy day before your next hard session."
	default:
		ctx.Recommendation = "Recovery looks good. You're cleared for a normal training day."
	}
	return ctx
}
