package analytics

import "time"

// ActivityType classifies a logged side activity.
type ActivityType string

const (
	ActivityBJJ      ActivityType = "bjj"
	ActivitySoftball ActivityType = "softball"
	ActivityOther    ActivityType = "other"
)

// Intensity is the perceived effort of an activity.
type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityHard     Intensity = "hard"
)

// TargetStatus classifies a day's calories against the caloric target.
type TargetStatus string

const (
	StatusUnder   TargetStatus = "under"
	StatusOnTrack TargetStatus = "on_track"
	StatusOver    TargetStatus = "over"
)

// Session is a single workout attempt. Only sessions with a non-nil
// CompletedAt count toward streaks.
type Session struct {
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Activity is a non-workout physical effort logged for recovery tracking.
// Date carries calendar-day granularity; time-of-day is ignored.
type Activity struct {
	Date            time.Time
	Type            ActivityType
	Intensity       Intensity
	DurationMinutes *int
}

// NutritionEntry is one logged meal. Macro pointers are nil when the user
// did not record them; sums treat nil as zero.
type NutritionEntry struct {
	Date     time.Time
	Calories int
	Protein  *float64
	Carbs    *float64
	Fats     *float64
}

// Measurement is a body-weight reading.
type Measurement struct {
	MeasuredAt time.Time
	Weight     float64
}

// StreakResult reports consecutive-day workout completion.
// LongestStreak is always >= CurrentStreak.
type StreakResult struct {
	CurrentStreak  int        `json:"currentStreak"`
	LongestStreak  int        `json:"longestStreak"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
}

// DailyNutritionSummary aggregates one calendar day of meals.
type DailyNutritionSummary struct {
	Date          time.Time    `json:"date"`
	TotalCalories int          `json:"totalCalories"`
	TotalProtein  float64      `json:"totalProtein"`
	TotalCarbs    float64      `json:"totalCarbs"`
	TotalFats     float64      `json:"totalFats"`
	MealCount     int          `json:"mealCount"`
	TargetStatus  TargetStatus `json:"targetStatus"`
}

// WeeklyAdherence summarizes a 7-day nutrition window.
type WeeklyAdherence struct {
	DaysOnTrack  int `json:"daysOnTrack"`
	DaysUnder    int `json:"daysUnder"`
	DaysOver     int `json:"daysOver"`
	TotalDays    int `json:"totalDays"`
	AdherencePct int `json:"adherencePct"`
	AvgCalories  int `json:"avgCalories"`
	AvgProtein   int `json:"avgProtein"`
}

// RecoveryContext flags accumulated training load over a trailing week.
type RecoveryContext struct {
	DaysSinceLastHard    *int   `json:"daysSinceLastHard"`
	WeeklyIntensityScore int    `json:"weeklyIntensityScore"`
	NeedsRecovery        bool   `json:"needsRecovery"`
	Recommendation       string `json:"recommendation"`
}

// WeightTrend describes the linear weekly rate of weight change.
type WeightTrend struct {
	WeeklyRateOfChange float64 `json:"weeklyRateOfChange"`
	Label              string  `json:"label"`
}

// dateOf reduces a timestamp to its calendar day, keeping the location the
// caller normalized it into.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayKey formats a timestamp as a grouping key.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
