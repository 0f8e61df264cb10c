package traininglog

import (
	"time"

	"github.com/google/uuid"

	"github.com/lunarfit/coach-api/internal/domain/analytics"
)

// WorkoutSession is a tracked training session. CompletedAt stays nil
// until the session is explicitly completed.
type WorkoutSession struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ActivityLog records a single activity with its perceived intensity.
type ActivityLog struct {
	ID              uuid.UUID               `json:"id"`
	UserID          int64                   `json:"userId"`
	Date            time.Time               `json:"date"`
	Type            analytics.ActivityType  `json:"type"`
	Intensity       analytics.Intensity     `json:"intensity"`
	DurationMinutes *int                    `json:"durationMinutes,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// MealLog is one logged meal. Macro fields are optional.
type MealLog struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	Protein   *float64  `json:"protein,omitempty"`
	Carbs     *float64  `json:"carbs,omitempty"`
	Fats      *float64  `json:"fats,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BodyMeasurement is a weigh-in, optionally with an attached progress photo.
type BodyMeasurement struct {
	ID         uuid.UUID `json:"id"`
	UserID     int64     `json:"userId"`
	MeasuredAt time.Time `json:"measuredAt"`
	Weight     float64   `json:"weight"`
	PhotoKey   *string   `json:"photoKey,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type StartSessionRequest struct {
	Title     string    `json:"title"`
	StartedAt time.Time `json:"startedAt"`
}

type LogActivityRequest struct {
	Date            time.Time `json:"date"`
	Type            string    `json:"type"`
	Intensity       string    `json:"intensity"`
	DurationMinutes *int      `json:"durationMinutes,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

type LogMealRequest struct {
	Date     time.Time `json:"date"`
	Name     string    `json:"name"`
	Calories int       `json:"calories"`
	Protein  *float64  `json:"protein,omitempty"`
	Carbs    *float64  `json:"carbs,omitempty"`
	Fats     *float64  `json:"fats,omitempty"`
}

type LogMeasurementRequest struct {
	MeasuredAt time.Time `json:"measuredAt"`
	Weight     float64   `json:"weight"`
}

// Range bounds list queries, inclusive of From and exclusive of To.
type Range struct {
	From time.Time
	To   time.Time
}

type Config struct {
	DefaultCalorieTarget int
	TrendWindowDays      int
	StreakLookbackDays   int
}
