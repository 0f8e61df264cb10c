package traininglog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists training-log rows for a user.
type Repository interface {
	CreateSession(ctx context.Context, session WorkoutSession) error
	GetSession(ctx context.Context, id uuid.UUID, userID int64) (WorkoutSession, bool, error)
	CompleteSession(ctx context.Context, id uuid.UUID, userID int64, completedAt time.Time) (WorkoutSession, bool, error)
	ListSessions(ctx context.Context, userID int64, r Range) ([]WorkoutSession, error)

	CreateActivity(ctx context.Context, activity ActivityLog) error
	ListActivities(ctx context.Context, userID int64, r Range) ([]ActivityLog, error)

	CreateMeal(ctx context.Context, meal MealLog) error
	ListMeals(ctx context.Context, userID int64, r Range) ([]MealLog, error)

	CreateMeasurement(ctx context.Context, m BodyMeasurement) error
	GetMeasurement(ctx context.Context, id uuid.UUID, userID int64) (BodyMeasurement, bool, error)
	SetMeasurementPhoto(ctx context.Context, id uuid.UUID, userID int64, photoKey string) error
	ListMeasurements(ctx context.Context, userID int64, r Range) ([]BodyMeasurement, error)
}
