package logrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lunarfit/coach-api/internal/domain/traininglog"
)

// MemoryRepository provides an in-memory training log for tests/dev.
type MemoryRepository struct {
	mu           sync.RWMutex
	sessions     []traininglog.WorkoutSession
	activities   []traininglog.ActivityLog
	meals        []traininglog.MealLog
	measurements []traininglog.BodyMeasurement
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) CreateSession(_ context.Context, session traininglog.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, session)
	return nil
}

func (r *MemoryRepository) GetSession(_ context.Context, id uuid.UUID, userID int64) (traininglog.WorkoutSession, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, session := range r.sessions {
		if session.ID == id && session.UserID == userID {
			return session, true, nil
		}
	}
	return traininglog.WorkoutSession{}, false, nil
}

func (r *MemoryRepository) CompleteSession(_ context.Context, id uuid.UUID, userID int64, completedAt time.Time) (traininglog.WorkoutSession, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, session := range r.sessions {
		if session.ID == id && session.UserID == userID {
			r.sessions[i].CompletedAt = &completedAt
			return r.sessions[i], true, nil
		}
	}
	return traininglog.WorkoutSession{}, false, nil
}

func (r *MemoryRepository) ListSessions(_ context.Context, userID int64, rg traininglog.Range) ([]traininglog.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []traininglog.WorkoutSession
	for _, session := range r.sessions {
		if session.UserID == userID && inRange(session.StartedAt, rg) {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateActivity(_ context.Context, activity traininglog.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = append(r.activities, activity)
	return nil
}

func (r *MemoryRepository) ListActivities(_ context.Context, userID int64, rg traininglog.Range) ([]traininglog.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []traininglog.ActivityLog
	for _, activity := range r.activities {
		if activity.UserID == userID && inRange(activity.Date, rg) {
			out = append(out, activity)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateMeal(_ context.Context, meal traininglog.MealLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meals = append(r.meals, meal)
	return nil
}

func (r *MemoryRepository) ListMeals(_ context.Context, userID int64, rg traininglog.Range) ([]traininglog.MealLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []traininglog.MealLog
	for _, meal := range r.meals {
		if meal.UserID == userID && inRange(meal.Date, rg) {
			out = append(out, meal)
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateMeasurement(_ context.Context, m traininglog.BodyMeasurement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measurements = append(r.measurements, m)
	return nil
}

func (r *MemoryRepository) GetMeasurement(_ context.Context, id uuid.UUID, userID int64) (traininglog.BodyMeasurement, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.measurements {
		if m.ID == id && m.UserID == userID {
			return m, true, nil
		}
	}
	return traininglog.BodyMeasurement{}, false, nil
}

func (r *MemoryRepository) SetMeasurementPhoto(_ context.Context, id uuid.UUID, userID int64, photoKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.measurements {
		if m.ID == id && m.UserID == userID {
			key := photoKey
			r.measurements[i].PhotoKey = &key
			return nil
		}
	}
	return nil
}

func (r *MemoryRepository) ListMeasurements(_ context.Context, userID int64, rg traininglog.Range) ([]traininglog.BodyMeasurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []traininglog.BodyMeasurement
	for _, m := range r.measurements {
		if m.UserID == userID && inRange(m.MeasuredAt, rg) {
			out = append(out, m)
		}
	}
	return out, nil
}

func inRange(t time.Time, rg traininglog.Range) bool {
	if !rg.From.IsZero() && t.Before(rg.From) {
		return false
	}
	if !rg.To.IsZero() && !t.Before(rg.To) {
		return false
	}
	return true
}

var _ traininglog.Repository = (*MemoryRepository)(nil)
