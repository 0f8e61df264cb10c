package logrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunarfit/coach-api/internal/domain/analytics"
	"github.com/lunarfit/coach-api/internal/domain/traininglog"
)

// PostgresRepository persists training-log rows in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session traininglog.WorkoutSession) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO workout_sessions (id, user_id, title, started_at, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, session.ID, session.UserID, session.Title, session.StartedAt, session.CompletedAt, session.CreatedAt)
	return err
}

func (r *PostgresRepository) GetSession(ctx context.Context, id uuid.UUID, userID int64) (traininglog.WorkoutSession, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, started_at, completed_at, created_at
		FROM workout_sessions
		WHERE id = $1 AND user_id = $2
		LIMIT 1
	`, id, userID)
	if err != nil {
		return traininglog.WorkoutSession{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return traininglog.WorkoutSession{}, false, rows.Err()
	}
	session, err := scanSession(rows)
	if err != nil {
		return traininglog.WorkoutSession{}, false, err
	}
	return session, true, rows.Err()
}

func (r *PostgresRepository) CompleteSession(ctx context.Context, id uuid.UUID, userID int64, completedAt time.Time) (traininglog.WorkoutSession, bool, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE workout_sessions
		SET completed_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, started_at, completed_at, created_at
	`, id, userID, completedAt)
	if err != nil {
		return traininglog.WorkoutSession{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return traininglog.WorkoutSession{}, false, rows.Err()
	}
	session, err := scanSession(rows)
	if err != nil {
		return traininglog.WorkoutSession{}, false, err
	}
	return session, true, rows.Err()
}

func (r *PostgresRepository) ListSessions(ctx context.Context, userID int64, rg traininglog.Range) ([]traininglog.WorkoutSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, started_at, completed_at, created_at
		FROM workout_sessions
		WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		ORDER BY started_at
	`, userID, rg.From, rg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, scanSession)
}

func (r *PostgresRepository) CreateActivity(ctx context.Context, activity traininglog.ActivityLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_logs (id, user_id, activity_date, activity_type, intensity, duration_minutes, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, activity.ID, activity.UserID, activity.Date, string(activity.Type), string(activity.Intensity), activity.DurationMinutes, activity.Notes, activity.CreatedAt)
	return err
}

func (r *PostgresRepository) ListActivities(ctx context.Context, userID int64, rg traininglog.Range) ([]traininglog.ActivityLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, activity_date, activity_type, intensity, duration_minutes, notes, created_at
		FROM activity_logs
		WHERE user_id = $1 AND activity_date >= $2 AND activity_date < $3
		ORDER BY activity_date
	`, userID, rg.From, rg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, scanActivity)
}

func (r *PostgresRepository) CreateMeal(ctx context.Context, meal traininglog.MealLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO meal_logs (id, user_id, meal_date, name, calories, protein, carbs, fats, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, meal.ID, meal.UserID, meal.Date, meal.Name, meal.Calories, meal.Protein, meal.Carbs, meal.Fats, meal.CreatedAt)
	return err
}

func (r *PostgresRepository) ListMeals(ctx context.Context, userID int64, rg traininglog.Range) ([]traininglog.MealLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, meal_date, name, calories, protein, carbs, fats, created_at
		FROM meal_logs
		WHERE user_id = $1 AND meal_date >= $2 AND meal_date < $3
		ORDER BY meal_date
	`, userID, rg.From, rg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, scanMeal)
}

func (r *PostgresRepository) CreateMeasurement(ctx context.Context, m traininglog.BodyMeasurement) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO body_measurements (id, user_id, measured_at, weight, photo_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.UserID, m.MeasuredAt, m.Weight, m.PhotoKey, m.CreatedAt)
	return err
}

func (r *PostgresRepository) GetMeasurement(ctx context.Context, id uuid.UUID, userID int64) (traininglog.BodyMeasurement, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, measured_at, weight, photo_key, created_at
		FROM body_measurements
		WHERE id = $1 AND user_id = $2
		LIMIT 1
	`, id, userID)
	if err != nil {
		return traininglog.BodyMeasurement{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return traininglog.BodyMeasurement{}, false, rows.Err()
	}
	m, err := scanMeasurement(rows)
	if err != nil {
		return traininglog.BodyMeasurement{}, false, err
	}
	return m, true, rows.Err()
}

func (r *PostgresRepository) SetMeasurementPhoto(ctx context.Context, id uuid.UUID, userID int64, photoKey string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE body_measurements
		SET photo_key = $3
		WHERE id = $1 AND user_id = $2
	`, id, userID, photoKey)
	return err
}

func (r *PostgresRepository) ListMeasurements(ctx context.Context, userID int64, rg traininglog.Range) ([]traininglog.BodyMeasurement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, measured_at, weight, photo_key, created_at
		FROM body_measurements
		WHERE user_id = $1 AND measured_at >= $2 AND measured_at < $3
		ORDER BY measured_at
	`, userID, rg.From, rg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows, scanMeasurement)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanSession(row rowScanner) (traininglog.WorkoutSession, error) {
	var session traininglog.WorkoutSession
	if err := row.Scan(&session.ID, &session.UserID, &session.Title, &session.StartedAt, &session.CompletedAt, &session.CreatedAt); err != nil {
		return traininglog.WorkoutSession{}, err
	}
	return session, nil
}

func scanActivity(row rowScanner) (traininglog.ActivityLog, error) {
	var activity traininglog.ActivityLog
	var activityType, intensity string
	if err := row.Scan(&activity.ID, &activity.UserID, &activity.Date, &activityType, &intensity, &activity.DurationMinutes, &activity.Notes, &activity.CreatedAt); err != nil {
		return traininglog.ActivityLog{}, err
	}
	activity.Type = analytics.ActivityType(activityType)
	activity.Intensity = analytics.Intensity(intensity)
	return activity, nil
}

func scanMeal(row rowScanner) (traininglog.MealLog, error) {
	var meal traininglog.MealLog
	if err := row.Scan(&meal.ID, &meal.UserID, &meal.Date, &meal.Name, &meal.Calories, &meal.Protein, &meal.Carbs, &meal.Fats, &meal.CreatedAt); err != nil {
		return traininglog.MealLog{}, err
	}
	return meal, nil
}

func scanMeasurement(row rowScanner) (traininglog.BodyMeasurement, error) {
	var m traininglog.BodyMeasurement
	if err := row.Scan(&m.ID, &m.UserID, &m.MeasuredAt, &m.Weight, &m.PhotoKey, &m.CreatedAt); err != nil {
		return traininglog.BodyMeasurement{}, err
	}
	return m, nil
}

var _ traininglog.Repository = (*PostgresRepository)(nil)
