package traininglog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lunarfit/coach-api/internal/domain/analytics"
	apperrors "github.com/lunarfit/coach-api/pkg/errors"
	"github.com/lunarfit/coach-api/pkg/util"
)

// Service owns the training log: workout sessions, activities, meals and
// body measurements, plus derived metrics computed on top of them.
type Service interface {
	StartSession(ctx context.Context, userID int64, req StartSessionRequest) (WorkoutSession, error)
	CompleteSession(ctx context.Context, userID int64, id uuid.UUID) (WorkoutSession, error)
	ListSessions(ctx context.Context, userID int64, r Range) ([]WorkoutSession, error)

	LogActivity(ctx context.Context, userID int64, req LogActivityRequest) (ActivityLog, error)
	ListActivities(ctx context.Context, userID int64, r Range) ([]ActivityLog, error)

	LogMeal(ctx context.Context, userID int64, req LogMealRequest) (MealLog, error)
	ListMeals(ctx context.Context, userID int64, r Range) ([]MealLog, error)

	LogMeasurement(ctx context.Context, userID int64, req LogMeasurementRequest) (BodyMeasurement, error)
	ListMeasurements(ctx context.Context, userID int64, r Range) ([]BodyMeasurement, error)
	AttachProgressPhoto(ctx context.Context, userID int64, measurementID uuid.UUID, data []byte, mimeType string) (BodyMeasurement, error)
	ProgressPhoto(ctx context.Context, userID int64, measurementID uuid.UUID) (io.ReadCloser, string, error)

	Streak(ctx context.Context, userID int64) (analytics.StreakResult, error)
	DailyNutrition(ctx context.Context, userID int64, day time.Time) (analytics.DailyNutritionSummary, error)
	WeeklyNutrition(ctx context.Context, userID int64, weekStart time.Time) (analytics.WeeklyAdherence, error)
	Recovery(ctx context.Context, userID int64) (analytics.RecoveryContext, error)
	WeightTrend(ctx context.Context, userID int64) (analytics.WeightTrend, error)
}

// CalorieTargets resolves a user's configured daily calorie target.
// The bool reports whether the user has one set.
type CalorieTargets interface {
	TargetFor(ctx context.Context, userID int64) (int, bool, error)
}

// ObjectStorage stores progress photos.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	cfg     Config
	repo    Repository
	targets CalorieTargets
	photos  ObjectStorage
	logger  *slog.Logger
	now     func() time.Time
}

var _ Service = (*service)(nil)

func NewService(cfg Config, repo Repository, targets CalorieTargets, photos ObjectStorage, logger *slog.Logger) *service {
	if cfg.DefaultCalorieTarget <= 0 {
		cfg.DefaultCalorieTarget = 2000
	}
	if cfg.TrendWindowDays <= 0 {
		cfg.TrendWindowDays = 30
	}
	if cfg.StreakLookbackDays <= 0 {
		cfg.StreakLookbackDays = 365
	}
	return &service{
		cfg:     cfg,
		repo:    repo,
		targets: targets,
		photos:  photos,
		logger:  logger.With("component", "traininglog.service"),
		now:     util.NowUTC,
	}
}

func (s *service) StartSession(ctx context.Context, userID int64, req StartSessionRequest) (WorkoutSession, error) {
	startedAt := req.StartedAt
	if startedAt.IsZero() {
		startedAt = s.now()
	}
	if err := s.rejectFutureDate(startedAt); err != nil {
		return WorkoutSession{}, err
	}
	session := WorkoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     req.Title,
		StartedAt: startedAt,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return WorkoutSession{}, apperrors.Wrap("storage_error", "create session", err)
	}
	s.logger.Info("session started", "userId", userID, "sessionId", session.ID)
	return session, nil
}

func (s *service) CompleteSession(ctx context.Context, userID int64, id uuid.UUID) (WorkoutSession, error) {
	session, ok, err := s.repo.CompleteSession(ctx, id, userID, s.now())
	if err != nil {
		return WorkoutSession{}, apperrors.Wrap("storage_error", "complete session", err)
	}
	if !ok {
		return WorkoutSession{}, apperrors.Wrap("not_found", "session not found", nil)
	}
	return session, nil
}

func (s *service) ListSessions(ctx context.Context, userID int64, r Range) ([]WorkoutSession, error) {
	sessions, err := s.repo.ListSessions(ctx, userID, r)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "list sessions", err)
	}
	return sessions, nil
}

func (s *service) LogActivity(ctx context.Context, userID int64, req LogActivityRequest) (ActivityLog, error) {
	activityType, err := validateActivityType(req.Type)
	if err != nil {
		return ActivityLog{}, err
	}
	intensity, err := validateIntensity(req.Intensity)
	if err != nil {
		return ActivityLog{}, err
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 0 {
		return ActivityLog{}, apperrors.Wrap("invalid_input", "duration must not be negative", nil)
	}
	if err := s.rejectFutureDate(req.Date); err != nil {
		return ActivityLog{}, err
	}
	activity := ActivityLog{
		ID:              uuid.New(),
		UserID:          userID,
		Date:            req.Date,
		Type:            activityType,
		Intensity:       intensity,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		CreatedAt:       s.now(),
	}
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return ActivityLog{}, apperrors.Wrap("storage_error", "create activity", err)
	}
	return activity, nil
}

func (s *service) ListActivities(ctx context.Context, userID int64, r Range) ([]ActivityLog, error) {
	activities, err := s.repo.ListActivities(ctx, userID, r)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "list activities", err)
	}
	return activities, nil
}

func (s *service) LogMeal(ctx context.Context, userID int64, req LogMealRequest) (MealLog, error) {
	if req.Calories < 0 {
		return MealLog{}, apperrors.Wrap("invalid_input", "calories must not be negative", nil)
	}
	for _, macro := range []*float64{req.Protein, req.Carbs, req.Fats} {
		if macro != nil && (*macro < 0 || math.IsNaN(*macro) || math.IsInf(*macro, 0)) {
			return MealLog{}, apperrors.Wrap("invalid_input", "macro values must be finite and not negative", nil)
		}
	}
	if err := s.rejectFutureDate(req.Date); err != nil {
		return MealLog{}, err
	}
	meal := MealLog{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      req.Date,
		Name:      req.Name,
		Calories:  req.Calories,
		Protein:   req.Protein,
		Carbs:     req.Carbs,
		Fats:      req.Fats,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateMeal(ctx, meal); err != nil {
		return MealLog{}, apperrors.Wrap("storage_error", "create meal", err)
	}
	return meal, nil
}

func (s *service) ListMeals(ctx context.Context, userID int64, r Range) ([]MealLog, error) {
	meals, err := s.repo.ListMeals(ctx, userID, r)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "list meals", err)
	}
	return meals, nil
}

func (s *service) LogMeasurement(ctx context.Context, userID int64, req LogMeasurementRequest) (BodyMeasurement, error) {
	if req.Weight <= 0 || math.IsNaN(req.Weight) || math.IsInf(req.Weight, 0) {
		return BodyMeasurement{}, apperrors.Wrap("invalid_input", "weight must be a positive finite number", nil)
	}
	if err := s.rejectFutureDate(req.MeasuredAt); err != nil {
		return BodyMeasurement{}, err
	}
	m := BodyMeasurement{
		ID:         uuid.New(),
		UserID:     userID,
		MeasuredAt: req.MeasuredAt,
		Weight:     req.Weight,
		CreatedAt:  s.now(),
	}
	if err := s.repo.CreateMeasurement(ctx, m); err != nil {
		return BodyMeasurement{}, apperrors.Wrap("storage_error", "create measurement", err)
	}
	return m, nil
}

func (s *service) ListMeasurements(ctx context.Context, userID int64, r Range) ([]BodyMeasurement, error) {
	measurements, err := s.repo.ListMeasurements(ctx, userID, r)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "list measurements", err)
	}
	return measurements, nil
}

func (s *service) AttachProgressPhoto(ctx context.Context, userID int64, measurementID uuid.UUID, data []byte, mimeType string) (BodyMeasurement, error) {
	if len(data) == 0 {
		return BodyMeasurement{}, apperrors.Wrap("invalid_input", "photo is empty", nil)
	}
	m, ok, err := s.repo.GetMeasurement(ctx, measurementID, userID)
	if err != nil {
		return BodyMeasurement{}, apperrors.Wrap("storage_error", "get measurement", err)
	}
	if !ok {
		return BodyMeasurement{}, apperrors.Wrap("not_found", "measurement not found", nil)
	}
	key := fmt.Sprintf("progress/%d/%s", userID, measurementID)
	if err := s.photos.Put(ctx, key, data, mimeType); err != nil {
		return BodyMeasurement{}, apperrors.Wrap("storage_error", "store photo", err)
	}
	if err := s.repo.SetMeasurementPhoto(ctx, measurementID, userID, key); err != nil {
		return BodyMeasurement{}, apperrors.Wrap("storage_error", "set photo key", err)
	}
	m.PhotoKey = &key
	return m, nil
}

func (s *service) ProgressPhoto(ctx context.Context, userID int64, measurementID uuid.UUID) (io.ReadCloser, string, error) {
	m, ok, err := s.repo.GetMeasurement(ctx, measurementID, userID)
	if err != nil {
		return nil, "", apperrors.Wrap("storage_error", "get measurement", err)
	}
	if !ok || m.PhotoKey == nil {
		return nil, "", apperrors.Wrap("not_found", "progress photo not found", nil)
	}
	reader, mimeType, err := s.photos.Get(ctx, *m.PhotoKey)
	if err != nil {
		return nil, "", apperrors.Wrap("storage_error", "read photo", err)
	}
	return reader, mimeType, nil
}

// Streak derives the daily streaks from sessions inside the configured
// lookback. Runs that ended before the lookback do not count toward
// LongestStreak.
func (s *service) Streak(ctx context.Context, userID int64) (analytics.StreakResult, error) {
	now := s.now()
	sessions, err := s.repo.ListSessions(ctx, userID, dayRange(now, -s.cfg.StreakLookbackDays, 1))
	if err != nil {
		return analytics.StreakResult{}, apperrors.Wrap("storage_error", "list sessions", err)
	}
	records := make([]analytics.Session, 0, len(sessions))
	for _, session := range sessions {
		records = append(records, analytics.Session{
			StartedAt:   session.StartedAt,
			CompletedAt: session.CompletedAt,
		})
	}
	return analytics.CalculateStreak(records, now), nil
}

func (s *service) DailyNutrition(ctx context.Context, userID int64, day time.Time) (analytics.DailyNutritionSummary, error) {
	meals, err := s.repo.ListMeals(ctx, userID, dayRange(day, 0, 1))
	if err != nil {
		return analytics.DailyNutritionSummary{}, apperrors.Wrap("storage_error", "list meals", err)
	}
	target, err := s.resolveCalorieTarget(ctx, userID)
	if err != nil {
		return analytics.DailyNutritionSummary{}, err
	}
	return analytics.DailySummary(mealRecords(meals), day, target), nil
}

func (s *service) WeeklyNutrition(ctx context.Context, userID int64, weekStart time.Time) (analytics.WeeklyAdherence, error) {
	meals, err := s.repo.ListMeals(ctx, userID, dayRange(weekStart, 0, 7))
	if err != nil {
		return analytics.WeeklyAdherence{}, apperrors.Wrap("storage_error", "list meals", err)
	}
	target, err := s.resolveCalorieTarget(ctx, userID)
	if err != nil {
		return analytics.WeeklyAdherence{}, err
	}
	return analytics.WeeklyAdherenceRate(mealRecords(meals), weekStart, target), nil
}

func (s *service) Recovery(ctx context.Context, userID int64) (analytics.RecoveryContext, error) {
	now := s.now()
	activities, err := s.repo.ListActivities(ctx, userID, dayRange(now, -8, 1))
	if err != nil {
		return analytics.RecoveryContext{}, apperrors.Wrap("storage_error", "list activities", err)
	}
	records := make([]analytics.Activity, 0, len(activities))
	for _, activity := range activities {
		records = append(records, analytics.Activity{
			Date:            activity.Date,
			Type:            activity.Type,
			Intensity:       activity.Intensity,
			DurationMinutes: activity.DurationMinutes,
		})
	}
	return analytics.Recovery(records, now), nil
}

func (s *service) WeightTrend(ctx context.Context, userID int64) (analytics.WeightTrend, error) {
	now := s.now()
	measurements, err := s.repo.ListMeasurements(ctx, userID, dayRange(now, -s.cfg.TrendWindowDays, 1))
	if err != nil {
		return analytics.WeightTrend{}, apperrors.Wrap("storage_error", "list measurements", err)
	}
	records := make([]analytics.Measurement, 0, len(measurements))
	for _, m := range measurements {
		records = append(records, analytics.Measurement{MeasuredAt: m.MeasuredAt, Weight: m.Weight})
	}
	return analytics.ComputeWeightTrend(records, s.cfg.TrendWindowDays), nil
}

func (s *service) resolveCalorieTarget(ctx context.Context, userID int64) (int, error) {
	target, ok, err := s.targets.TargetFor(ctx, userID)
	if err != nil {
		return 0, apperrors.Wrap("storage_error", "resolve calorie target", err)
	}
	if !ok || target <= 0 {
		return s.cfg.DefaultCalorieTarget, nil
	}
	return target, nil
}

// rejectFutureDate allows a small clock-skew margin so clients logging
// "now" from a slightly fast device are not rejected.
func (s *service) rejectFutureDate(t time.Time) error {
	if t.After(s.now().Add(5 * time.Minute)) {
		return apperrors.Wrap("invalid_input", "date must not be in the future", nil)
	}
	return nil
}

func validateActivityType(raw string) (analytics.ActivityType, error) {
	switch analytics.ActivityType(raw) {
	case analytics.ActivityBJJ, analytics.ActivitySoftball, analytics.ActivityOther:
		return analytics.ActivityType(raw), nil
	default:
		return "", apperrors.Wrap("invalid_input", fmt.Sprintf("unknown activity type %q", raw), nil)
	}
}

func validateIntensity(raw string) (analytics.Intensity, error) {
	switch analytics.Intensity(raw) {
	case analytics.IntensityLight, analytics.IntensityModerate, analytics.IntensityHard:
		return analytics.Intensity(raw), nil
	default:
		return "", apperrors.Wrap("invalid_input", fmt.Sprintf("unknown intensity %q", raw), nil)
	}
}

func mealRecords(meals []MealLog) []analytics.NutritionEntry {
	records := make([]analytics.NutritionEntry, 0, len(meals))
	for _, meal := range meals {
		records = append(records, analytics.NutritionEntry{
			Date:     meal.Date,
			Calories: meal.Calories,
			Protein:  meal.Protein,
			Carbs:    meal.Carbs,
			Fats:     meal.Fats,
		})
	}
	return records
}

func dayRange(anchor time.Time, fromDays, toDays int) Range {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	return Range{From: day.AddDate(0, 0, fromDays), To: day.AddDate(0, 0, toDays)}
}
