package traininglog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lunarfit/coach-api/internal/domain/analytics"
	apperrors "github.com/lunarfit/coach-api/pkg/errors"
)

var fixedNow = time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

var errNotFound = errors.New("object not found")

type stubRepository struct {
	sessions     []WorkoutSession
	activities   []ActivityLog
	meals        []MealLog
	measurements []BodyMeasurement

	lastSessionRange Range
}

func (r *stubRepository) CreateSession(_ context.Context, s WorkoutSession) error {
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *stubRepository) GetSession(_ context.Context, id uuid.UUID, userID int64) (WorkoutSession, bool, error) {
	for _, s := range r.sessions {
		if s.ID == id && s.UserID == userID {
			return s, true, nil
		}
	}
	return WorkoutSession{}, false, nil
}

func (r *stubRepository) CompleteSession(_ context.Context, id uuid.UUID, userID int64, completedAt time.Time) (WorkoutSession, bool, error) {
	for i, s := range r.sessions {
		if s.ID == id && s.UserID == userID {
			r.sessions[i].CompletedAt = &completedAt
			return r.sessions[i], true, nil
		}
	}
	return WorkoutSession{}, false, nil
}

func (r *stubRepository) ListSessions(_ context.Context, userID int64, rng Range) ([]WorkoutSession, error) {
	r.lastSessionRange = rng
	var out []WorkoutSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubRepository) CreateActivity(_ context.Context, a ActivityLog) error {
	r.activities = append(r.activities, a)
	return nil
}

func (r *stubRepository) ListActivities(_ context.Context, userID int64, _ Range) ([]ActivityLog, error) {
	var out []ActivityLog
	for _, a := range r.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubRepository) CreateMeal(_ context.Context, m MealLog) error {
	r.meals = append(r.meals, m)
	return nil
}

func (r *stubRepository) ListMeals(_ context.Context, userID int64, _ Range) ([]MealLog, error) {
	var out []MealLog
	for _, m := range r.meals {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubRepository) CreateMeasurement(_ context.Context, m BodyMeasurement) error {
	r.measurements = append(r.measurements, m)
	return nil
}

func (r *stubRepository) GetMeasurement(_ context.Context, id uuid.UUID, userID int64) (BodyMeasurement, bool, error) {
	for _, m := range r.measurements {
		if m.ID == id && m.UserID == userID {
			return m, true, nil
		}
	}
	return BodyMeasurement{}, false, nil
}

func (r *stubRepository) SetMeasurementPhoto(_ context.Context, id uuid.UUID, userID int64, photoKey string) error {
	for i, m := range r.measurements {
		if m.ID == id && m.UserID == userID {
			r.measurements[i].PhotoKey = &photoKey
			return nil
		}
	}
	return errNotFound
}

func (r *stubRepository) ListMeasurements(_ context.Context, userID int64, _ Range) ([]BodyMeasurement, error) {
	var out []BodyMeasurement
	for _, m := range r.measurements {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubTargets struct {
	target int
	set    bool
}

func (t *stubTargets) TargetFor(context.Context, int64) (int, bool, error) {
	return t.target, t.set, nil
}

type stubStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *stubStorage) Put(_ context.Context, key string, data []byte, mimeType string) error {
	s.objects[key] = data
	s.types[key] = mimeType
	return nil
}

func (s *stubStorage) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, "", errNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), s.types[key], nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func newTestService(repo *stubRepository, targets *stubTargets, storage *stubStorage) *service {
	if repo == nil {
		repo = &stubRepository{}
	}
	if targets == nil {
		targets = &stubTargets{}
	}
	if storage == nil {
		storage = newStubStorage()
	}
	svc := NewService(Config{}, repo, targets, storage, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func nan() *float64 { v := math.NaN(); return &v }
func inf() *float64 { v := math.Inf(1); return &v }

func TestLogActivityRejectsNegativeDuration(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	minutes := -30
	_, err := svc.LogActivity(context.Background(), 1, LogActivityRequest{
		Date:            fixedNow,
		Type:            "bjj",
		Intensity:       "hard",
		DurationMinutes: &minutes,
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestLogActivityRejectsFutureDate(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, err := svc.LogActivity(context.Background(), 1, LogActivityRequest{
		Date:      fixedNow.Add(24 * time.Hour),
		Type:      "bjj",
		Intensity: "hard",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestLogActivityRejectsUnknownIntensity(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, err := svc.LogActivity(context.Background(), 1, LogActivityRequest{
		Date:      fixedNow,
		Type:      "bjj",
		Intensity: "brutal",
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestLogMeasurementRejectsNonFiniteWeight(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	for _, weight := range []float64{math.NaN(), math.Inf(1), -180} {
		_, err := svc.LogMeasurement(context.Background(), 1, LogMeasurementRequest{
			MeasuredAt: fixedNow,
			Weight:     weight,
		})
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	}
}

func TestLogMealRejectsNegativeCalories(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, err := svc.LogMeal(context.Background(), 1, LogMealRequest{
		Date:     fixedNow,
		Name:     "lunch",
		Calories: -500,
	})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestLogMealRejectsNonFiniteMacros(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	for _, macro := range []*float64{nan(), inf()} {
		_, err := svc.LogMeal(context.Background(), 1, LogMealRequest{
			Date:     fixedNow,
			Name:     "lunch",
			Calories: 500,
			Protein:  macro,
		})
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, "invalid_input"))
	}
}

func TestDailyNutritionUsesConfiguredTarget(t *testing.T) {
	repo := &stubRepository{meals: []MealLog{{
		ID:       uuid.New(),
		UserID:   1,
		Date:     fixedNow,
		Calories: 1500,
	}}}
	svc := newTestService(repo, &stubTargets{target: 1500, set: true}, nil)

	summary, err := svc.DailyNutrition(context.Background(), 1, fixedNow)
	require.NoError(t, err)
	require.Equal(t, analytics.StatusOnTrack, summary.TargetStatus)
}

func TestDailyNutritionFallsBackToDefaultTarget(t *testing.T) {
	repo := &stubRepository{meals: []MealLog{{
		ID:       uuid.New(),
		UserID:   1,
		Date:     fixedNow,
		Calories: 1500,
	}}}
	svc := newTestService(repo, &stubTargets{}, nil)

	summary, err := svc.DailyNutrition(context.Background(), 1, fixedNow)
	require.NoError(t, err)
	// 1500 against the 2000 default is below the band.
	require.Equal(t, analytics.StatusUnder, summary.TargetStatus)
}

func TestStreakMapsStoredSessions(t *testing.T) {
	yesterday := fixedNow.AddDate(0, 0, -1)
	repo := &stubRepository{sessions: []WorkoutSession{
		{ID: uuid.New(), UserID: 1, StartedAt: fixedNow, CompletedAt: &fixedNow},
		{ID: uuid.New(), UserID: 1, StartedAt: yesterday, CompletedAt: &yesterday},
		{ID: uuid.New(), UserID: 1, StartedAt: fixedNow}, // abandoned, ignored
	}}
	svc := newTestService(repo, nil, nil)

	streak, err := svc.Streak(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, streak.CurrentStreak)
	require.Equal(t, 2, streak.LongestStreak)
}

func TestStreakHonorsConfiguredLookback(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(Config{StreakLookbackDays: 30}, repo, &stubTargets{}, newStubStorage(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return fixedNow }

	_, err := svc.Streak(context.Background(), 1)
	require.NoError(t, err)

	midnight := time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), 0, 0, 0, 0, time.UTC)
	require.Equal(t, midnight.AddDate(0, 0, -30), repo.lastSessionRange.From)
	require.Equal(t, midnight.AddDate(0, 0, 1), repo.lastSessionRange.To)
}

func TestStreakLookbackDefaultsToAYear(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(repo, nil, nil)

	_, err := svc.Streak(context.Background(), 1)
	require.NoError(t, err)

	midnight := time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), 0, 0, 0, 0, time.UTC)
	require.Equal(t, midnight.AddDate(0, 0, -365), repo.lastSessionRange.From)
}

func TestRecoveryUsesTrailingWindow(t *testing.T) {
	repo := &stubRepository{activities: []ActivityLog{{
		ID:        uuid.New(),
		UserID:    1,
		Date:      fixedNow.AddDate(0, 0, -2),
		Type:      analytics.ActivityBJJ,
		Intensity: analytics.IntensityHard,
	}}}
	svc := newTestService(repo, nil, nil)

	recovery, err := svc.Recovery(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 3, recovery.WeeklyIntensityScore)
	require.NotNil(t, recovery.DaysSinceLastHard)
	require.Equal(t, 2, *recovery.DaysSinceLastHard)
	require.False(t, recovery.NeedsRecovery)
}

func TestAttachProgressPhotoRoundTrip(t *testing.T) {
	measurementID := uuid.New()
	repo := &stubRepository{measurements: []BodyMeasurement{{
		ID:         measurementID,
		UserID:     1,
		MeasuredAt: fixedNow,
		Weight:     185,
	}}}
	storage := newStubStorage()
	svc := newTestService(repo, nil, storage)

	photo := []byte("jpeg-bytes")
	m, err := svc.AttachProgressPhoto(context.Background(), 1, measurementID, photo, "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, m.PhotoKey)

	reader, mimeType, err := svc.ProgressPhoto(context.Background(), 1, measurementID)
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, "image/jpeg", mimeType)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, photo, data)
}

func TestProgressPhotoMissing(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	_, _, err := svc.ProgressPhoto(context.Background(), 1, uuid.New())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "not_found"))
}
