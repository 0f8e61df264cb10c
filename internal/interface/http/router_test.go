package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lunarfit/coach-api/internal/domain/analytics"
	"github.com/lunarfit/coach-api/internal/domain/auth"
	"github.com/lunarfit/coach-api/internal/domain/coach"
	"github.com/lunarfit/coach-api/internal/domain/traininglog"
	"github.com/lunarfit/coach-api/internal/infra/config"
	"github.com/lunarfit/coach-api/internal/infra/llm/chatgpt"
	apperrors "github.com/lunarfit/coach-api/pkg/errors"
)

func TestRouter_RegisterSuccess(t *testing.T) {
	view := auth.UserView{ID: 1, Email: "ana@example.com", DisplayName: "Ana", WeightUnit: "lbs"}
	authSvc := &stubAuthService{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error) {
			require.Equal(t, "ana@example.com", req.Email)
			return view, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/auth/register",
		`{"email":"ana@example.com","password":"hunter2-hunter2","displayName":"Ana"}`, "",
		newRouterUnderTest(t, authSvc, &stubLogService{}, &stubCoachService{}))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var got auth.UserView
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, view.Email, got.Email)
}

func TestRouter_LoginInvalidCredentials(t *testing.T) {
	authSvc := &stubAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
			return auth.LoginResponse{}, apperrors.Wrap("invalid_credentials", "email or password incorrect", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"ana@example.com","password":"wrong"}`, "",
		newRouterUnderTest(t, authSvc, &stubLogService{}, &stubCoachService{}))
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_credentials", errBody["error"]["code"])
}

func TestRouter_StreakRequiresToken(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/v1/metrics/streak", "", "",
		newRouterUnderTest(t, &stubAuthService{}, &stubLogService{}, &stubCoachService{}))
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "unauthorized", errBody["error"]["code"])
}

func TestRouter_StreakSuccess(t *testing.T) {
	logSvc := &stubLogService{
		streakFn: func(ctx context.Context, userID int64) (analytics.StreakResult, error) {
			require.Equal(t, int64(7), userID)
			return analytics.StreakResult{CurrentStreak: 4, LongestStreak: 11}, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/metrics/streak", "", "Bearer valid-token",
		newRouterUnderTest(t, validatingAuth(7), logSvc, &stubCoachService{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got analytics.StreakResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, 4, got.CurrentStreak)
	require.Equal(t, 11, got.LongestStreak)
}

func TestRouter_LogMealInvalidInput(t *testing.T) {
	logSvc := &stubLogService{
		logMealFn: func(ctx context.Context, userID int64, req traininglog.LogMealRequest) (traininglog.MealLog, error) {
			return traininglog.MealLog{}, apperrors.Wrap("invalid_input", "calories must not be negative", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/log/meals",
		`{"date":"2024-07-15T00:00:00Z","name":"lunch","calories":-10}`, "Bearer valid-token",
		newRouterUnderTest(t, validatingAuth(7), logSvc, &stubCoachService{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "calories")
}

func TestRouter_CoachReportSuccess(t *testing.T) {
	report := coach.Report{Headline: "Solid week", Assessment: "Keep the streak alive."}
	coachSvc := &stubCoachService{
		generateFn: func(ctx context.Context, userID int64, refresh bool) (coach.Report, error) {
			require.Equal(t, int64(7), userID)
			require.True(t, refresh)
			return report, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/coach/report?refresh=true", "", "Bearer valid-token",
		newRouterUnderTest(t, validatingAuth(7), &stubLogService{}, coachSvc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got coach.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, report.Headline, got.Headline)
}

func TestRouter_CoachReportStream(t *testing.T) {
	coachSvc := &stubCoachService{
		streamFn: func(ctx context.Context, userID int64) (chatgpt.Stream, error) {
			return &stubStream{deltas: []string{"Solid ", "week."}}, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/coach/report/stream", "", "Bearer valid-token",
		newRouterUnderTest(t, validatingAuth(7), &stubLogService{}, coachSvc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))

	payload := strings.TrimSpace(recorder.Body.String())
	frames := strings.Split(payload, "\n\n")
	require.Len(t, frames, 3)
	require.Equal(t, `data: {"delta":"Solid "}`, frames[0])
	require.Equal(t, `data: {"delta":"week."}`, frames[1])
	require.Equal(t, "data: [DONE]", frames[2])
}

func performRequest(method, path, body, authorization string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, authSvc auth.Service, logSvc traininglog.Service, coachSvc coach.Service) *http.Server {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	handler := NewHandler(cfg, authSvc, logSvc, coachSvc, newTestLogger())
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func validatingAuth(userID int64) *stubAuthService {
	return &stubAuthService{
		validateFn: func(ctx context.Context, token string) (auth.Claims, error) {
			if token != "valid-token" {
				return auth.Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
			}
			return auth.Claims{UserID: userID, Email: "ana@example.com", TokenType: "access"}, nil
		},
	}
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubAuthService struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error)
	loginFn    func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
	validateFn func(ctx context.Context, token string) (auth.Claims, error)
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (auth.UserView, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return auth.UserView{}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return auth.LoginResponse{}, nil
}

func (s *stubAuthService) GoogleAuthURL(ctx context.Context, state, codeChallenge string) (string, error) {
	return "", apperrors.Wrap("auth_not_configured", "google sign-in disabled", nil)
}

func (s *stubAuthService) GoogleCallback(ctx context.Context, code, codeVerifier string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, apperrors.Wrap("auth_not_configured", "google sign-in disabled", nil)
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (auth.Claims, error) {
	if s.validateFn != nil {
		return s.validateFn(ctx, token)
	}
	return auth.Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuthService) Profile(ctx context.Context, userID int64) (auth.UserView, error) {
	return auth.UserView{}, nil
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID int64, req auth.UpdateProfileRequest) (auth.UserView, error) {
	return auth.UserView{}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, userID int64) error {
	return nil
}

type stubLogService struct {
	streakFn  func(ctx context.Context, userID int64) (analytics.StreakResult, error)
	logMealFn func(ctx context.Context, userID int64, req traininglog.LogMealRequest) (traininglog.MealLog, error)
}

func (s *stubLogService) StartSession(ctx context.Context, userID int64, req traininglog.StartSessionRequest) (traininglog.WorkoutSession, error) {
	return traininglog.WorkoutSession{}, nil
}

func (s *stubLogService) CompleteSession(ctx context.Context, userID int64, id uuid.UUID) (traininglog.WorkoutSession, error) {
	return traininglog.WorkoutSession{}, nil
}

func (s *stubLogService) ListSessions(ctx context.Context, userID int64, r traininglog.Range) ([]traininglog.WorkoutSession, error) {
	return nil, nil
}

func (s *stubLogService) LogActivity(ctx context.Context, userID int64, req traininglog.LogActivityRequest) (traininglog.ActivityLog, error) {
	return traininglog.ActivityLog{}, nil
}

func (s *stubLogService) ListActivities(ctx context.Context, userID int64, r traininglog.Range) ([]traininglog.ActivityLog, error) {
	return nil, nil
}

func (s *stubLogService) LogMeal(ctx context.Context, userID int64, req traininglog.LogMealRequest) (traininglog.MealLog, error) {
	if s.logMealFn != nil {
		return s.logMealFn(ctx, userID, req)
	}
	return traininglog.MealLog{}, nil
}

func (s *stubLogService) ListMeals(ctx context.Context, userID int64, r traininglog.Range) ([]traininglog.MealLog, error) {
	return nil, nil
}

func (s *stubLogService) LogMeasurement(ctx context.Context, userID int64, req traininglog.LogMeasurementRequest) (traininglog.BodyMeasurement, error) {
	return traininglog.BodyMeasurement{}, nil
}

func (s *stubLogService) ListMeasurements(ctx context.Context, userID int64, r traininglog.Range) ([]traininglog.BodyMeasurement, error) {
	return nil, nil
}

func (s *stubLogService) AttachProgressPhoto(ctx context.Context, userID int64, measurementID uuid.UUID, data []byte, mimeType string) (traininglog.BodyMeasurement, error) {
	return traininglog.BodyMeasurement{}, nil
}

func (s *stubLogService) ProgressPhoto(ctx context.Context, userID int64, measurementID uuid.UUID) (io.ReadCloser, string, error) {
	return io.NopCloser(strings.NewReader("")), "image/jpeg", nil
}

func (s *stubLogService) Streak(ctx context.Context, userID int64) (analytics.StreakResult, error) {
	if s.streakFn != nil {
		return s.streakFn(ctx, userID)
	}
	return analytics.StreakResult{}, nil
}

func (s *stubLogService) DailyNutrition(ctx context.Context, userID int64, day time.Time) (analytics.DailyNutritionSummary, error) {
	return analytics.DailyNutritionSummary{}, nil
}

func (s *stubLogService) WeeklyNutrition(ctx context.Context, userID int64, weekStart time.Time) (analytics.WeeklyAdherence, error) {
	return analytics.WeeklyAdherence{}, nil
}

func (s *stubLogService) Recovery(ctx context.Context, userID int64) (analytics.RecoveryContext, error) {
	return analytics.RecoveryContext{}, nil
}

func (s *stubLogService) WeightTrend(ctx context.Context, userID int64) (analytics.WeightTrend, error) {
	return analytics.WeightTrend{}, nil
}

type stubCoachService struct {
	generateFn func(ctx context.Context, userID int64, refresh bool) (coach.Report, error)
	streamFn   func(ctx context.Context, userID int64) (chatgpt.Stream, error)
}

func (s *stubCoachService) GenerateReport(ctx context.Context, userID int64, refresh bool) (coach.Report, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, userID, refresh)
	}
	return coach.Report{}, nil
}

func (s *stubCoachService) StreamReport(ctx context.Context, userID int64) (chatgpt.Stream, error) {
	if s.streamFn != nil {
		return s.streamFn(ctx, userID)
	}
	return &stubStream{}, nil
}

type stubStream struct {
	deltas []string
	idx    int
}

func (s *stubStream) Recv() (chatgpt.ChatCompletionStreamChunk, error) {
	if s.idx >= len(s.deltas) {
		return chatgpt.ChatCompletionStreamChunk{}, io.EOF
	}
	var chunk chatgpt.ChatCompletionStreamChunk
	chunk.Choices = append(chunk.Choices, struct {
		Delta        chatgpt.Message `json:"delta"`
		FinishReason string          `json:"finish_reason"`
	}{Delta: chatgpt.Message{Role: "assistant", Content: s.deltas[s.idx]}})
	s.idx++
	return chunk, nil
}

func (s *stubStream) Close() error {
	return nil
}
