package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lunarfit/coach-api/internal/domain/traininglog"
	apperrors "github.com/lunarfit/coach-api/pkg/errors"
)

const defaultListWindow = 30 * 24 * time.Hour

// StartSession opens a new workout session.
func (h *Handler) StartSession(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req traininglog.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	session, err := h.logSvc.StartSession(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, logHTTPError("session_failed", err))
		return
	}

	c.JSON(http.StatusCreated, session)
}

// CompleteSession marks an open session as finished.
func (h *Handler) CompleteSession(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid session id", err))
		return
	}

	session, err := h.logSvc.CompleteSession(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithError(c, logHTTPError("session_failed", err))
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions returns sessions inside the requested range.
func (h *Handler) ListSessions(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	r, err := parseRange(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	sessions, err := h.logSvc.ListSessions(c.Request.Context(), claims.UserID, r)
	if err != nil {
		abortWithError(c, logHTTPError("fetch_failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": sessions})
}

// LogActivity records a training activity.
func (h *Handler) LogActivity(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req traininglog.LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	activity, err := h.logSvc.LogActivity(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, logHTTPError("log_failed", err))
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// ListActivities returns activities inside the requested range.
func (h *Handler) ListActivities(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	r, err := parseRange(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	activities, err := h.logSvc.ListActivities(c.Request.Context(), claims.UserID, r)
	if err != nil {
		abortWithError(c, logHTTPError("fetch_failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": activities})
}

// LogMeal records a meal entry.
func (h *Handler) LogMeal(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req traininglog.LogMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	meal, err := h.logSvc.LogMeal(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, logHTTPError("log_failed", err))
		return
	}

	c.JSON(http.StatusCreated, meal)
}

// ListMeals returns meals inside the requested range.
func (h *Handler) ListMeals(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	r, err := parseRange(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	meals, err := h.logSvc.ListMeals(c.Request.Context(), claims.UserID, r)
	if err != nil {
		abortWithError(c, logHTTPError("fetch_failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": meals})
}

// LogMeasurement records a weigh-in.
func (h *Handler) LogMeasurement(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req traininglog.LogMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	measurement, err := h.logSvc.LogMeasurement(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, logHTTPError("log_failed", err))
		return
	}

	c.JSON(http.StatusCreated, measurement)
}

// ListMeasurements returns weigh-ins inside the requested range.
func (h *Handler) ListMeasurements(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	r, err := parseRange(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	measurements, err := h.logSvc.ListMeasurements(c.Request.Context(), claims.UserID, r)
	if err != nil {
		abortWithError(c, logHTTPError("fetch_failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": measurements})
}

// UploadProgressPhoto attaches a multipart photo to a measurement.
func (h *Handler) UploadProgressPhoto(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid measurement id", err))
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "photo is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read photo", err))
		return
	}

	measurement, err := h.logSvc.AttachProgressPhoto(c.Request.Context(), claims.UserID, id, data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		abortWithError(c, logHTTPError("upload_failed", err))
		return
	}

	c.JSON(http.StatusOK, measurement)
}

// DownloadProgressPhoto streams the stored photo back to the client.
func (h *Handler) DownloadProgressPhoto(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid measurement id", err))
		return
	}

	reader, mimeType, err := h.logSvc.ProgressPhoto(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithError(c, logHTTPError("fetch_failed", err))
		return
	}
	defer reader.Close()

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Type", mimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Error("photo stream interrupted", "error", err)
	}
}

// Streak returns the user's current and longest daily training streaks.
func (h *Handler) Streak(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	streak, err := h.logSvc.Streak(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, logHTTPError("metrics_failed", err))
		return
	}

	c.JSON(http.StatusOK, streak)
}

// DailyNutrition summarizes one day of meals against the calorie target.
func (h *Handler) DailyNutrition(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	day, err := parseDateQuery(c, "date", time.Now().UTC())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	summary, err := h.logSvc.DailyNutrition(c.Request.Context(), claims.UserID, day)
	if err != nil {
		abortWithError(c, logHTTPError("metrics_failed", err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// WeeklyNutrition reports adherence over the seven days from weekStart.
func (h *Handler) WeeklyNutrition(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	weekStart, err := parseDateQuery(c, "weekStart", time.Now().UTC().AddDate(0, 0, -6))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	adherence, err := h.logSvc.WeeklyNutrition(c.Request.Context(), claims.UserID, weekStart)
	if err != nil {
		abortWithError(c, logHTTPError("metrics_failed", err))
		return
	}

	c.JSON(http.StatusOK, adherence)
}

// Recovery reports training load and a readiness recommendation.
func (h *Handler) Recovery(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	recovery, err := h.logSvc.Recovery(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, logHTTPError("metrics_failed", err))
		return
	}

	c.JSON(http.StatusOK, recovery)
}

// WeightTrend reports the weekly rate of weight change.
func (h *Handler) WeightTrend(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	trend, err := h.logSvc.WeightTrend(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, logHTTPError("metrics_failed", err))
		return
	}

	c.JSON(http.StatusOK, trend)
}

func logHTTPError(fallbackCode string, err error) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "not_found"):
		status = http.StatusNotFound
		code = "not_found"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func parseRange(c *gin.Context) (traininglog.Range, error) {
	to := time.Now().UTC().Add(24 * time.Hour)
	from := time.Now().UTC().Add(-defaultListWindow)

	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = parseDate(raw); err != nil {
			return traininglog.Range{}, err
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = parseDate(raw); err != nil {
			return traininglog.Range{}, err
		}
	}
	return traininglog.Range{From: from, To: to}, nil
}

func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return parseDate(raw)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
