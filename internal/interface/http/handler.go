package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lunarfit/coach-api/internal/domain/auth"
	"github.com/lunarfit/coach-api/internal/domain/coach"
	"github.com/lunarfit/coach-api/internal/domain/traininglog"
	"github.com/lunarfit/coach-api/internal/infra/config"
	apperrors "github.com/lunarfit/coach-api/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc        auth.Service
	logSvc         traininglog.Service
	coachSvc       coach.Service
	googleRedirect string
	logger         *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, authSvc auth.Service, logSvc traininglog.Service, coachSvc coach.Service, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:        authSvc,
		logSvc:         logSvc,
		coachSvc:       coachSvc,
		googleRedirect: cfg.Auth.Google.PostLoginRedirectURL,
		logger:         logger.With("component", "http.handler"),
	}
}

// CoachReport returns the cached or freshly generated coaching report.
func (h *Handler) CoachReport(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	refresh := c.Query("refresh") == "true"

	report, err := h.coachSvc.GenerateReport(c.Request.Context(), claims.UserID, refresh)
	if err != nil {
		status := http.StatusInternalServerError
		code := "report_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "llm_error"):
			status = http.StatusBadGateway
			code = "llm_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, report)
}

// CoachReportStream streams report tokens using Server-Sent Events.
func (h *Handler) CoachReportStream(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	stream, err := h.coachSvc.StreamReport(c.Request.Context(), claims.UserID)
	if err != nil {
		status := http.StatusInternalServerError
		code := "report_failed"
		if apperrors.IsCode(err, "llm_error") {
			status = http.StatusBadGateway
			code = "llm_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	defer stream.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			c.Writer.Write([]byte("data: [DONE]\n\n"))
			flusher.Flush()
			return
		}
		if err != nil {
			h.logger.Error("report stream interrupted", "error", err)
			return
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			payload, err := json.Marshal(gin.H{"delta": choice.Delta.Content})
			if err != nil {
				h.logger.Error("marshal chunk failed", "error", err)
				continue
			}
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(payload)
			c.Writer.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
