package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lunarfit/coach-api/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
			authGroup.POST("/refresh", handler.Refresh)
			authGroup.GET("/google/login", handler.GoogleLogin)
			authGroup.GET("/google/callback", handler.GoogleCallback)
		}

		protected := api.Group("", authMiddleware(handler.authSvc))
		{
			protected.GET("/auth/profile", handler.Profile)
			protected.PATCH("/auth/profile", handler.UpdateProfile)
			protected.POST("/auth/logout", handler.Logout)

			protected.POST("/log/sessions", handler.StartSession)
			protected.POST("/log/sessions/:id/complete", handler.CompleteSession)
			protected.GET("/log/sessions", handler.ListSessions)

			protected.POST("/log/activities", handler.LogActivity)
			protected.GET("/log/activities", handler.ListActivities)

			protected.POST("/log/meals", handler.LogMeal)
			protected.GET("/log/meals", handler.ListMeals)

			protected.POST("/log/measurements", handler.LogMeasurement)
			protected.GET("/log/measurements", handler.ListMeasurements)
			protected.POST("/log/measurements/:id/photo", handler.UploadProgressPhoto)
			protected.GET("/log/measurements/:id/photo", handler.DownloadProgressPhoto)

			protected.GET("/metrics/streak", handler.Streak)
			protected.GET("/metrics/nutrition/daily", handler.DailyNutrition)
			protected.GET("/metrics/nutrition/weekly", handler.WeeklyNutrition)
			protected.GET("/metrics/recovery", handler.Recovery)
			protected.GET("/metrics/weight-trend", handler.WeightTrend)

			protected.GET("/coach/report", handler.CoachReport)
			protected.GET("/coach/report/stream", handler.CoachReportStream)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
