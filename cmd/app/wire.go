//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lunarfit/coach-api/internal/bootstrap"
	"github.com/lunarfit/coach-api/internal/infra/config"
	httpiface "github.com/lunarfit/coach-api/internal/interface/http"
	"github.com/lunarfit/coach-api/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideLogConfig,
		provideCoachConfig,
		provideChatGPTClient,
		providePostgresPool,
		provideUserRepository,
		provideCalorieTargets,
		provideLogRepository,
		providePhotoStorage,
		provideReportCache,
		provideNoteStore,
		provideEmbedder,
		provideTokenCounter,
		provideAuthService,
		provideLogService,
		provideMetricsSource,
		provideCoachService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
