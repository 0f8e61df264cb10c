// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package main

import (
	"github.com/lunarfit/coach-api/internal/bootstrap"
	"github.com/lunarfit/coach-api/internal/infra/config"
	"github.com/lunarfit/coach-api/internal/interface/http"
	"github.com/lunarfit/coach-api/pkg/logger"
)

// Injectors from wire.go:

func initializeApp() (*bootstrap.App, error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	slogLogger := logger.New()
	authConfig := provideAuthConfig(configConfig)
	pool := providePostgresPool(configConfig, slogLogger)
	repository := provideUserRepository(pool)
	service := provideAuthService(authConfig, repository, slogLogger)
	traininglogConfig := provideLogConfig(configConfig)
	traininglogRepository := provideLogRepository(pool)
	calorieTargets := provideCalorieTargets(repository)
	objectStorage := providePhotoStorage(configConfig, slogLogger)
	traininglogService := provideLogService(traininglogConfig, traininglogRepository, calorieTargets, objectStorage, slogLogger)
	coachConfig := provideCoachConfig(configConfig)
	client, err := provideChatGPTClient(configConfig)
	if err != nil {
		return nil, err
	}
	metricsSource := provideMetricsSource(traininglogService)
	reportCache := provideReportCache(configConfig, slogLogger)
	noteStore := provideNoteStore(pool)
	embedder := provideEmbedder(configConfig, client, slogLogger)
	tokenCounter := provideTokenCounter(configConfig)
	coachService := provideCoachService(coachConfig, client, metricsSource, reportCache, noteStore, embedder, tokenCounter, slogLogger)
	handler := http.NewHandler(configConfig, service, traininglogService, coachService, slogLogger)
	server := http.NewRouter(configConfig, handler)
	app := bootstrap.NewApp(configConfig, slogLogger, server)
	return app, nil
}
