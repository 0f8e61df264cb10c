package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/lunarfit/coach-api/internal/domain/auth"
	"github.com/lunarfit/coach-api/internal/domain/coach"
	"github.com/lunarfit/coach-api/internal/domain/traininglog"
	"github.com/lunarfit/coach-api/internal/infra/coachmem"
	"github.com/lunarfit/coach-api/internal/infra/config"
	"github.com/lunarfit/coach-api/internal/infra/llm/chatgpt"
	"github.com/lunarfit/coach-api/internal/infra/llm/embedder"
	"github.com/lunarfit/coach-api/internal/infra/llm/tokenizer"
	"github.com/lunarfit/coach-api/internal/infra/logrepo"
	"github.com/lunarfit/coach-api/internal/infra/photostore"
	"github.com/lunarfit/coach-api/internal/infra/reportstore"
	"github.com/lunarfit/coach-api/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	out := auth.Config{
		Secret:          cfg.Auth.JWTSecret,
		TokenTTL:        cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTTL,
	}
	if cfg.Auth.Google.Enabled {
		out.Google = auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			Issuer:               cfg.Auth.Google.Issuer,
			TokenEncryptionKey:   cfg.Auth.TokenCipherKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		}
	}
	return out
}

func provideLogConfig(cfg *config.Config) traininglog.Config {
	return traininglog.Config{
		DefaultCalorieTarget: cfg.Log.DefaultCalorieTarget,
		TrendWindowDays:      cfg.Log.TrendWindowDays,
		StreakLookbackDays:   cfg.Log.StreakLookbackDays,
	}
}

func provideCoachConfig(cfg *config.Config) coach.Config {
	return coach.Config{
		Prompt:              cfg.Coach.Prompt,
		Model:               cfg.LLM.Model,
		Temperature:         cfg.LLM.Temperature,
		CacheTTL:            cfg.Coach.CacheTTL,
		MaxPromptTokens:     cfg.Coach.MaxPromptTokens,
		MemoryLimit:         cfg.Coach.MemoryLimit,
		SimilarityThreshold: cfg.Coach.SimilarityThreshold,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres pool initialized")
	return pool
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideCalorieTargets(repo auth.Repository) traininglog.CalorieTargets {
	return userrepo.NewCalorieTargetAdapter(repo)
}

func provideLogRepository(pool *pgxpool.Pool) traininglog.Repository {
	if pool == nil {
		return logrepo.NewMemoryRepository()
	}
	return logrepo.NewPostgresRepository(pool)
}

func provideNoteStore(pool *pgxpool.Pool) coach.NoteStore {
	if pool == nil {
		return coachmem.NewMemoryStore()
	}
	return coachmem.NewPostgresStore(pool)
}

func providePhotoStorage(cfg *config.Config, logger *slog.Logger) traininglog.ObjectStorage {
	if strings.TrimSpace(cfg.Storage.Endpoint) == "" {
		logger.Info("storage endpoint not set, keeping photos in memory")
		return photostore.NewMemoryStore()
	}
	store, err := photostore.NewMinioStore(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL, logger)
	if err != nil {
		logger.Error("failed to initialize object storage, keeping photos in memory", "error", err)
		return photostore.NewMemoryStore()
	}
	logger.Info("photo object storage enabled", "bucket", cfg.Storage.Bucket)
	return store
}

func provideReportCache(cfg *config.Config, logger *slog.Logger) coach.ReportCache {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return reportstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return reportstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey report cache enabled", "addr", cfg.Valkey.Addr)
			return reportstore.NewValkeyStore(client, "coach")
		}
	}
	return reportstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideEmbedder(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) coach.Embedder {
	return embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, logger)
}

func provideTokenCounter(cfg *config.Config) coach.TokenCounter {
	return tokenizer.NewTiktokenCounter(cfg.LLM.Model)
}

func provideAuthService(cfg auth.Config, repo auth.Repository, logger *slog.Logger) auth.Service {
	return auth.NewService(cfg, repo, logger)
}

func provideLogService(cfg traininglog.Config, repo traininglog.Repository, targets traininglog.CalorieTargets, photos traininglog.ObjectStorage, logger *slog.Logger) traininglog.Service {
	return traininglog.NewService(cfg, repo, targets, photos, logger)
}

func provideMetricsSource(svc traininglog.Service) coach.MetricsSource {
	return svc
}

func provideCoachService(cfg coach.Config, client *chatgpt.Client, source coach.MetricsSource, cache coach.ReportCache, notes coach.NoteStore, emb coach.Embedder, tokens coach.TokenCounter, logger *slog.Logger) coach.Service {
	return coach.NewService(cfg, client, source, cache, notes, emb, tokens, logger)
}
