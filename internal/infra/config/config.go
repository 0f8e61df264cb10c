package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Coach    CoachConfig    `yaml:"coach"`
	LLM      LLMConfig      `yaml:"llm"`
	Auth     AuthConfig     `yaml:"auth"`
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Storage  StorageConfig  `yaml:"storage"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LogConfig defines defaults for the training log domain.
type LogConfig struct {
	DefaultCalorieTarget int `yaml:"defaultCalorieTarget"`
	TrendWindowDays      int `yaml:"trendWindowDays"`
	StreakLookbackDays   int `yaml:"streakLookbackDays"`
}

// CoachConfig controls the AI coach report generator.
type CoachConfig struct {
	Prompt              string        `yaml:"prompt"`
	CacheTTL            time.Duration `yaml:"cacheTtl"`
	MaxPromptTokens     int           `yaml:"maxPromptTokens"`
	MemoryLimit         int           `yaml:"memoryLimit"`
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey         string  `yaml:"apiKey"`
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embeddingModel"`
	Temperature    float32 `yaml:"temperature"`
}

// AuthConfig controls password auth, token issuing and Google sign-in.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwtSecret"`
	AccessTokenTTL time.Duration `yaml:"accessTokenTtl"`
	RefreshTTL     time.Duration `yaml:"refreshTtl"`
	TokenCipherKey string        `yaml:"tokenCipherKey"`
	Google         GoogleConfig  `yaml:"google"`
}

// GoogleConfig carries the OIDC client settings for Google sign-in.
type GoogleConfig struct {
	Enabled              bool   `yaml:"enabled"`
	ClientID             string `yaml:"clientId"`
	ClientSecret         string `yaml:"clientSecret"`
	RedirectURL          string `yaml:"redirectUrl"`
	Issuer               string `yaml:"issuer"`
	PostLoginRedirectURL string `yaml:"postLoginRedirectUrl"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// StorageConfig contains object storage settings for progress photos.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSsl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = envBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = envBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("LOG_DEFAULT_CALORIE_TARGET"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Log.DefaultCalorieTarget = parsed
		}
	}
	if v := os.Getenv("LOG_TREND_WINDOW_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Log.TrendWindowDays = parsed
		}
	}
	if v := os.Getenv("COACH_PROMPT"); v != "" {
		cfg.Coach.Prompt = v
	}
	if v := os.Getenv("COACH_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Coach.CacheTTL = parsed
		}
	}
	if v := os.Getenv("COACH_MAX_PROMPT_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Coach.MaxPromptTokens = parsed
		}
	}
	if v := os.Getenv("COACH_MEMORY_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Coach.MemoryLimit = parsed
		}
	}
	if v := os.Getenv("COACH_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Coach.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("AUTH_ACCESS_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.AccessTokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_TOKEN_CIPHER_KEY"); v != "" {
		cfg.Auth.TokenCipherKey = v
	}
	if v := os.Getenv("AUTH_GOOGLE_ENABLED"); v != "" {
		cfg.Auth.Google.Enabled = envBool(v)
	}
	if v := os.Getenv("AUTH_GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.Google.ClientID = v
	}
	if v := os.Getenv("AUTH_GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.Google.ClientSecret = v
	}
	if v := os.Getenv("AUTH_GOOGLE_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.RedirectURL = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = envBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_USE_SSL"); v != "" {
		cfg.Storage.UseSSL = envBool(v)
	}
}

func envBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/coach/report/stream",
				},
			},
		},
		Log: LogConfig{
			DefaultCalorieTarget: 2000,
			TrendWindowDays:      30,
			StreakLookbackDays:   365,
		},
		Coach: CoachConfig{
			Prompt:              "You are a supportive strength and conditioning coach. Analyze the athlete's weekly training, nutrition and recovery metrics and write a short narrative report. Respond strictly as JSON with the keys headline (string), assessment (string), focus (array of <=3 short action items), and caution (optional string). Be concrete and encouraging.",
			CacheTTL:            time.Hour,
			MaxPromptTokens:     3000,
			MemoryLimit:         5,
			SimilarityThreshold: 0.7,
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.2,
		},
		Auth: AuthConfig{
			JWTSecret:      "",
			AccessTokenTTL: 15 * time.Minute,
			RefreshTTL:     720 * time.Hour,
		},
		Postgres: PostgresConfig{
			DSN:      "",
			MaxConns: 4,
			MinConns: 0,
		},
		Valkey: ValkeyConfig{
			Enabled: false,
			Addr:    "",
		},
		Storage: StorageConfig{
			Bucket: "coach-progress-photos",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Log.DefaultCalorieTarget <= 0 {
		return errors.New("log.defaultCalorieTarget must be positive")
	}
	if c.Log.TrendWindowDays <= 0 {
		return errors.New("log.trendWindowDays must be positive")
	}
	if c.Log.StreakLookbackDays <= 0 {
		return errors.New("log.streakLookbackDays must be positive")
	}
	if c.Coach.Prompt == "" {
		return errors.New("coach.prompt cannot be empty")
	}
	if c.Coach.CacheTTL < 0 {
		return errors.New("coach.cacheTtl cannot be negative")
	}
	if c.Coach.MaxPromptTokens <= 0 {
		return errors.New("coach.maxPromptTokens must be positive")
	}
	if c.Coach.MemoryLimit < 0 {
		return errors.New("coach.memoryLimit cannot be negative")
	}
	if c.Coach.SimilarityThreshold < 0 {
		return errors.New("coach.similarityThreshold must be non-negative")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("auth.accessTokenTtl must be positive")
	}
	if c.Auth.RefreshTTL <= 0 {
		return errors.New("auth.refreshTtl must be positive")
	}
	if c.Auth.Google.Enabled {
		if strings.TrimSpace(c.Auth.Google.ClientID) == "" {
			return errors.New("auth.google.clientId cannot be empty when google sign-in is enabled")
		}
		if strings.TrimSpace(c.Auth.Google.RedirectURL) == "" {
			return errors.New("auth.google.redirectUrl cannot be empty when google sign-in is enabled")
		}
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when the cache is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
