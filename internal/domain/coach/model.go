package coach

import (
	"time"

	"github.com/lunarfit/coach-api/internal/domain/analytics"
	"github.com/lunarfit/coach-api/pkg/metrics"
)

// Config tunes report generation.
type Config struct {
	Prompt              string
	Model               string
	Temperature         float32
	CacheTTL            time.Duration
	MaxPromptTokens     int
	MemoryLimit         int
	SimilarityThreshold float64
}

// MetricsSnapshot is the derived state the coach reasons over.
type MetricsSnapshot struct {
	Streak      analytics.StreakResult          `json:"streak"`
	Nutrition   analytics.WeeklyAdherence       `json:"nutrition"`
	Recovery    analytics.RecoveryContext       `json:"recovery"`
	WeightTrend analytics.WeightTrend           `json:"weightTrend"`
	Daily       analytics.DailyNutritionSummary `json:"daily"`
}

// Report is the generated coaching narrative.
type Report struct {
	Headline    string             `json:"headline"`
	Assessment  string             `json:"assessment"`
	Focus       []string           `json:"focus"`
	Caution     string             `json:"caution,omitempty"`
	Metrics     MetricsSnapshot    `json:"metrics"`
	Usage       metrics.TokenUsage `json:"usage,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Cached      bool               `json:"cached"`
}

// Note is a remembered report summary used to keep narratives coherent
// across weeks.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// RetrievedNote pairs a note with its similarity score.
type RetrievedNote struct {
	Note  Note    `json:"note"`
	Score float64 `json:"score"`
}
