package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lunarfit/coach-api/internal/domain/analytics"
	"github.com/lunarfit/coach-api/internal/infra/llm/chatgpt"
	apperrors "github.com/lunarfit/coach-api/pkg/errors"
	"github.com/lunarfit/coach-api/pkg/metrics"
	"github.com/lunarfit/coach-api/pkg/util"
)

// Service generates narrative coaching reports from derived metrics.
type Service interface {
	GenerateReport(ctx context.Context, userID int64, refresh bool) (Report, error)
	StreamReport(ctx context.Context, userID int64) (chatgpt.Stream, error)
}

// ChatClient is the LLM surface the coach depends on.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error)
}

// MetricsSource provides the derived training metrics for a user.
type MetricsSource interface {
	Streak(ctx context.Context, userID int64) (analytics.StreakResult, error)
	DailyNutrition(ctx context.Context, userID int64, day time.Time) (analytics.DailyNutritionSummary, error)
	WeeklyNutrition(ctx context.Context, userID int64, weekStart time.Time) (analytics.WeeklyAdherence, error)
	Recovery(ctx context.Context, userID int64) (analytics.RecoveryContext, error)
	WeightTrend(ctx context.Context, userID int64) (analytics.WeightTrend, error)
}

// ReportCache short-circuits repeat report requests.
type ReportCache interface {
	Get(ctx context.Context, userID int64) (Report, bool, error)
	Save(ctx context.Context, userID int64, report Report, ttl time.Duration) error
}

// NoteStore remembers prior report summaries with embeddings.
type NoteStore interface {
	Upsert(ctx context.Context, note Note) error
	Search(ctx context.Context, userID int64, embedding []float32, k int) ([]RetrievedNote, error)
}

// Embedder turns report text into vectors for note retrieval.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenCounter measures prompt size so memory context stays in budget.
type TokenCounter interface {
	Count(text string) int
}

type service struct {
	cfg      Config
	client   ChatClient
	source   MetricsSource
	cache    ReportCache
	notes    NoteStore
	embedder Embedder
	tokens   TokenCounter
	logger   *slog.Logger
	now      func() time.Time
}

var _ Service = (*service)(nil)

// NewService wires up the coach domain.
func NewService(cfg Config, client ChatClient, source MetricsSource, cache ReportCache, notes NoteStore, embedder Embedder, tokens TokenCounter, logger *slog.Logger) *service {
	if cfg.MaxPromptTokens <= 0 {
		cfg.MaxPromptTokens = 3000
	}
	if cfg.MemoryLimit <= 0 {
		cfg.MemoryLimit = 5
	}
	return &service{
		cfg:      cfg,
		client:   client,
		source:   source,
		cache:    cache,
		notes:    notes,
		embedder: embedder,
		tokens:   tokens,
		logger:   logger.With("component", "coach.service"),
		now:      util.NowUTC,
	}
}

func (s *service) GenerateReport(ctx context.Context, userID int64, refresh bool) (Report, error) {
	if !refresh && s.cache != nil {
		cached, found, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("report cache lookup failed", "error", err, "userId", userID)
		} else if found {
			cached.Cached = true
			return cached, nil
		}
	}

	snapshot, err := s.collectMetrics(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	messages, err := s.buildMessages(ctx, userID, snapshot)
	if err != nil {
		return Report{}, err
	}

	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return Report{}, apperrors.Wrap("llm_error", "chatgpt request failed", err)
	}
	if len(completion.Choices) == 0 {
		return Report{}, apperrors.Wrap("llm_error", "chatgpt returned no choices", nil)
	}

	report, err := parseReport(completion.Choices[0].Message.Content)
	if err != nil {
		return Report{}, apperrors.Wrap("llm_error", "chatgpt response malformed", err)
	}
	report.Metrics = snapshot
	report.GeneratedAt = s.now()
	report.Usage = metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}

	s.rememberReport(ctx, userID, report)

	if s.cache != nil {
		if err := s.cache.Save(ctx, userID, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("report cache save failed", "error", err, "userId", userID)
		}
	}
	return report, nil
}

func (s *service) StreamReport(ctx context.Context, userID int64) (chatgpt.Stream, error) {
	snapshot, err := s.collectMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}
	messages, err := s.buildMessages(ctx, userID, snapshot)
	if err != nil {
		return nil, err
	}
	stream, err := s.client.CreateChatCompletionStream(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, apperrors.Wrap("llm_error", "chatgpt stream request failed", err)
	}
	return stream, nil
}

func (s *service) collectMetrics(ctx context.Context, userID int64) (MetricsSnapshot, error) {
	now := s.now()
	weekStart := now.AddDate(0, 0, -6)

	streak, err := s.source.Streak(ctx, userID)
	if err != nil {
		return MetricsSnapshot{}, err
	}
	daily, err := s.source.DailyNutrition(ctx, userID, now)
	if err != nil {
		return MetricsSnapshot{}, err
	}
	weekly, err := s.source.WeeklyNutrition(ctx, userID, weekStart)
	if err != nil {
		return MetricsSnapshot{}, err
	}
	recovery, err := s.source.Recovery(ctx, userID)
	if err != nil {
		return MetricsSnapshot{}, err
	}
	trend, err := s.source.WeightTrend(ctx, userID)
	if err != nil {
		return MetricsSnapshot{}, err
	}
	return MetricsSnapshot{
		Streak:      streak,
		Nutrition:   weekly,
		Recovery:    recovery,
		WeightTrend: trend,
		Daily:       daily,
	}, nil
}

func (s *service) buildMessages(ctx context.Context, userID int64, snapshot MetricsSnapshot) ([]chatgpt.Message, error) {
	userPrompt := renderMetricsPrompt(snapshot)

	budget := s.cfg.MaxPromptTokens - s.tokens.Count(s.systemPrompt()) - s.tokens.Count(userPrompt)
	memoryBlock := s.retrieveMemoryBlock(ctx, userID, userPrompt, budget)
	if memoryBlock != "" {
		userPrompt = memoryBlock + "\n\n" + userPrompt
	}

	return []chatgpt.Message{
		{Role: "system", Content: s.systemPrompt()},
		{Role: "user", Content: userPrompt},
	}, nil
}

// retrieveMemoryBlock folds prior report notes into the prompt, newest
// relevant first, dropping anything that would blow the token budget.
func (s *service) retrieveMemoryBlock(ctx context.Context, userID int64, query string, budget int) string {
	if s.notes == nil || s.embedder == nil || budget <= 0 {
		return ""
	}
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		if err != nil {
			s.logger.Warn("memory embedding failed", "error", err, "userId", userID)
		}
		return ""
	}
	retrieved, err := s.notes.Search(ctx, userID, vectors[0], s.cfg.MemoryLimit)
	if err != nil {
		s.logger.Warn("memory search failed", "error", err, "userId", userID)
		return ""
	}

	var lines []string
	used := 0
	for _, r := range retrieved {
		if r.Score < s.cfg.SimilarityThreshold {
			continue
		}
		line := fmt.Sprintf("- (%s) %s", r.Note.CreatedAt.Format("2006-01-02"), r.Note.Content)
		cost := s.tokens.Count(line)
		if used+cost > budget {
			break
		}
		used += cost
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ""
	}
	return "Previous coaching notes for context:\n" + strings.Join(lines, "\n")
}

func (s *service) rememberReport(ctx context.Context, userID int64, report Report) {
	if s.notes == nil || s.embedder == nil {
		return
	}
	content := report.Headline
	if report.Assessment != "" {
		content += " " + report.Assessment
	}
	vectors, err := s.embedder.Embed(ctx, []string{content})
	if err != nil || len(vectors) == 0 {
		if err != nil {
			s.logger.Warn("report embedding failed", "error", err, "userId", userID)
		}
		return
	}
	note := Note{
		UserID:    userID,
		Content:   content,
		Embedding: vectors[0],
		CreatedAt: report.GeneratedAt,
	}
	if err := s.notes.Upsert(ctx, note); err != nil {
		s.logger.Warn("report note upsert failed", "error", err, "userId", userID)
	}
}

func (s *service) systemPrompt() string {
	base := strings.TrimSpace(s.cfg.Prompt)
	if base == "" {
		base = "You are a supportive strength and conditioning coach."
	}
	enforcer := " Respond ONLY with valid minified JSON using this shape: {\"headline\":string,\"assessment\":string,\"focus\":string[],\"caution\":string}. Focus items must be short and actionable; caution may be an empty string. Never return plain text or other fields."
	return base + enforcer
}

func renderMetricsPrompt(snapshot MetricsSnapshot) string {
	var b strings.Builder
	b.WriteString("Write this week's coaching report based ONLY on these metrics.\n")
	fmt.Fprintf(&b, "Workout streak: current %d days, longest %d days.\n",
		snapshot.Streak.CurrentStreak, snapshot.Streak.LongestStreak)
	fmt.Fprintf(&b, "Today's nutrition: %d calories over %d meals, status %s.\n",
		snapshot.Daily.TotalCalories, snapshot.Daily.MealCount, snapshot.Daily.TargetStatus)
	fmt.Fprintf(&b, "Weekly nutrition: %d%% adherence over %d logged days (%d on track, %d under, %d over), averaging %d calories and %dg protein.\n",
		snapshot.Nutrition.AdherencePct, snapshot.Nutrition.TotalDays,
		snapshot.Nutrition.DaysOnTrack, snapshot.Nutrition.DaysUnder, snapshot.Nutrition.DaysOver,
		snapshot.Nutrition.AvgCalories, snapshot.Nutrition.AvgProtein)
	fmt.Fprintf(&b, "Recovery: weekly intensity score %d, needs recovery %t. %s\n",
		snapshot.Recovery.WeeklyIntensityScore, snapshot.Recovery.NeedsRecovery, snapshot.Recovery.Recommendation)
	if snapshot.Recovery.DaysSinceLastHard != nil {
		fmt.Fprintf(&b, "Days since last hard session: %d.\n", *snapshot.Recovery.DaysSinceLastHard)
	}
	fmt.Fprintf(&b, "Weight trend: %s.\n", snapshot.WeightTrend.Label)
	return b.String()
}

func parseReport(raw string) (Report, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire struct {
		Headline   string          `json:"headline"`
		Assessment string          `json:"assessment"`
		Focus      json.RawMessage `json:"focus"`
		Caution    string          `json:"caution"`
	}
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return Report{}, err
	}
	focus, err := coerceStringArray(wire.Focus)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Headline:   strings.TrimSpace(wire.Headline),
		Assessment: strings.TrimSpace(wire.Assessment),
		Focus:      normalizeList(focus),
		Caution:    strings.TrimSpace(wire.Caution),
	}
	if report.Headline == "" {
		return Report{}, errors.New("headline missing")
	}
	if report.Assessment == "" {
		return Report{}, errors.New("assessment missing")
	}
	return report, nil
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{})
	for _, item := range items {
		clean := strings.TrimSpace(item)
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}

func coerceStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	case '[':
		var many []string
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, err
		}
		return many, nil
	default:
		return nil, errors.New("unsupported focus array format")
	}
}
