package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lunarfit/coach-api/internal/domain/coach"
	"github.com/lunarfit/coach-api/internal/infra/llm/chatgpt"
)

const (
	// Coach notes are a headline plus a short assessment, so requests
	// stay small; batching by note count keeps payloads predictable.
	maxNotesPerRequest = 32

	// Hard cap per note, comfortably inside the embedding model's
	// context. Longer inputs are truncated rather than rejected since
	// notes are generated by the report pipeline, not by users.
	maxNoteRunes = 8000
)

// ChatGPTEmbedder turns coach note text into vectors via an
// OpenAI-compatible embeddings API.
type ChatGPTEmbedder struct {
	client *chatgpt.Client
	model  string
	logger *slog.Logger
}

// NewChatGPTEmbedder constructs an embedder backed by the ChatGPT client.
func NewChatGPTEmbedder(client *chatgpt.Client, model string, logger *slog.Logger) *ChatGPTEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatGPTEmbedder{
		client: client,
		model:  strings.TrimSpace(model),
		logger: logger.With("component", "llm.embedder.chatgpt"),
	}
}

var _ coach.Embedder = (*ChatGPTEmbedder)(nil)

// Embed requests embeddings for the given texts. Vectors come back in
// input order so callers can pair them with their notes positionally.
func (e *ChatGPTEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, text := range texts {
		note := clipNote(text)
		if note == "" {
			return nil, fmt.Errorf("embed: blank text at index %d", i)
		}
		if note != text {
			e.logger.Warn("note truncated for embedding", "index", i, "runes", utf8.RuneCountInString(text))
		}
		inputs[i] = note
	}

	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += maxNotesPerRequest {
		end := start + maxNotesPerRequest
		if end > len(inputs) {
			end = len(inputs)
		}
		vectors, err := e.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *ChatGPTEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
		Model: e.model,
		Input: batch,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("embed: sent %d texts, got %d vectors", len(batch), len(resp.Data))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		copy(vec, item.Embedding)
		vectors[i] = vec
	}
	return vectors, nil
}

// clipNote trims whitespace and caps the note length at a rune boundary.
func clipNote(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxNoteRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxNoteRunes]))
}
