package embedder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/lunarfit/coach-api/internal/infra/llm/chatgpt"
)

// embeddingServer echoes one vector per input, encoding the running
// input index so tests can verify ordering across requests.
func embeddingServer(t *testing.T, requests *[][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatgpt.EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		offset := 0
		for _, prev := range *requests {
			offset += len(prev)
		}
		*requests = append(*requests, req.Input)

		var b strings.Builder
		b.WriteString(`{"data":[`)
		for i := range req.Input {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"embedding":[%d]}`, offset+i)
		}
		b.WriteString(`]}`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(b.String()))
	}))
}

func newTestEmbedder(t *testing.T, baseURL string) *ChatGPTEmbedder {
	t.Helper()
	client, err := chatgpt.NewClient("test-key", baseURL)
	require.NoError(t, err)
	return NewChatGPTEmbedder(client, "text-embedding-3-small", nil)
}

func TestEmbedBatchesByNoteCount(t *testing.T) {
	var requests [][]string
	server := embeddingServer(t, &requests)
	defer server.Close()

	texts := make([]string, maxNotesPerRequest+5)
	for i := range texts {
		texts[i] = fmt.Sprintf("note %d", i)
	}

	vectors, err := newTestEmbedder(t, server.URL).Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	require.Len(t, requests[0], maxNotesPerRequest)
	require.Len(t, requests[1], 5)

	require.Len(t, vectors, len(texts))
	for i, vec := range vectors {
		require.Equal(t, []float32{float32(i)}, vec)
	}
}

func TestEmbedRejectsBlankNote(t *testing.T) {
	var requests [][]string
	server := embeddingServer(t, &requests)
	defer server.Close()

	_, err := newTestEmbedder(t, server.URL).Embed(context.Background(), []string{"fine", "   "})
	require.Error(t, err)
	require.Contains(t, err.Error(), "blank text at index 1")
	require.Empty(t, requests)
}

func TestEmbedClipsOversizedNote(t *testing.T) {
	var requests [][]string
	server := embeddingServer(t, &requests)
	defer server.Close()

	long := strings.Repeat("a", maxNoteRunes+500)
	vectors, err := newTestEmbedder(t, server.URL).Embed(context.Background(), []string{long})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	require.Len(t, requests, 1)
	require.Equal(t, maxNoteRunes, utf8.RuneCountInString(requests[0][0]))
}

func TestEmbedErrorsOnVectorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.1]}]}`))
	}))
	defer server.Close()

	_, err := newTestEmbedder(t, server.URL).Embed(context.Background(), []string{"one", "two"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "sent 2 texts, got 1 vectors")
}

func TestEmbedNoTextsReturnsNil(t *testing.T) {
	vectors, err := newTestEmbedder(t, "http://unused.invalid").Embed(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, vectors)
}
