package chatgpt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	require.NoError(t, err)

	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "hello", resp.Choices[0].Message.Content)
	require.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestCreateChatCompletionErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	require.NoError(t, err)

	_, err = client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "gpt-4o-mini"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=429")
}

func TestCreateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	require.NoError(t, err)

	resp, err := client.CreateEmbedding(context.Background(), EmbeddingRequest{
		Model: "text-embedding-3-small",
		Input: []string{"weekly report"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, resp.Data[0].Embedding)
}

func TestCreateChatCompletionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\",\"content\":\"Solid \"}}]}\n\n")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"week.\"}}]}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := NewClient("test-key", server.URL)
	require.NoError(t, err)

	stream, err := client.CreateChatCompletionStream(context.Background(), ChatCompletionRequest{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	defer stream.Close()

	first, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "Solid ", first.Choices[0].Delta.Content)

	second, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "week.", second.Choices[0].Delta.Content)

	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "")
	require.Error(t, err)
}
