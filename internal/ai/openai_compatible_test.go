package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatibleClient_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  The budget is $5000.  "}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(ChatConfig{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", Model: "qwen-test"})
	answer, err := client.Generate(context.Background(), "what is the budget?", GenerationConfig{
		Temperature:     0.2,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "  The budget is $5000.  ", answer)

	assert.Equal(t, "qwen-test", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
	assert.InDelta(t, 0.8, got["top_p"], 1e-6)
	assert.EqualValues(t, 40, got["top_k"])
	assert.EqualValues(t, 1024, got["max_tokens"])

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	assert.Equal(t, "what is the budget?", messages[0].(map[string]any)["content"])
}

func TestOpenAICompatibleClient_OmitsZeroParams(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAICompatibleClient(ChatConfig{BaseURL: srv.URL, Model: "m"})
	_, err := client.Generate(context.Background(), "Hello", GenerationConfig{})
	require.NoError(t, err)

	for _, key := range []string{"temperature", "top_p", "top_k", "max_tokens"} {
		_, present := got[key]
		assert.False(t, present, "%s should be omitted", key)
	}
}

func TestOpenAICompatibleClient_NoChoicesIsEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	answer, err := NewOpenAICompatibleClient(ChatConfig{BaseURL: srv.URL}).Generate(context.Background(), "q", GenerationConfig{})
	require.NoError(t, err)
	assert.Empty(t, answer)
}

func TestOpenAICompatibleClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"slow down"}`))
		}))
		defer srv.Close()

		_, err := NewOpenAICompatibleClient(ChatConfig{BaseURL: srv.URL}).Generate(context.Background(), "q", GenerationConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm response status 429")
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewOpenAICompatibleClient(ChatConfig{BaseURL: srv.URL}).Generate(context.Background(), "q", GenerationConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse llm json failed")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		client := NewOpenAICompatibleClient(ChatConfig{BaseURL: url, Timeout: 2 * time.Second})
		_, err := client.Generate(context.Background(), "q", GenerationConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm request failed")
	})
}
