package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAISDKClient_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-sdk", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"grounded answer"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	client := NewOpenAISDKClient(ChatConfig{BaseURL: srv.URL + "/v1", APIKey: "sk-sdk", Model: "gpt-test"})
	answer, err := client.Generate(context.Background(), "question", GenerationConfig{Temperature: 0.2, TopP: 0.8, TopK: 40, MaxOutputTokens: 1024})
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)

	assert.Equal(t, "gpt-test", got["model"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
	assert.EqualValues(t, 1024, got["max_tokens"])
	_, hasTopK := got["top_k"]
	assert.False(t, hasTopK)
}

func TestOpenAISDKClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAISDKClient(ChatConfig{BaseURL: srv.URL, APIKey: "nope"}).Generate(context.Background(), "q", GenerationConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai chat completion failed")
}
