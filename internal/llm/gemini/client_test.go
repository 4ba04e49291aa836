package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-navigator/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient("secret-key", "", time.Second)
	require.NoError(t, err)
	c.baseURL = server.URL + "/v1beta/models"
	return c
}

func TestCompleteBuildsGenerateContentRequest(t *testing.T) {
	var got generateRequest
	var path, key string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"1. Problem "},{"text":"Analysis"}]}}]}`))
	})

	out, err := c.Complete(context.Background(), llm.Request{
		System:      "You are an operations expert.",
		Prompt:      "Scale a bakery",
		Temperature: 0.4,
		MaxTokens:   512,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Problem Analysis", out)
	assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", path)
	assert.Equal(t, "secret-key", key)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "You are an operations expert.", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "Scale a bakery", got.Contents[0].Parts[0].Text)
	assert.Equal(t, 512, got.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
}

func TestCompleteErrorStatusIsRetryable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	})
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini http status 500")
	assert.True(t, llm.ShouldRetry(err))
}

func TestCompleteEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "p"})
	assert.EqualError(t, err, "no content in Gemini response")
}

func TestRedact(t *testing.T) {
	err := redact(errors.New(`Post "https://x/models/m:generateContent?key=abc123": dial tcp`), "abc123")
	assert.False(t, strings.Contains(err.Error(), "abc123"))
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "gemini-pro", 0)
	assert.Error(t, err)
}
