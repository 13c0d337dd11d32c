package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/richxcame/crediscore/pkg/config"
	"github.com/richxcame/crediscore/pkg/httpclient"
	"github.com/richxcame/crediscore/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompleter(url, key string, opts ...httpclient.Option) *OpenAICompleter {
	return NewOpenAICompleter(config.CompletionConfig{
		APIKey:      key,
		BaseURL:     url,
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   500,
		Timeout:     time.Second,
	}, nil, opts...)
}

func TestOpenAICompleter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "json_object", req.ResponseFormat["type"])

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"documentType\":\"TAX_CERTIFICATE\"}"}}]}`))
	}))
	defer server.Close()

	content, err := newCompleter(server.URL+"/", "sk-test").Complete(context.Background(), "respond with JSON", "analyse")

	require.NoError(t, err)
	assert.Equal(t, `{"documentType":"TAX_CERTIFICATE"}`, content)
}

func TestOpenAICompleter_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"upstream 500", http.StatusInternalServerError, `{}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"api error", http.StatusOK, `{"error":{"message":"quota exceeded"}}`},
		{"garbage", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newCompleter(server.URL, "sk-test").Complete(context.Background(), "s", "u")
			assert.Error(t, err)
		})
	}
}

func TestOpenAICompleter_RetriesRateLimits(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	}))
	defer server.Close()

	retry := httpclient.WithRetry(resilience.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	})
	content, err := newCompleter(server.URL, "sk-test", retry).Complete(context.Background(), "s", "u")

	require.NoError(t, err)
	assert.Equal(t, "{}", content)
	assert.Equal(t, 2, attempts)
}

func TestOpenAICompleter_NotConfigured(t *testing.T) {
	_, err := newCompleter("http://unused", "").Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"bare fence", "```\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, false},
		{"prose around", "Here is the result: {\"a\":1} hope it helps", `{"a":1}`, false},
		{"no object", "I cannot read this document", "", true},
		{"broken", `{"a":`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSON)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}
