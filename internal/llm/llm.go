package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/crediscore/pkg/config"
	"github.com/richxcame/crediscore/pkg/httpclient"
	"github.com/richxcame/crediscore/pkg/resilience"
	"github.com/richxcame/crediscore/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrNotConfigured is returned by a completer without credentials
	ErrNotConfigured = errors.New("completion service is not configured")
	// ErrNoJSON is returned when a completion contains no JSON object
	ErrNoJSON = errors.New("no JSON object in completion")
)

// Completer sends a system/user prompt pair and returns the raw reply
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAICompleter talks to an OpenAI-compatible chat completions endpoint
type OpenAICompleter struct {
	client      *httpclient.Client
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	breaker     *resilience.CircuitBreaker
}

// NewOpenAICompleter builds a completer. breaker may be nil; opts configure
// the underlying HTTP client (retries).
func NewOpenAICompleter(cfg config.CompletionConfig, breaker *resilience.CircuitBreaker, opts ...httpclient.Option) *OpenAICompleter {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAICompleter{
		client:      httpclient.NewClient(strings.TrimRight(cfg.BaseURL, "/"), timeout, opts...),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		breaker:     breaker,
	}
}

// Complete requests a JSON-object completion and returns the first choice
func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "llm.complete", attribute.String("llm.model", c.model))
	content, err := c.complete(ctx, systemPrompt, userPrompt)
	tracing.EndSpan(span, err)

	return content, err
}

func (c *OpenAICompleter) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	call := func(ctx context.Context) (interface{}, error) {
		return c.client.Post(ctx, "/chat/completions", req, headers)
	}

	var (
		raw interface{}
		err error
	)
	if c.breaker != nil {
		raw, err = c.breaker.Execute(ctx, call)
	} else {
		raw, err = call(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(raw.([]byte), &resp); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("completion error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("completion returned no content")
	}

	return resp.Choices[0].Message.Content, nil
}

// ExtractJSON strips markdown fences and surrounding prose and returns the
// outermost JSON object in content.
func ExtractJSON(content string) (string, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}

	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("%w: invalid JSON", ErrNoJSON)
	}
	return candidate, nil
}
