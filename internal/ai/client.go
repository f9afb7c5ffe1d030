// Package ai talks to the generative provider used for task summaries.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"taskflow/internal/config"
)

// ErrEmptyResponse is returned when the provider answers without content.
var ErrEmptyResponse = errors.New("provider returned no content")

// Provider completes a single prompt.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint. The
// default configuration targets Gemini's compatibility layer.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewProvider returns nil when no API key is configured.
func NewProvider(cfg config.AIConfig) *OpenAIProvider {
	if cfg.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, AI summaries are disabled")
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	// The context deadline bounds each call; the transport timeout is a backstop.
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout + 5*time.Second}

	slog.Info("Initializing AI provider", "model", cfg.Model, "base_url", clientCfg.BaseURL)
	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Complete sends prompt as a single user message. It makes exactly one
// attempt bounded by the configured timeout.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	slog.Debug("Requesting completion", "model", p.model)
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	slog.Debug("Received completion", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
