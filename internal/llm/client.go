// Package llm talks to the OpenAI-compatible completion API and turns raw
// model output into structured file verdicts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/config"
	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

// Client implements core.Completer against any OpenAI-compatible endpoint.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// NewClient creates the completion client from config.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	apiCfg.BaseURL = cfg.LLMAPIURL

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.LLMModel,
		maxTokens:   cfg.LLMMaxTokens,
		temperature: float32(cfg.LLMTemperature),
		logger:      logger,
	}
}

// Model returns the configured model name for audit records.
func (c *Client) Model() string { return c.model }

// Complete sends one system+user exchange and returns the raw response
// text with token accounting. Transport failures, rate limits, 5xx and
// empty responses come back wrapped as transient.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (core.Completion, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return core.Completion{}, classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return core.Completion{}, core.Transient(fmt.Errorf("empty completion response"))
	}

	return core.Completion{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// classify decides retry eligibility for an API error. Rate limits, server
// errors, timeouts and connection failures are transient; auth and request
// errors are permanent. Caller cancellation is passed through untouched.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return core.Transient(err)
		}
		return err
	}

	// Everything else at this point is transport-level: timeouts, DNS,
	// connection resets.
	return core.Transient(err)
}
