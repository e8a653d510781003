package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"limitfree/config"
)

// LLMClient sends one system+user exchange and returns the reply text.
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	log         *zap.Logger
}

// NewLLMClient builds an OpenAI-compatible client for the configured provider.
// When the provider or its key is missing the returned client fails every call
// with ErrLLMUnavailable, so the rest of the API keeps working.
func NewLLMClient(cfg config.Config, log *zap.Logger) LLMClient {
	log = log.Named("LLMClient")
	provider, ok := cfg.LLMProviders[cfg.LLM.Provider]
	if !ok || provider.APIKey == "" || provider.BaseURL == "" {
		log.Warn("LLM provider not configured, AI features disabled", zap.String("provider", cfg.LLM.Provider))
		return unavailableLLM{}
	}

	oclient := openai.DefaultConfig(provider.APIKey)
	oclient.BaseURL = provider.BaseURL
	return &openAIClient{
		client:      openai.NewClientWithConfig(oclient),
		model:       cfg.LLM.Model,
		temperature: cfg.LLM.Temperature,
		maxTokens:   cfg.LLM.MaxTokens,
		timeout:     cfg.LLM.Timeout,
		log:         log,
	}
}

func (c *openAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.Error("Chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("chat completion with model %s failed: %w", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	c.log.Debug("Chat completion finished",
		zap.String("model", c.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}

type unavailableLLM struct{}

func (unavailableLLM) Complete(context.Context, string, string) (string, error) {
	return "", ErrLLMUnavailable
}
