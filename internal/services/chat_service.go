package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lanceraa/api/internal/models"
	"github.com/lanceraa/api/pkg/retry"
)

const chatSystemPrompt = "You're a helpful map and navigation assistant for Tripo. " +
	"Provide concise answers (2 sentences max) with emojis when appropriate. " +
	"For non-map questions, politely respond: " +
	"'I specialize in location assistance. For other queries, please contact Tripo support.' 🗺️"

var errEmptyCompletion = errors.New("chat provider returned no choices")

type ChatServiceConfig struct {
	Model          string
	MaxTokens      int
	Temperature    float64
	MaxAttempts    int
	InitialBackoff time.Duration
}

// ChatService answers map and navigation questions through the completion
// provider. Calls rejected with 429 are retried with exponential backoff;
// every other failure ends the request at once.
type ChatService struct {
	client ChatCompletionClient
	config ChatServiceConfig
	logger *slog.Logger
	timer  backoff.Timer
}

func NewChatService(client ChatCompletionClient, config ChatServiceConfig, logger *slog.Logger) *ChatService {
	return &ChatService{
		client: client,
		config: config,
		logger: logger,
	}
}

func isRateLimited(err error) bool {
	var statusErr *UpstreamStatusError
	return errors.As(err, &statusErr) && statusErr.RateLimited()
}

// GetResponse returns the assistant reply to message
func (s *ChatService) GetResponse(ctx context.Context, message string) (string, error) {
	req := models.ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []models.ChatMessage{
			{Role: models.ChatRoleSystem, Content: chatSystemPrompt},
			{Role: models.ChatRoleUser, Content: message},
		},
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
		TopP:        1,
	}

	var reply string
	policy := retry.Policy{
		MaxAttempts:     s.config.MaxAttempts,
		InitialInterval: s.config.InitialBackoff,
		Multiplier:      2,
		Retryable:       isRateLimited,
		Timer:           s.timer,
		Notify: func(err error, wait time.Duration) {
			s.logger.Warn("chat provider rate limited, retrying",
				slog.Duration("wait", wait))
		},
	}

	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errEmptyCompletion
		}
		reply = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err == nil {
		return reply, nil
	}

	var statusErr *UpstreamStatusError
	switch {
	case errors.Is(err, retry.ErrExhausted):
		s.logger.Error("chat provider still rate limiting after retries", slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", models.ErrServiceUnavailable, models.ErrUpstreamRateLimited)
	case errors.As(err, &statusErr):
		s.logger.Error("chat provider error",
			slog.Int("status", statusErr.StatusCode),
			slog.Any("error", err))
		return "", models.ErrUpstreamError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "", err
	default:
		s.logger.Error("failed to generate chat response", slog.Any("error", err))
		return "", models.ErrInternalServer
	}
}
