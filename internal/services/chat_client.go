package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lanceraa/api/internal/models"
)

// ChatCompletionClient sends one completion request to the provider
type ChatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error)
}

// UpstreamStatusError is returned when the provider answers with a non-2xx status
type UpstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("chat provider returned %d", e.StatusCode)
	}
	return fmt.Sprintf("chat provider returned %d: %s", e.StatusCode, e.Body)
}

// RateLimited reports whether the provider rejected the call with 429
func (e *UpstreamStatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

type ChatClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// RestyChatClient talks to an OpenAI-compatible /chat/completions endpoint
type RestyChatClient struct {
	client *resty.Client
}

func NewChatClient(cfg ChatClientConfig) *RestyChatClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &RestyChatClient{client: cli}
}

func (c *RestyChatClient) CreateChatCompletion(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	var out models.ChatCompletionResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}

	if resp.IsError() {
		return nil, &UpstreamStatusError{
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(string(resp.Body())),
		}
	}

	return &out, nil
}
