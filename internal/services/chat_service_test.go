package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/lanceraa/api/internal/models"
	"github.com/lanceraa/api/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockChatClient implements ChatCompletionClient for testing
type MockChatClient struct {
	CreateChatCompletionFunc func(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error)
	Calls                    int
	LastRequest              models.ChatCompletionRequest
}

func (m *MockChatClient) CreateChatCompletion(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	m.Calls++
	m.LastRequest = req
	if m.CreateChatCompletionFunc != nil {
		return m.CreateChatCompletionFunc(ctx, req)
	}
	return completion("ok"), nil
}

type instantTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func completion(content string) *models.ChatCompletionResponse {
	return &models.ChatCompletionResponse{
		ID: "cmpl-1",
		Choices: []models.ChatCompletionChoice{
			{Message: models.ChatMessage{Role: models.ChatRoleAssistant, Content: content}},
		},
	}
}

func newTestChatService(client ChatCompletionClient) (*ChatService, *instantTimer) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewChatService(client, ChatServiceConfig{
		Model:          "llama3-8b-8192",
		MaxTokens:      150,
		Temperature:    0.7,
		MaxAttempts:    3,
		InitialBackoff: time.Second,
	}, logger)
	timer := newInstantTimer()
	svc.timer = timer
	return svc, timer
}

func rateLimited() error {
	return &UpstreamStatusError{StatusCode: http.StatusTooManyRequests, Body: "slow down"}
}

func TestChatService_GetResponse_Success(t *testing.T) {
	client := &MockChatClient{
		CreateChatCompletionFunc: func(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
			return completion("  Head north on Main St 🧭 "), nil
		},
	}
	svc, timer := newTestChatService(client)

	reply, err := svc.GetResponse(context.Background(), "Where is the station?")

	require.NoError(t, err)
	assert.Equal(t, "Head north on Main St 🧭", reply)
	assert.Equal(t, 1, client.Calls)
	assert.Empty(t, timer.waits)

	req := client.LastRequest
	assert.Equal(t, "llama3-8b-8192", req.Model)
	assert.Equal(t, 150, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 1.0, req.TopP)
	assert.False(t, req.Stream)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, models.ChatRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "I specialize in location assistance")
	assert.Equal(t, models.ChatMessage{Role: models.ChatRoleUser, Content: "Where is the station?"}, req.Messages[1])
}

func TestChatService_GetResponse_RecoversAfterRateLimit(t *testing.T) {
	client := &MockChatClient{}
	client.CreateChatCompletionFunc = func(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
		if client.Calls < 3 {
			return nil, rateLimited()
		}
		return completion("Turn left 🏥"), nil
	}
	svc, timer := newTestChatService(client)

	reply, err := svc.GetResponse(context.Background(), "nearest hospital?")

	require.NoError(t, err)
	assert.Equal(t, "Turn left 🏥", reply)
	assert.Equal(t, 3, client.Calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, timer.waits)
}

func TestChatService_GetResponse_ExhaustedRateLimit(t *testing.T) {
	client := &MockChatClient{
		CreateChatCompletionFunc: func(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
			return nil, rateLimited()
		},
	}
	svc, timer := newTestChatService(client)

	_, err := svc.GetResponse(context.Background(), "hi")

	assert.ErrorIs(t, err, models.ErrServiceUnavailable)
	assert.ErrorIs(t, err, models.ErrUpstreamRateLimited)
	assert.Equal(t, 3, client.Calls)
	// the budget in ChatConfig.MaxResponseTime assumes no wait after the last attempt
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, timer.waits)
}

func TestChatService_GetResponse_UpstreamErrorNotRetried(t *testing.T) {
	client := &MockChatClient{
		CreateChatCompletionFunc: func(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
			return nil, &UpstreamStatusError{StatusCode: http.StatusInternalServerError}
		},
	}
	svc, timer := newTestChatService(client)

	_, err := svc.GetResponse(context.Background(), "hi")

	assert.ErrorIs(t, err, models.ErrUpstreamError)
	assert.Equal(t, 1, client.Calls)
	assert.Empty(t, timer.waits)
}

func TestChatService_GetResponse_LocalFaults(t *testing.T) {
	tests := []struct {
		name string
		resp *models.ChatCompletionResponse
		err  error
	}{
		{"transport error", nil, errors.New("dial tcp: connection refused")},
		{"no choices", &models.ChatCompletionResponse{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockChatClient{
				CreateChatCompletionFunc: func(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
					return tt.resp, tt.err
				},
			}
			svc, _ := newTestChatService(client)

			_, err := svc.GetResponse(context.Background(), "hi")

			assert.ErrorIs(t, err, models.ErrInternalServer)
			assert.Equal(t, 1, client.Calls)
		})
	}
}

func TestChatService_GetResponse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &MockChatClient{
		CreateChatCompletionFunc: func(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
			cancel()
			return nil, rateLimited()
		},
	}
	svc, _ := newTestChatService(client)

	_, err := svc.GetResponse(ctx, "hi")

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, retry.ErrExhausted)
}
