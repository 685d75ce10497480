package handlers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lanceraa/api/internal/handlers"
	"github.com/lanceraa/api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestChatbot_Respond_Success(t *testing.T) {
	mock := &handlers.MockChatResponder{
		GetResponseFunc: func(ctx context.Context, message string) (string, error) {
			assert.Equal(t, "How do I get to the nearest hospital?", message)
			return "Turn left on Main Street 🏥", nil
		},
	}

	handler := handlers.NewChatbotHandler(mock)
	w := httptest.NewRecorder()
	handler.Respond(w, handlers.NewTestRequest(t, "POST", "/chatbot/response", handlers.ChatRequest{
		Role:    "user",
		Message: " How do I get to the nearest hospital? ",
	}))

	var resp handlers.ChatResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Turn left on Main Street 🏥", resp.Response)
}

func TestChatbot_Respond_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		errorCode string
	}{
		{"rate limit exhausted", models.ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"provider error", models.ErrUpstreamError, http.StatusBadGateway, "upstream_error"},
		{"local fault", models.ErrInternalServer, http.StatusInternalServerError, "internal_error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &handlers.MockChatResponder{
				GetResponseFunc: func(ctx context.Context, message string) (string, error) {
					return "", tt.err
				},
			}

			handler := handlers.NewChatbotHandler(mock)
			w := httptest.NewRecorder()
			handler.Respond(w, handlers.NewTestRequest(t, "POST", "/chatbot/response", handlers.ChatRequest{Role: "user", Message: "hi"}))

			handlers.AssertErrorResponse(t, w, tt.status, tt.errorCode)
		})
	}
}

func TestChatbot_Respond_Validation(t *testing.T) {
	handler := handlers.NewChatbotHandler(&handlers.MockChatResponder{})

	for _, req := range []handlers.ChatRequest{
		{Role: "assistant", Message: "hi"},
		{Role: "user", Message: ""},
		{Role: "user", Message: "   "},
	} {
		w := httptest.NewRecorder()
		handler.Respond(w, handlers.NewTestRequest(t, "POST", "/chatbot/response", req))
		handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	}
}

func TestChatbot_Respond_NotConfigured(t *testing.T) {
	handler := handlers.NewChatbotHandler(nil)
	w := httptest.NewRecorder()

	handler.Respond(w, handlers.NewTestRequest(t, "POST", "/chatbot/response", handlers.ChatRequest{Role: "user", Message: "hi"}))

	handlers.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "service_unavailable")
}

func TestHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("healthy", func(t *testing.T) {
		handler := handlers.NewHealthHandler(&handlers.MockPinger{}, "Lanceraa", "1.0.0", logger)
		w := httptest.NewRecorder()

		handler.Health(w, httptest.NewRequest("GET", "/health", nil))

		var resp handlers.HealthResponse
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, handlers.HealthResponse{Status: "healthy", Version: "1.0.0", AppName: "Lanceraa", Database: "connected"}, resp)
	})

	t.Run("database down", func(t *testing.T) {
		handler := handlers.NewHealthHandler(&handlers.MockPinger{Err: errors.New("connection refused")}, "Lanceraa", "1.0.0", logger)
		w := httptest.NewRecorder()

		handler.Health(w, httptest.NewRequest("GET", "/health", nil))

		var resp handlers.HealthResponse
		handlers.AssertJSONResponse(t, w, http.StatusServiceUnavailable, &resp)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "unreachable", resp.Database)
	})
}
