package handlers

import (
	"context"
	"net/http"
	"strings"

	pkghttp "github.com/lanceraa/api/pkg/http"
)

// ChatResponder produces assistant replies
type ChatResponder interface {
	GetResponse(ctx context.Context, message string) (string, error)
}

// ChatbotHandler serves the map assistant endpoint
type ChatbotHandler struct {
	service ChatResponder
}

// NewChatbotHandler creates a ChatbotHandler. A nil service means the
// provider is not configured and every request gets 503.
func NewChatbotHandler(service ChatResponder) *ChatbotHandler {
	return &ChatbotHandler{service: service}
}

// Respond answers a single user message
// @Router /chatbot/response [post]
func (h *ChatbotHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		pkghttp.WriteServiceUnavailable(w, "Chatbot service unavailable")
		return
	}

	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		pkghttp.WriteBadRequest(w, "validation failed: message: this field is required")
		return
	}

	reply, err := h.service.GetResponse(r.Context(), message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ChatResponse{Response: reply})
}
