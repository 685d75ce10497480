package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lanceraa/api/internal/auth"
	"github.com/lanceraa/api/internal/handlers"
	"github.com/lanceraa/api/internal/models"
	"github.com/lanceraa/api/internal/services"
	pkghttp "github.com/lanceraa/api/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAccountService answers the calls the route tests make. Any other
// method panics through the nil embedded interface.
type stubAccountService struct {
	handlers.AccountServiceInterface
	account *models.Account
}

func (s *stubAccountService) CheckEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (s *stubAccountService) GetCurrentAccount(ctx context.Context, accountID string) (*services.AccountView, error) {
	if s.account == nil || s.account.ID != accountID {
		return nil, models.ErrNotFound
	}
	return &services.AccountView{Account: s.account}, nil
}

type stubPinger struct{}

func (stubPinger) HealthCheck(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T, svc handlers.AccountServiceInterface, limits RateLimits) (chi.Router, *auth.TokenManager) {
	t.Helper()

	tm, err := auth.NewTokenManager("test-secret-at-least-16", "HS256", 30*time.Minute)
	require.NoError(t, err)

	ipConfig, err := pkghttp.NewIPConfig(nil)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(RouterConfig{
		Env:            "development",
		AllowedOrigins: []string{"http://localhost:3000"},
		IPConfig:       ipConfig,
		Logger:         logger,
	})
	RegisterRoutes(router,
		handlers.NewHealthHandler(stubPinger{}, "Lanceraa", "1.0.0", logger),
		handlers.NewAuthHandler(svc),
		handlers.NewChatbotHandler(nil),
		tm,
		ipConfig,
		limits,
	)
	return router, tm
}

func checkEmailRequest(remoteAddr string) *http.Request {
	req := httptest.NewRequest("POST", "/auth/check-email", strings.NewReader(`{"email":"a@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	return req
}

func TestRoutes_Health(t *testing.T) {
	router, _ := newTestRouter(t, &stubAccountService{}, RateLimits{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app_name":"Lanceraa"`)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRoutes_ProtectedRequireBearer(t *testing.T) {
	router, _ := newTestRouter(t, &stubAccountService{}, RateLimits{})

	for _, route := range []struct{ method, path string }{
		{"GET", "/auth/me"},
		{"POST", "/auth/logout"},
		{"POST", "/auth/signup/basic-info"},
		{"POST", "/auth/signup/contact-info"},
		{"POST", "/auth/signup/professional-info"},
		{"PUT", "/profile"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestRoutes_MeWithToken(t *testing.T) {
	account := &models.Account{ID: "acc-1", Handle: "alice", Email: "alice@example.com", Active: true}
	router, tm := newTestRouter(t, &stubAccountService{account: account}, RateLimits{})

	token, err := tm.IssueToken(account)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestRoutes_AuthRateLimited(t *testing.T) {
	router, _ := newTestRouter(t, &stubAccountService{}, RateLimits{Auth: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, checkEmailRequest("203.0.113.1:4000"))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRoutes_RateLimitIgnoresClientForwardingHeaders(t *testing.T) {
	router, _ := newTestRouter(t, &stubAccountService{}, RateLimits{Auth: 1})

	spoofed := []struct{ header, value string }{
		{"X-Real-IP", "10.0.0.1"},
		{"X-Real-IP", "10.0.0.2"},
		{"X-Forwarded-For", "10.0.0.3"},
		{"True-Client-IP", "10.0.0.4"},
	}
	codes := make([]int, 0, len(spoofed))
	for _, h := range spoofed {
		req := checkEmailRequest("203.0.113.9:4000")
		req.Header.Set(h.header, h.value)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRoutes_ChatbotUnconfigured(t *testing.T) {
	router, _ := newTestRouter(t, &stubAccountService{}, RateLimits{})

	req := httptest.NewRequest("POST", "/chatbot/response", strings.NewReader(`{"role":"user","message":"hi"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
