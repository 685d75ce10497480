package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	pkghttp "github.com/lanceraa/api/pkg/http"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	db      Pinger
	appName string
	version string
	logger  *slog.Logger
}

func NewHealthHandler(db Pinger, appName, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		appName: appName,
		version: version,
		logger:  logger,
	}
}

// Health returns 200 when the database answers and 503 otherwise
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		AppName:  h.appName,
		Database: "connected",
	}

	if err := h.db.HealthCheck(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		resp.Status = "unhealthy"
		resp.Database = "unreachable"
		pkghttp.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
