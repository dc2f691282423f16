package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// Pinger проверяет доступность хранилища. *sql.DB его реализует.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check отвечает {"ok":true}, если база отвечает, иначе 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("health check failed", slog.Any("error", err))
		errorResponse(w, r, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
		return
	}

	if err := writeJSON(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true}, nil); err != nil {
		slog.Error("failed to write response", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}
