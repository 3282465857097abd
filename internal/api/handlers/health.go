package handlers

import (
	"context"
	"net/http"
	"tanker-dispatch-service/internal/platform/logger"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, when a database is wired, whether it
// answers a ping.
type HealthHandler struct {
	responder
	DB Pinger
}

func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{responder: responder{log: log}, DB: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{"status": "ok"}
	if h.DB == nil {
		h.writeJSON(w, r, http.StatusOK, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		h.log.Error(r.Context(), "health_check", "Database ping failed", err, nil)
		res["status"] = "degraded"
		res["database"] = "unreachable"
		h.writeJSON(w, r, http.StatusServiceUnavailable, res)
		return
	}

	res["database"] = "ok"
	h.writeJSON(w, r, http.StatusOK, res)
}
