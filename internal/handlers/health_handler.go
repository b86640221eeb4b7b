package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"github.com/gov-dx-sandbox/team-roster/internal/utils"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports store reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness checks against the member store
type HealthHandler struct {
	store        Pinger
	exposeDetail bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, exposeDetail bool) *HealthHandler {
	return &HealthHandler{store: store, exposeDetail: exposeDetail}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		resp := models.HealthResponse{Status: "unhealthy"}
		if h.exposeDetail {
			resp.Error = err.Error()
		}
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy"})
}
