package api

import (
	"net/http"
	"time"

	"github.com/lorekeep/lorekeep-research/internal/api/respond"
)

// HealthHandler reports service liveness. The service has no external
// storage dependency, so health is a static OK plus build info.
type HealthHandler struct {
	started time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{started: time.Now()}
}

// Check handles GET /v0/health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "research-service",
		"uptimeSec": int(time.Since(h.started).Seconds()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
