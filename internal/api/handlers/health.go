package handlers

import (
	"database/sql"
	"net/http"

	"github.com/tradepulse/backend/internal/pkg/utils"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new health handler. db may be nil when the
// run-history store is disabled.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz reports process liveness
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness, including the run-history store
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "run-history store unreachable",
			})
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
