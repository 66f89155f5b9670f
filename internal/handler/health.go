package handler

import (
	"net/http"
	"time"

	"github.com/universal-crud/backend-go/internal/database"
	"github.com/universal-crud/backend-go/internal/respond"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	db      *database.DB
	started time.Time
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respond.Error(w, http.StatusServiceUnavailable, "Database unreachable")
		return
	}
	respond.JSON(w, http.StatusOK, "", map[string]any{
		"status":   "ok",
		"database": h.db.Dialect().Name(),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
