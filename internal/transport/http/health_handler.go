package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"attendpulse/internal/infrastructure"
	"attendpulse/internal/services"
)

// HealthHandler reports process health and readiness.
type HealthHandler struct {
	data    *services.AttendanceService
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(data *services.AttendanceService) *HealthHandler {
	return &HealthHandler{data: data, started: time.Now()}
}

// HealthCheck handles GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dataLoaded := true
	if _, err := h.data.Current(); err != nil {
		dataLoaded = false
	}
	render.JSON(w, r, map[string]interface{}{
		"status":      "healthy",
		"service":     infrastructure.ServiceName,
		"version":     infrastructure.ServiceVersion,
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"data_loaded": dataLoaded,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// LivenessCheck handles GET /api/health/live.
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"status": "alive"})
}

// Version handles GET /api/version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"service": infrastructure.ServiceName,
		"version": infrastructure.ServiceVersion,
	})
}
