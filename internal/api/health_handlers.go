package api

import (
	"context"
	"net/http"
	"time"

	"github.com/hearthside/tourplan/internal/health"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	storage health.Checker
}

// NewHealthHandlers creates health handlers. storage may be nil when the
// in-memory backend is in use.
func NewHealthHandlers(storage health.Checker) *HealthHandlers {
	return &HealthHandlers{storage: storage}
}

type healthResponse struct {
	Status string `json:"status"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /health. It reports liveness only.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready handles GET /ready. It verifies the storage backend is reachable.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK
	if h.storage != nil {
		if err := h.storage.HealthCheck(ctx); err != nil {
			checks["storage"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	resp := readyResponse{Status: "ok", Checks: checks}
	if status != http.StatusOK {
		resp.Status = "unavailable"
	}
	WriteJSON(ctx, w, status, resp)
}
