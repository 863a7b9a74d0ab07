// AngelaMos | 2026
// handler.go

package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// Handler serves the orchestrator probes. Both fail once draining starts
// so the load balancer stops routing before the listener closes.
type Handler struct {
	checker  *Checker
	draining atomic.Bool
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.draining.Load() {
		writeProbe(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	writeProbe(w, http.StatusOK, map[string]string{"status": StatusOK})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		writeProbe(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}

	report := h.checker.Run(r.Context())
	writeProbe(w, report.HTTPStatus(), report)
}

// SetShutdown marks the instance as draining.
func (h *Handler) SetShutdown(draining bool) {
	h.draining.Store(draining)
}

func writeProbe(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(body)
}
