// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/health"
)

// Pool reports connection pool counters for one backing service.
type Pool struct {
	Name  string
	Stats func() any
}

func DatabasePool(stats func() sql.DBStats) Pool {
	return Pool{Name: "database", Stats: func() any {
		s := stats()
		return map[string]any{
			"max_open":       s.MaxOpenConnections,
			"open":           s.OpenConnections,
			"in_use":         s.InUse,
			"idle":           s.Idle,
			"wait_count":     s.WaitCount,
			"wait_duration":  s.WaitDuration.String(),
			"closed_idle":    s.MaxIdleClosed + s.MaxIdleTimeClosed,
			"closed_expired": s.MaxLifetimeClosed,
		}
	}}
}

func RedisPool(stats func() *redis.PoolStats) Pool {
	return Pool{Name: "redis", Stats: func() any {
		s := stats()
		return map[string]any{
			"hits":     s.Hits,
			"misses":   s.Misses,
			"timeouts": s.Timeouts,
			"total":    s.TotalConns,
			"idle":     s.IdleConns,
			"stale":    s.StaleConns,
		}
	}}
}

type Handler struct {
	users   UserLister
	sales   SaleLister
	checker *health.Checker
	pools   []Pool
}

func NewHandler(
	users UserLister,
	sales SaleLister,
	checker *health.Checker,
	pools ...Pool,
) *Handler {
	return &Handler{users: users, sales: sales, checker: checker, pools: pools}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/system", h.GetSystem)
		r.Get("/system/{component}", h.GetComponent)
	})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	sales, err := h.sales.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToDashboardResponse(ComputeKPIs(users, sales)))
}

type ComponentStatus struct {
	health.Result
	Pool any `json:"pool,omitempty"`
}

type SystemResponse struct {
	Status     string            `json:"status"`
	Components []ComponentStatus `json:"components"`
	Runtime    RuntimeStats      `json:"runtime"`
}

func (h *Handler) GetSystem(w http.ResponseWriter, r *http.Request) {
	status, components := h.components(r.Context())

	core.OK(w, SystemResponse{
		Status:     status,
		Components: components,
		Runtime:    readRuntimeStats(),
	})
}

func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "component")
	if name == "runtime" {
		core.OK(w, readRuntimeStats())
		return
	}

	_, components := h.components(r.Context())
	for _, c := range components {
		if c.Name == name {
			core.OK(w, c)
			return
		}
	}

	core.NotFound(w, "component")
}

func (h *Handler) components(ctx context.Context) (string, []ComponentStatus) {
	report := health.Report{Status: health.StatusOK}
	if h.checker != nil {
		report = h.checker.Run(ctx)
	}

	out := make([]ComponentStatus, 0, len(report.Checks))
	for _, res := range report.Checks {
		out = append(out, ComponentStatus{Result: res})
	}

	for _, p := range h.pools {
		idx := -1
		for i := range out {
			if out[i].Name == p.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, ComponentStatus{Result: health.Result{Name: p.Name}})
			idx = len(out) - 1
		}
		out[idx].Pool = p.Stats()
	}

	return report.Status, out
}

type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapBytes  uint64 `json:"heap_bytes"`
	SysBytes   uint64 `json:"sys_bytes"`
	GCCycles   uint32 `json:"gc_cycles"`
}

func readRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapBytes:  m.HeapAlloc,
		SysBytes:   m.Sys,
		GCCycles:   m.NumGC,
	}
}
