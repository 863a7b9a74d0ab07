// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/health"
)

func newSystemRouter() *chi.Mux {
	checker := health.NewChecker(time.Second,
		health.Check{Name: "database", Ping: func(context.Context) error { return nil }, Critical: true},
		health.Check{Name: "payments", Ping: func(context.Context) error { return errors.New("no gateway") }},
	)
	h := NewHandler(staticUsers(nil), staticSales(nil), checker,
		DatabasePool(func() sql.DBStats { return sql.DBStats{OpenConnections: 3, InUse: 1} }),
	)

	passthrough := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough)
	return r
}

func TestGetSystem(t *testing.T) {
	rec := httptest.NewRecorder()
	newSystemRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/system", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data SystemResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}

	if body.Data.Status != health.StatusDegraded {
		t.Errorf("expected degraded, got %s", body.Data.Status)
	}
	if len(body.Data.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(body.Data.Components))
	}
	db := body.Data.Components[0]
	if db.Name != "database" || !db.Healthy || db.Pool == nil {
		t.Errorf("expected healthy database with pool stats, got %+v", db)
	}
	if body.Data.Runtime.GoVersion == "" {
		t.Error("expected runtime stats")
	}
}

func TestGetComponent(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{path: "/admin/system/database", want: http.StatusOK},
		{path: "/admin/system/runtime", want: http.StatusOK},
		{path: "/admin/system/kafka", want: http.StatusNotFound},
	}

	router := newSystemRouter()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
