// AngelaMos | 2026
// handler_test.go

package checkout

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/middleware"
	"github.com/carterperez-dev/facilitypass/internal/pix"
)

func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter(f *fixture, userID string) chi.Router {
	r := chi.NewRouter()
	NewHandler(f.svc, "facility_ref").RegisterRoutes(r, asUser(userID))
	return r
}

func TestHandlerStartUsesReferralCookie(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout/",
		strings.NewReader(`{"plan_id":"quarterly","method":"PIX"}`))
	req.AddCookie(&http.Cookie{Name: "facility_ref", Value: "ANA123"})
	rec := httptest.NewRecorder()

	newRouter(f, "buyer").ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data StartResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Amount != "139.90" || body.Data.QRCode == "" {
		t.Errorf("unexpected response %+v", body.Data)
	}
	if got := f.pending[body.Data.PaymentID].ReferralCode; got != "ANA123" {
		t.Errorf("expected referral code from cookie, got %q", got)
	}
}

func TestHandlerStartValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "malformed json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing method", body: `{"plan_id":"quarterly"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown method", body: `{"plan_id":"quarterly","method":"BOLETO"}`, wantStatus: http.StatusBadRequest},
		{name: "archived plan", body: `{"plan_id":"legacy","method":"PIX"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown plan", body: `{"plan_id":"missing","method":"PIX"}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/checkout/", strings.NewReader(tt.body))

			newRouter(f, "buyer").ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandlerVerify(t *testing.T) {
	f := newFixture(t)
	paymentID := startCheckout(t, f, "buyer", "")
	f.processor.status = pix.StatusApproved

	rec := httptest.NewRecorder()
	newRouter(f, "aff").ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/checkout/"+paymentID+"/verify", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another user, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newRouter(f, "buyer").ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/checkout/"+paymentID+"/verify", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"completed":true`) {
		t.Errorf("expected completed purchase, got %s", rec.Body.String())
	}
}

func TestHandlerOptions(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()

	newRouter(f, "buyer").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout/options", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"methods":["PIX"]`) {
		t.Errorf("expected PIX method, got %s", rec.Body.String())
	}
}
