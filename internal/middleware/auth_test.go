// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(context.Context, string) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func TestAuthenticator(t *testing.T) {
	client := &AccessTokenClaims{ID: "jti-1", UserID: "u1", Role: "CLIENT"}

	tests := []struct {
		name       string
		header     string
		verifier   stubVerifier
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "expired",
			header:     "Bearer tok",
			verifier:   stubVerifier{err: fmt.Errorf("verify: %w", core.ErrTokenExpired)},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_EXPIRED",
		},
		{
			name:       "revoked",
			header:     "Bearer tok",
			verifier:   stubVerifier{err: fmt.Errorf("verify: %w", core.ErrTokenRevoked)},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "TOKEN_REVOKED",
		},
		{
			name:       "store failure is not a token problem",
			header:     "Bearer tok",
			verifier:   stubVerifier{err: errors.New("connection reset")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "valid",
			header:     "bearer tok",
			verifier:   stubVerifier{claims: client},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *AccessTokenClaims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetClaims(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			Authenticator(tt.verifier)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, rec); code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, code)
				}
				return
			}
			if seen != client {
				t.Error("expected claims in request context")
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		claims *AccessTokenClaims
		want   int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "client", claims: &AccessTokenClaims{UserID: "u1", Role: "CLIENT"}, want: http.StatusForbidden},
		{name: "admin", claims: &AccessTokenClaims{UserID: "a1", Role: RoleAdmin}, want: http.StatusOK},
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()

			RequireAdmin(ok).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
