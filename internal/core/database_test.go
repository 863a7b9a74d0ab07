// AngelaMos | 2026
// database_test.go

package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert sale: %w", &pgconn.PgError{Code: "23505"})
	foreign := &pgconn.PgError{Code: "23503"}
	plain := errors.New("boom")

	if !IsDuplicateKeyError(unique) {
		t.Error("expected wrapped unique violation to be detected")
	}
	if IsDuplicateKeyError(foreign) || IsDuplicateKeyError(plain) {
		t.Error("expected only unique violations to count as duplicates")
	}
	if !IsForeignKeyError(foreign) {
		t.Error("expected foreign key violation to be detected")
	}
	if IsForeignKeyError(nil) {
		t.Error("expected nil to be no error")
	}
}

func TestWithJitter(t *testing.T) {
	if got := withJitter(0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}

	base := time.Hour
	for range 50 {
		got := withJitter(base)
		if got < base || got > base+base/10 {
			t.Fatalf("expected jitter within 10%%, got %v", got)
		}
	}
}

func TestRedisKey(t *testing.T) {
	tests := []struct {
		namespace string
		parts     []string
		want      string
	}{
		{namespace: "", parts: []string{"auth", "blacklist", "j1"}, want: "auth:blacklist:j1"},
		{namespace: "fp", parts: []string{"ratelimit"}, want: "fp:ratelimit"},
		{namespace: "fp", parts: nil, want: "fp"},
	}

	for _, tt := range tests {
		r := &Redis{namespace: tt.namespace}
		if got := r.Key(tt.parts...); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
