// AngelaMos | 2026
// page_test.go

package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		query      string
		wantNumber int
		wantSize   int
		wantOffset int
	}{
		{query: "", wantNumber: 1, wantSize: DefaultPageSize, wantOffset: 0},
		{query: "?page=3&page_size=10", wantNumber: 3, wantSize: 10, wantOffset: 20},
		{query: "?page=-2&page_size=5000", wantNumber: 1, wantSize: MaxPageSize, wantOffset: 0},
		{query: "?page=abc&page_size=x", wantNumber: 1, wantSize: DefaultPageSize, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := PageFromQuery(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			if p.Number != tt.wantNumber || p.Size != tt.wantSize {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantNumber, tt.wantSize, p.Number, p.Size)
			}
			if p.Offset() != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, p.Offset())
			}
		})
	}
}
