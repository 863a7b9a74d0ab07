// AngelaMos | 2026
// service_test.go

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type fakeStore struct {
	gateways map[string]*Gateway
	order    []string
}

func newFakeStore(gateways ...Gateway) *fakeStore {
	f := &fakeStore{gateways: map[string]*Gateway{}}
	for i := range gateways {
		g := gateways[i]
		f.gateways[g.ID] = &g
		f.order = append(f.order, g.ID)
	}
	return f
}

func (f *fakeStore) WithinLock(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeStore) Create(_ context.Context, gw *Gateway) error {
	cp := *gw
	f.gateways[gw.ID] = &cp
	f.order = append(f.order, gw.ID)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*Gateway, error) {
	g, ok := f.gateways[id]
	if !ok {
		return nil, fmt.Errorf("get gateway: %w", core.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context) ([]Gateway, error) {
	out := make([]Gateway, 0, len(f.order))
	for _, id := range f.order {
		if g, ok := f.gateways[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEnabled(ctx context.Context) ([]Gateway, error) {
	all, _ := f.List(ctx)
	var out []Gateway
	for _, g := range all {
		if g.IsEnabled {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, gw *Gateway) error {
	if _, ok := f.gateways[gw.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *gw
	f.gateways[gw.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.gateways[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.gateways, id)
	return nil
}

func (f *fakeStore) CountEnabledExcluding(_ context.Context, excludeID string) (int, error) {
	n := 0
	for id, g := range f.gateways {
		if g.IsEnabled && id != excludeID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) enabledCount() int {
	n, _ := f.CountEnabledExcluding(context.Background(), "")
	return n
}

func gw(id string, enabled bool, methods ...string) Gateway {
	return Gateway{
		ID:        id,
		Title:     id,
		Provider:  ProviderMercadoPago,
		IsEnabled: enabled,
		Methods:   methods,
	}
}

func threeEnabled() *fakeStore {
	return newFakeStore(
		gw("a", true, MethodPix),
		gw("b", true, MethodCreditCard),
		gw("c", true, MethodCrypto),
		gw("d", false, MethodPix),
	)
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, store, NewGuard(DefaultLimit))
}

func TestGuardCheckActivation(t *testing.T) {
	g := NewGuard(3)

	for enabled := 0; enabled < 3; enabled++ {
		if err := g.CheckActivation(enabled); err != nil {
			t.Errorf("expected %d enabled to allow activation, got %v", enabled, err)
		}
	}
	for _, enabled := range []int{3, 4, 10} {
		if err := g.CheckActivation(enabled); !errors.Is(err, ErrGatewayLimitExceeded) {
			t.Errorf("expected %d enabled to be rejected, got %v", enabled, err)
		}
	}

	if err := NewGuard(5).CheckActivation(5); !errors.Is(err, ErrGatewayLimitExceeded) {
		t.Errorf("expected custom limit error to match sentinel, got %v", err)
	}
	if NewGuard(0).Limit != DefaultLimit {
		t.Error("expected non-positive limit to fall back to the default")
	}
}

func TestUpdateRejectsFourthEnabledGateway(t *testing.T) {
	store := threeEnabled()
	svc := newTestService(store)

	enable := true
	title := "renamed"
	_, err := svc.Update(context.Background(), "d", UpdateGatewayRequest{
		Title:     &title,
		IsEnabled: &enable,
	})

	if !errors.Is(err, ErrGatewayLimitExceeded) {
		t.Fatalf("expected ErrGatewayLimitExceeded, got %v", err)
	}
	if store.gateways["d"].IsEnabled || store.gateways["d"].Title != "d" {
		t.Errorf("expected gateway d untouched, got %+v", store.gateways["d"])
	}
	if store.enabledCount() != 3 {
		t.Errorf("expected 3 enabled gateways, got %d", store.enabledCount())
	}
}

func TestAllEnablePathsShareTheGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("create pre-enabled", func(t *testing.T) {
		store := threeEnabled()
		_, err := newTestService(store).Create(ctx, CreateGatewayRequest{
			Title:     "new",
			Provider:  ProviderStripe,
			IsEnabled: true,
			Methods:   []string{MethodCreditCard},
		})
		if !errors.Is(err, ErrGatewayLimitExceeded) {
			t.Fatalf("expected ErrGatewayLimitExceeded, got %v", err)
		}
		if len(store.gateways) != 4 {
			t.Errorf("expected nothing written, got %d gateways", len(store.gateways))
		}
	})

	t.Run("create disabled", func(t *testing.T) {
		store := threeEnabled()
		created, err := newTestService(store).Create(ctx, CreateGatewayRequest{
			Title:    "new",
			Provider: ProviderStripe,
			Methods:  []string{MethodCreditCard, MethodCreditCard},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(created.Methods) != 1 {
			t.Errorf("expected duplicate methods collapsed, got %v", created.Methods)
		}
	})

	t.Run("toggle", func(t *testing.T) {
		store := threeEnabled()
		if _, err := newTestService(store).Toggle(ctx, "d"); !errors.Is(err, ErrGatewayLimitExceeded) {
			t.Fatalf("expected ErrGatewayLimitExceeded, got %v", err)
		}
		if store.gateways["d"].IsEnabled {
			t.Error("expected d to stay disabled")
		}
	})
}

func TestDisableThenEnableAnother(t *testing.T) {
	store := threeEnabled()
	svc := newTestService(store)
	ctx := context.Background()

	off, err := svc.Toggle(ctx, "a")
	if err != nil || off.IsEnabled {
		t.Fatalf("expected a disabled, got %+v, %v", off, err)
	}

	on, err := svc.Toggle(ctx, "d")
	if err != nil {
		t.Fatalf("expected d to be enabled, got %v", err)
	}
	if !on.IsEnabled || store.enabledCount() != 3 {
		t.Errorf("expected 3 enabled after swap, got %d", store.enabledCount())
	}

	if _, err := svc.Toggle(ctx, "a"); !errors.Is(err, ErrGatewayLimitExceeded) {
		t.Errorf("expected re-enabling a to be rejected, got %v", err)
	}
}

func TestEditingEnabledGatewayKeepsItEnabled(t *testing.T) {
	store := threeEnabled()
	svc := newTestService(store)

	enable := true
	title := "primary"
	updated, err := svc.Update(context.Background(), "a", UpdateGatewayRequest{
		Title:     &title,
		IsEnabled: &enable,
	})
	if err != nil {
		t.Fatalf("expected edit of an enabled gateway to pass the guard, got %v", err)
	}
	if updated.Title != "primary" {
		t.Errorf("expected title primary, got %s", updated.Title)
	}
}

func TestEnabledMethodsAndFindEnabled(t *testing.T) {
	store := newFakeStore(
		gw("card", true, MethodCreditCard),
		gw("pix-off", false, MethodPix),
		gw("pix-on", true, MethodPix, MethodCreditCard),
	)
	svc := newTestService(store)
	ctx := context.Background()

	methods, err := svc.EnabledMethods(ctx)
	if err != nil {
		t.Fatalf("EnabledMethods() error: %v", err)
	}
	if strings.Join(methods, ",") != "PIX,CREDIT_CARD" {
		t.Errorf("expected PIX,CREDIT_CARD, got %v", methods)
	}

	found, ok, err := svc.FindEnabled(ctx, ProviderMercadoPago, MethodPix)
	if err != nil || !ok {
		t.Fatalf("expected an enabled pix gateway, got ok=%v err=%v", ok, err)
	}
	if found.ID != "pix-on" {
		t.Errorf("expected pix-on, got %s", found.ID)
	}

	if _, ok, _ := svc.FindEnabled(ctx, ProviderStripe, MethodPix); ok {
		t.Error("expected no stripe pix gateway")
	}
}

func TestHandlerToggleReportsLimit(t *testing.T) {
	store := threeEnabled()
	h := NewHandler(newTestService(store))

	passthrough := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	h.RegisterAdminRoutes(r, passthrough, passthrough)

	req := httptest.NewRequest(http.MethodPost, "/admin/gateways/d/toggle", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "GATEWAY_LIMIT_EXCEEDED") {
		t.Errorf("expected limit code in body, got %s", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/gateways/missing", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateWithEchoedCredentialsKeepsSecrets(t *testing.T) {
	stored := gw("mp", true, MethodPix)
	stored.Credentials = Credentials{
		"access_token": "APP_USR-secret-1234",
		"public_key":   "APP_USR-pub-9876",
	}
	store := newFakeStore(stored)
	svc := newTestService(store)
	ctx := context.Background()

	current, err := svc.Get(ctx, "mp")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp := ToGatewayResponse(current)
	if resp.Credentials["access_token"] != "****1234" {
		t.Fatalf("expected masked token in response, got %s", resp.Credentials["access_token"])
	}

	creds := resp.Credentials
	creds["public_key"] = "APP_USR-pub-rotated"
	title := "renamed"
	if _, err := svc.Update(ctx, "mp", UpdateGatewayRequest{
		Title:       &title,
		Credentials: creds,
	}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	saved := store.gateways["mp"]
	if saved.Title != "renamed" {
		t.Errorf("expected title renamed, got %s", saved.Title)
	}
	if saved.Credentials["access_token"] != "APP_USR-secret-1234" {
		t.Errorf("expected stored token kept, got %s", saved.Credentials["access_token"])
	}
	if saved.Credentials["public_key"] != "APP_USR-pub-rotated" {
		t.Errorf("expected new public key, got %s", saved.Credentials["public_key"])
	}
}

func TestUnmaskCredentials(t *testing.T) {
	stored := Credentials{"token": "abcdefgh", "short": "abc"}

	tests := []struct {
		name      string
		submitted map[string]string
		want      Credentials
	}{
		{"echoed mask", map[string]string{"token": "****efgh"}, Credentials{"token": "abcdefgh"}},
		{"short secret echoed", map[string]string{"short": "****"}, Credentials{"short": "abc"}},
		{"new value", map[string]string{"token": "zzzz1111"}, Credentials{"token": "zzzz1111"}},
		{"new key", map[string]string{"extra": "****efgh"}, Credentials{"extra": "****efgh"}},
		{"emptied", map[string]string{}, Credentials{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := unmaskCredentials(tt.submitted, stored)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("expected %s=%s, got %s", k, v, got[k])
				}
			}
		})
	}
}
