// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/auth"
	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

// memRepo implements the subset of Repository the service touches.
type memRepo struct {
	Repository
	users map[string]*User
}

func newMemRepo(users ...User) *memRepo {
	m := &memRepo{users: map[string]*User{}}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok || u.IsDeleted() {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email && !u.IsDeleted() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) Update(_ context.Context, u *User) error {
	existing, ok := m.users[u.ID]
	if !ok {
		return core.ErrNotFound
	}
	cp := *u
	cp.Subscription = existing.Subscription
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) UpdateSubscription(_ context.Context, id string, sub *Subscription) error {
	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.Subscription = sub
	return nil
}

func (m *memRepo) SoftDelete(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok || u.IsDeleted() {
		return core.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func seedUsers() []User {
	return []User{
		{ID: "admin", Email: "boss@gym.com", Name: "Boss", Role: RoleAdmin},
		{ID: "admin2", Email: "other@gym.com", Name: "Other", Role: RoleAdmin},
		{
			ID:    "c1",
			Email: "ana@mail.com",
			Name:  "Ana Souza",
			CPF:   "12345678909",
			Role:  RoleClient,
			Subscription: &Subscription{
				PlanID:    "p1",
				StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Active:    true,
			},
		},
		{ID: "c2", Email: "bia@mail.com", Name: "Bia", Role: RoleClient},
	}
}

func TestCreateIsAlwaysClient(t *testing.T) {
	svc := NewService(newMemRepo())

	info, err := svc.Create(context.Background(), auth.NewAccount{
		Email:        "New@Mail.com",
		PasswordHash: "hash",
		Name:         "New",
		CPF:          "98765432100",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if info.Role != RoleClient {
		t.Errorf("expected role %s, got %s", RoleClient, info.Role)
	}
	if info.Email != "new@mail.com" {
		t.Errorf("expected lowercased email, got %s", info.Email)
	}

	found, err := svc.GetByEmail(context.Background(), "NEW@mail.com")
	if err != nil {
		t.Fatalf("GetByEmail() error: %v", err)
	}
	if found.ID != info.ID {
		t.Errorf("expected %s, got %s", info.ID, found.ID)
	}
}

func TestDeleteMember(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		target    string
		wantErr   error
	}{
		{name: "client", requester: "admin", target: "c2"},
		{name: "self", requester: "admin", target: "admin", wantErr: ErrDeleteSelf},
		{name: "another admin", requester: "admin", target: "admin2", wantErr: ErrDeleteAdmin},
		{name: "missing", requester: "admin", target: "ghost", wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo(seedUsers()...)
			svc := NewService(repo)

			err := svc.DeleteMember(context.Background(), tt.requester, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && !repo.users[tt.target].IsDeleted() {
				t.Error("expected the member to be soft deleted")
			}
		})
	}
}

func TestToggleAndRemoveSubscription(t *testing.T) {
	repo := newMemRepo(seedUsers()...)
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.ToggleSubscription(ctx, "c1")
	if err != nil {
		t.Fatalf("ToggleSubscription() error: %v", err)
	}
	if u.Subscription.Active {
		t.Error("expected subscription to be inactive after toggle")
	}
	stored := repo.users["c1"].Subscription
	if stored.Active || !stored.EndDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected dates kept and flag flipped, got %+v", stored)
	}

	if _, err := svc.ToggleSubscription(ctx, "c2"); !errors.Is(err, ErrNoSubscription) {
		t.Errorf("expected ErrNoSubscription, got %v", err)
	}

	u, err = svc.RemoveSubscription(ctx, "c1")
	if err != nil {
		t.Fatalf("RemoveSubscription() error: %v", err)
	}
	if u.Subscription != nil || repo.users["c1"].Subscription != nil {
		t.Error("expected subscription removed")
	}
}

func TestUpdateMeCannotChangeRole(t *testing.T) {
	svc := NewService(newMemRepo(seedUsers()...))
	name := "Ana Maria"

	u, err := svc.UpdateMe(context.Background(), "c1", UpdateMeRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateMe() error: %v", err)
	}
	if u.Name != name || u.Role != RoleClient {
		t.Errorf("expected renamed client, got %s/%s", u.Name, u.Role)
	}

	if _, err := svc.UpdateMe(context.Background(), "", UpdateMeRequest{}); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUpdateBankDetails(t *testing.T) {
	repo := newMemRepo(seedUsers()...)
	svc := NewService(repo)

	_, err := svc.UpdateBankDetails(context.Background(), "c2", UpdateBankDetailsRequest{
		PixKey:  "  bia@mail.com ",
		PixType: PixTypeEmail,
	})
	if err != nil {
		t.Fatalf("UpdateBankDetails() error: %v", err)
	}

	bank := repo.users["c2"].BankDetails
	if bank == nil || bank.PixKey != "bia@mail.com" {
		t.Errorf("expected trimmed pix key, got %+v", bank)
	}
}

func TestDeleteUserHandler(t *testing.T) {
	h := NewHandler(NewService(newMemRepo(seedUsers()...)), nil)
	passthrough := func(next http.Handler) http.Handler { return next }
	asAdmin := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: "admin", Role: RoleAdmin})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	h.RegisterAdminRoutes(r, asAdmin, passthrough)

	tests := []struct {
		target   string
		want     int
		wantCode string
	}{
		{target: "c2", want: http.StatusNoContent},
		{target: "admin2", want: http.StatusForbidden, wantCode: "CANNOT_DELETE_ADMIN"},
		{target: "ghost", want: http.StatusNotFound, wantCode: "USER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/members/"+tt.target, nil))

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.wantCode != "" && !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("expected %s in %s", tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestProfileEditKeepsConcurrentActivation(t *testing.T) {
	repo := newMemRepo(seedUsers()...)
	svc := NewService(repo)
	ctx := context.Background()

	stale, err := svc.GetUser(ctx, "c2")
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}

	paid := &Subscription{
		PlanID:    "p1",
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}
	if err := repo.UpdateSubscription(ctx, "c2", paid); err != nil {
		t.Fatalf("UpdateSubscription() error: %v", err)
	}

	stale.Phone = "11999990000"
	if err := repo.Update(ctx, stale); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got := repo.users["c2"]
	if got.Subscription == nil || got.Subscription.PlanID != "p1" {
		t.Errorf("expected activation kept, got %+v", got.Subscription)
	}
	if got.Phone != "11999990000" {
		t.Errorf("expected phone updated, got %s", got.Phone)
	}

	if strings.Contains(updateUserQuery, "subscription") {
		t.Errorf("expected profile update to leave subscription alone:\n%s", updateUserQuery)
	}
}
