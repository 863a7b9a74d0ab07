// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]*UserInfo
	next int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*UserInfo)}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, a NewAccount) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == a.Email {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	f.next++
	u := &UserInfo{
		ID:           fmt.Sprintf("user-%d", f.next),
		Email:        a.Email,
		Name:         a.Name,
		CPF:          a.CPF,
		PasswordHash: a.PasswordHash,
		Role:         "CLIENT",
	}
	f.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) IncrementTokenVersion(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].TokenVersion++
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].PasswordHash = hash
	return nil
}

func (f *fakeUsers) setRole(id, role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Role = role
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
	seq    int
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]*RefreshToken)}
}

func (m *memTokens) Create(_ context.Context, token *RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	token.CreatedAt = time.Unix(int64(m.seq), 0)
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memTokens) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memTokens) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) MarkUsed(_ context.Context, id, replacedByID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.IsUsed {
		return core.ErrNotFound
	}
	t.IsUsed = true
	t.ReplacedByID = &replacedByID
	return nil
}

func (m *memTokens) RevokeByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (m *memTokens) revokeWhere(match func(*RefreshToken) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if match(t) && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
}

func (m *memTokens) RevokeFamily(_ context.Context, familyID string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID string) error {
	m.revokeWhere(func(t *RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (m *memTokens) ListActive(_ context.Context, userID string, now time.Time) ([]RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RefreshToken
	for _, t := range m.tokens {
		if t.UserID == userID && t.Exchangeable(now) == nil {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memBlacklist struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (b *memBlacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ttl > 0 {
		b.ids[jti] = ttl
	}
	return nil
}

func (b *memBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ids[jti]
	return ok, nil
}

type fixture struct {
	svc       *Service
	users     *fakeUsers
	tokens    *memTokens
	blacklist *memBlacklist
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:     newFakeUsers(),
		tokens:    newMemTokens(),
		blacklist: &memBlacklist{ids: make(map[string]time.Duration)},
		clock:     time.Now(),
	}
	f.svc = NewService(f.tokens, newTestJWT(t, testJWTConfig(t)), f.users, f.blacklist)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

var device = Client{UserAgent: "test-agent", IPAddress: "10.0.0.1"}

func (f *fixture) register(t *testing.T, email, cpf string) *AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
		Name:     "Ana Lima",
		CPF:      cpf,
	}, device)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.register(t, "  Ana@Example.com ", "123.456.789-00")
	if resp.User.Email != "ana@example.com" {
		t.Errorf("expected normalized email, got %q", resp.User.Email)
	}
	if resp.User.Role != "CLIENT" {
		t.Errorf("expected CLIENT role, got %q", resp.User.Role)
	}
	if resp.Tokens.ExpiresIn != 900 {
		t.Errorf("expected 900s access lifetime, got %d", resp.Tokens.ExpiresIn)
	}
	if got := f.users.byID[resp.User.ID].CPF; got != "12345678900" {
		t.Errorf("expected stored cpf digits, got %q", got)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "password", email: "ANA@example.com", password: "s3cret-pass"},
		{name: "formatted cpf", email: "ana@example.com", password: "123.456.789-00"},
		{name: "bare cpf", email: "ana@example.com", password: "12345678900"},
		{name: "wrong secret", email: "ana@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "who@example.com", password: "s3cret-pass", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, LoginRequest{Email: tt.email, Password: tt.password}, device)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoginAdminNeedsPassword(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "admin@example.com", "123.456.789-00")
	f.users.setRole(resp.User.ID, middleware.RoleAdmin)

	_, err := f.svc.Login(context.Background(),
		LoginRequest{Email: "admin@example.com", Password: "12345678900"}, device)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com", "12345678900")

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Email:    "ANA@example.com",
		Password: "another-pass",
		Name:     "Ana",
		CPF:      "98765432100",
	}, device)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if status := core.MapError(err).StatusCode; status != http.StatusConflict {
		t.Errorf("expected 409, got %d", status)
	}
}

func TestRefreshRotationAndReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "ana@example.com", "12345678900")

	second, err := f.svc.Refresh(ctx, first.Tokens.RefreshToken, device)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if second.Tokens.RefreshToken == first.Tokens.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	_, err = f.svc.Refresh(ctx, first.Tokens.RefreshToken, device)
	if !errors.Is(err, ErrTokenReuse) {
		t.Fatalf("expected ErrTokenReuse, got %v", err)
	}

	_, err = f.svc.Refresh(ctx, second.Tokens.RefreshToken, device)
	if !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("expected the whole family revoked, got %v", err)
	}
}

func TestRefreshFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp := f.register(t, "ana@example.com", "12345678900")

	if _, err := f.svc.Refresh(ctx, "unknown", device); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}

	f.clock = f.clock.Add(2 * time.Hour)
	if _, err := f.svc.Refresh(ctx, resp.Tokens.RefreshToken, device); !errors.Is(err, core.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyAccessTokenRevocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp := f.register(t, "ana@example.com", "12345678900")

	claims, err := f.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error: %v", err)
	}

	if err := f.svc.Logout(ctx, claims, resp.Tokens.RefreshToken); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}

	if _, err := f.svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken); !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("expected blacklisted access token, got %v", err)
	}
	if _, err := f.svc.Refresh(ctx, resp.Tokens.RefreshToken, device); !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("expected revoked refresh token, got %v", err)
	}

	again, err := f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "s3cret-pass"}, device)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.LogoutAll(ctx, again.User.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.VerifyAccessToken(ctx, again.Tokens.AccessToken); !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("expected stale token version to be rejected, got %v", err)
	}
}

func TestVerifyAccessTokenUsesCurrentRole(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "ana@example.com", "12345678900")
	f.users.setRole(resp.User.ID, middleware.RoleAdmin)

	claims, err := f.svc.VerifyAccessToken(context.Background(), resp.Tokens.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != middleware.RoleAdmin {
		t.Errorf("expected role %s, got %s", middleware.RoleAdmin, claims.Role)
	}
}

func TestLogoutForeignRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana@example.com", "12345678900")
	bruno := f.register(t, "bruno@example.com", "98765432100")

	claims, err := f.svc.VerifyAccessToken(ctx, bruno.Tokens.AccessToken)
	if err != nil {
		t.Fatal(err)
	}

	err = f.svc.Logout(ctx, claims, ana.Tokens.RefreshToken)
	if !errors.Is(err, ErrSessionForbidden) {
		t.Errorf("expected ErrSessionForbidden, got %v", err)
	}
}

func TestRevokeSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "ana@example.com", "12345678900")
	bruno := f.register(t, "bruno@example.com", "98765432100")

	sessions, err := f.svc.Sessions(ctx, ana.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].IPAddress != "10.0.0.1" {
		t.Errorf("expected session ip 10.0.0.1, got %q", sessions[0].IPAddress)
	}

	tests := []struct {
		name    string
		userID  string
		session string
		wantErr error
	}{
		{name: "other user", userID: bruno.User.ID, session: sessions[0].ID, wantErr: ErrSessionForbidden},
		{name: "unknown", userID: ana.User.ID, session: "missing", wantErr: ErrSessionNotFound},
		{name: "owner", userID: ana.User.ID, session: sessions[0].ID},
		{name: "owner again", userID: ana.User.ID, session: sessions[0].ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.RevokeSession(ctx, tt.userID, tt.session)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	sessions, err = f.svc.Sessions(ctx, ana.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no active sessions, got %d", len(sessions))
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resp := f.register(t, "ana@example.com", "123.456.789-00")
	id := resp.User.ID

	for _, current := range []string{"wrong-pass", "12345678900"} {
		err := f.svc.ChangePassword(ctx, id, ChangePasswordRequest{
			CurrentPassword: current,
			NewPassword:     "brand-new-pass",
		})
		if !errors.Is(err, ErrWrongPassword) {
			t.Errorf("expected ErrWrongPassword for %q, got %v", current, err)
		}
	}

	err := f.svc.ChangePassword(ctx, id, ChangePasswordRequest{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "brand-new-pass",
	})
	if err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}

	if f.users.byID[id].TokenVersion != 1 {
		t.Errorf("expected token version 1, got %d", f.users.byID[id].TokenVersion)
	}
	if _, err := f.svc.Refresh(ctx, resp.Tokens.RefreshToken, device); !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("expected old sessions revoked, got %v", err)
	}
	if _, err := f.svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "brand-new-pass"}, device); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}

func TestMatchesClientCPF(t *testing.T) {
	tests := []struct {
		name   string
		user   UserInfo
		secret string
		want   bool
	}{
		{
			name:   "formatted cpf matches digits",
			user:   UserInfo{Role: "CLIENT", CPF: "123.456.789-00"},
			secret: "12345678900",
			want:   true,
		},
		{
			name:   "different cpf",
			user:   UserInfo{Role: "CLIENT", CPF: "123.456.789-00"},
			secret: "123.456.789-01",
			want:   false,
		},
		{
			name:   "admin never logs in by cpf",
			user:   UserInfo{Role: middleware.RoleAdmin, CPF: "123.456.789-00"},
			secret: "12345678900",
			want:   false,
		},
		{
			name:   "no digits on either side",
			user:   UserInfo{Role: "CLIENT"},
			secret: "---",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesClientCPF(&tt.user, tt.secret); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Mixed.Case@Example.COM "); got != strings.ToLower("mixed.case@example.com") {
		t.Errorf("expected lower-cased trimmed email, got %q", got)
	}
}
