// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

var (
	ErrInvalidCredentials = core.NewDomainError(
		core.ErrUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid email or credentials",
	)
	ErrWrongPassword = core.NewDomainError(
		core.ErrUnauthorized,
		"WRONG_PASSWORD",
		"current password is incorrect",
	)
	ErrTokenReuse = core.NewDomainError(
		core.ErrUnauthorized,
		"TOKEN_REUSE_DETECTED",
		"security alert: token reuse detected, session revoked",
	)
	ErrEmailExists = core.NewDomainError(
		core.ErrDuplicateKey,
		"EMAIL_EXISTS",
		"email already registered",
	)
	ErrSessionNotFound = core.NewDomainError(
		core.ErrNotFound,
		"SESSION_NOT_FOUND",
		"session not found",
	)
	ErrSessionForbidden = core.NewDomainError(
		core.ErrForbidden,
		"SESSION_FORBIDDEN",
		"session belongs to another user",
	)
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	CPF          string
	PasswordHash string
	Role         string
	TokenVersion int
}

type NewAccount struct {
	Email        string
	PasswordHash string
	Name         string
	CPF          string
	Phone        string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, account NewAccount) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Client describes the device a session was opened from.
type Client struct {
	UserAgent string
	IPAddress string
}

type Service struct {
	repo      Repository
	jwt       *JWTManager
	users     UserProvider
	blacklist Blacklist
	now       func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users UserProvider,
	blacklist Blacklist,
) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwt,
		users:     users,
		blacklist: blacklist,
		now:       time.Now,
	}
}

// Login accepts the password, or for clients the CPF in any formatting.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	client Client,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			_, _, _ = core.CheckPassword(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid && !matchesClientCPF(user, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if valid && newHash != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	return s.issue(ctx, user, client, "", uuid.New().String())
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	client Client,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewAccount{
		Email:        normalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Name),
		CPF:          normalizeCPF(req.CPF),
		Phone:        req.Phone,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(ctx, user, client, "", uuid.New().String())
}

// Refresh rotates a refresh token. Presenting a token that was already
// rotated revokes its whole family.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	client Client,
) (*AuthResponse, error) {
	stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.TokenInvalidError()
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if err := stored.Exchangeable(s.now()); err != nil {
		if errors.Is(err, ErrTokenReuse) {
			s.revokeFamily(ctx, stored.FamilyID)
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.TokenInvalidError()
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	nextID := uuid.New().String()
	if err := s.repo.MarkUsed(ctx, stored.ID, nextID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.revokeFamily(ctx, stored.FamilyID)
			return nil, ErrTokenReuse
		}
		return nil, fmt.Errorf("rotate token: %w", err)
	}

	return s.issue(ctx, user, client, stored.FamilyID, nextID)
}

// VerifyAccessToken adds revocation checks to the signature check, so
// logouts and password changes take effect before the token expires.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		slog.WarnContext(ctx, "token blacklist unavailable", "error", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	claims.Role = user.Role
	return claims, nil
}

// Logout ends the session behind refreshToken, if given, and blacklists the
// access token the request was made with.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	refreshToken string,
) error {
	if refreshToken != "" {
		stored, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
		switch {
		case errors.Is(err, core.ErrNotFound):
		case err != nil:
			return fmt.Errorf("find token: %w", err)
		case stored.UserID != claims.UserID:
			return ErrSessionForbidden
		default:
			if err := s.repo.RevokeByID(ctx, stored.ID); err != nil &&
				!errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("revoke token: %w", err)
			}
		}
	}

	return s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Sub(s.now()))
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) Sessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	tokens, err := s.repo.ListActive(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for i := range tokens {
		sessions = append(sessions, tokens[i].Session())
	}
	return sessions, nil
}

func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	token, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if token.UserID != userID {
		return ErrSessionForbidden
	}

	if err := s.repo.RevokeByID(ctx, sessionID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return err
	}
	return nil
}

// ChangePassword requires the current password; a CPF is not enough.
// Every session is ended afterwards.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.CheckPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrWrongPassword
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

func (s *Service) issue(
	ctx context.Context,
	user *UserInfo,
	client Client,
	familyID, tokenID string,
) (*AuthResponse, error) {
	now := s.now()

	access, err := s.jwt.CreateAccessToken(user, now)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(familyID, now)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	if err := s.repo.Create(ctx, &RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResponse{
		User: UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
		Tokens: TokenResponse{
			AccessToken:  access.Token,
			RefreshToken: refresh.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(access.ExpiresAt.Sub(now) / time.Second),
			ExpiresAt:    access.ExpiresAt,
		},
	}, nil
}

func (s *Service) revokeFamily(ctx context.Context, familyID string) {
	if err := s.repo.RevokeFamily(ctx, familyID); err != nil {
		slog.ErrorContext(ctx, "revoke token family failed", "family_id", familyID, "error", err)
		return
	}
	slog.WarnContext(ctx, "refresh token reuse detected", "family_id", familyID)
}

func matchesClientCPF(user *UserInfo, secret string) bool {
	if user.Role == middleware.RoleAdmin {
		return false
	}
	return core.SecretsEqual(normalizeCPF(user.CPF), normalizeCPF(secret))
}

func normalizeCPF(cpf string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cpf)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
