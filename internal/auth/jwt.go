// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/facilitypass/internal/config"
	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

const (
	claimRole         = "role"
	claimTokenVersion = "token_version"
	claimType         = "type"
	accessTokenType   = "access"

	clockSkew = 30 * time.Second
)

type JWTManager struct {
	signing jwk.Key
	verify  jwk.Key
	jwks    jwk.Set
	config  config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	signing, err := loadSigningKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	verify, jwks, err := publicSet(signing)
	if err != nil {
		return nil, err
	}

	return &JWTManager{signing: signing, verify: verify, jwks: jwks, config: cfg}, nil
}

type AccessToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// CreateAccessToken signs a token carrying the role and token version the
// user had at issue time.
func (m *JWTManager) CreateAccessToken(user *UserInfo, now time.Time) (*AccessToken, error) {
	jti := uuid.NewString()
	expiresAt := now.Add(m.config.AccessTokenExpire)

	token, err := jwt.NewBuilder().
		JwtID(jti).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(user.ID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim(claimRole, user.Role).
		Claim(claimTokenVersion, user.TokenVersion).
		Claim(claimType, accessTokenType).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.signing))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AccessToken{Token: string(signed), ID: jti, ExpiresAt: expiresAt}, nil
}

// VerifyAccessToken checks signature, issuer, audience, lifetime and the
// presence of every claim this service relies on. Revocation is layered on
// top by Service.VerifyAccessToken.
func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verify),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(clockSkew),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithClaimValue(claimType, accessTokenType),
		jwt.WithRequiredClaim(jwt.JwtIDKey),
		jwt.WithRequiredClaim(jwt.SubjectKey),
		jwt.WithRequiredClaim(claimRole),
		jwt.WithRequiredClaim(claimTokenVersion),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w: %w", core.ErrTokenInvalid, err)
	}

	claims := &middleware.AccessTokenClaims{}
	claims.ID, _ = token.JwtID()
	claims.UserID, _ = token.Subject()
	claims.ExpiresAt, _ = token.Expiration()

	// numeric claims decode as float64
	var version float64
	if err := token.Get(claimRole, &claims.Role); err != nil {
		return nil, fmt.Errorf("verify token: role: %w", core.ErrTokenInvalid)
	}
	if err := token.Get(claimTokenVersion, &version); err != nil {
		return nil, fmt.Errorf("verify token: token_version: %w", core.ErrTokenInvalid)
	}
	claims.TokenVersion = int(version)

	if claims.ID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("verify token: empty identity: %w", core.ErrTokenInvalid)
	}
	return claims, nil
}

func (m *JWTManager) GetJWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		//nolint:errcheck // headers are already sent
		_ = json.NewEncoder(w).Encode(m.jwks)
	}
}

func (m *JWTManager) GetKeyID() string {
	kid, _ := m.signing.KeyID()
	return kid
}

type RefreshTokenData struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
	FamilyID  string
}

// CreateRefreshToken mints an opaque token. An empty familyID starts a new
// rotation chain.
func (m *JWTManager) CreateRefreshToken(familyID string, now time.Time) (*RefreshTokenData, error) {
	token, err := core.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if familyID == "" {
		familyID = uuid.NewString()
	}

	return &RefreshTokenData{
		Token:     token,
		Hash:      core.HashToken(token),
		ExpiresAt: now.Add(m.config.RefreshTokenExpire),
		FamilyID:  familyID,
	}, nil
}
