// AngelaMos | 2026
// entity.go

package auth

import (
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

// RefreshToken is one link of a rotation chain. Tokens sharing a FamilyID
// descend from the same login.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

// Exchangeable returns nil when the token may be rotated at now. A used
// token means the chain leaked.
func (t *RefreshToken) Exchangeable(now time.Time) error {
	switch {
	case t.IsUsed:
		return ErrTokenReuse
	case t.RevokedAt != nil:
		return core.TokenRevokedError()
	case !now.Before(t.ExpiresAt):
		return core.TokenExpiredError()
	}
	return nil
}

func (t *RefreshToken) Session() SessionInfo {
	return SessionInfo{
		ID:        t.ID,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}
