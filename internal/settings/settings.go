// AngelaMos | 2026
// settings.go

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

// singletonID is the only row the settings table ever holds. It is seeded by
// the schema migration and never inserted or deleted at runtime.
const singletonID = 1

type Settings struct {
	ID                     int       `db:"id"`
	SupportWhatsapp        string    `db:"support_whatsapp"`
	MercadoPagoPublicKey   string    `db:"mercado_pago_public_key"`
	MercadoPagoAccessToken string    `db:"mercado_pago_access_token"`
	UpdatedAt              time.Time `db:"updated_at"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*Settings, error) {
	query := `
		SELECT id, support_whatsapp, mercado_pago_public_key,
		       mercado_pago_access_token, updated_at
		FROM settings
		WHERE id = $1`

	var s Settings
	err := r.db.GetContext(ctx, &s, query, singletonID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get settings: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *Settings) error {
	query := `
		UPDATE settings
		SET support_whatsapp = $2, mercado_pago_public_key = $3,
		    mercado_pago_access_token = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &s.UpdatedAt, query,
		singletonID,
		s.SupportWhatsapp,
		s.MercadoPagoPublicKey,
		s.MercadoPagoAccessToken,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update settings: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	s.ID = singletonID

	return nil
}
