// AngelaMos | 2026
// repository.go

package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type Repository interface {
	Create(ctx context.Context, gw *Gateway) error
	GetByID(ctx context.Context, id string) (*Gateway, error)
	List(ctx context.Context) ([]Gateway, error)
	ListEnabled(ctx context.Context) ([]Gateway, error)
	Update(ctx context.Context, gw *Gateway) error
	Delete(ctx context.Context, id string) error
	CountEnabledExcluding(ctx context.Context, excludeID string) (int, error)
}

// TxRunner runs fn inside a transaction that holds the gateway activation
// lock, so concurrent enables observe each other's counts.
type TxRunner interface {
	WithinLock(ctx context.Context, fn func(repo Repository) error) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const gatewayColumns = `
	id, title, provider, is_enabled, methods, credentials, created_at, updated_at`

func (r *repository) Create(ctx context.Context, gw *Gateway) error {
	query := `
		INSERT INTO gateways (id, title, provider, is_enabled, methods, credentials)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		gw.ID,
		gw.Title,
		gw.Provider,
		gw.IsEnabled,
		gw.Methods,
		gw.Credentials,
	).Scan(&gw.CreatedAt, &gw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Gateway, error) {
	query := `SELECT ` + gatewayColumns + ` FROM gateways WHERE id = $1`

	var gw Gateway
	err := r.db.GetContext(ctx, &gw, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get gateway: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get gateway: %w", err)
	}

	return &gw, nil
}

func (r *repository) List(ctx context.Context) ([]Gateway, error) {
	query := `SELECT ` + gatewayColumns + ` FROM gateways ORDER BY created_at ASC`

	var gateways []Gateway
	if err := r.db.SelectContext(ctx, &gateways, query); err != nil {
		return nil, fmt.Errorf("list gateways: %w", err)
	}

	return gateways, nil
}

func (r *repository) ListEnabled(ctx context.Context) ([]Gateway, error) {
	query := `SELECT ` + gatewayColumns + `
		FROM gateways
		WHERE is_enabled = true
		ORDER BY created_at ASC`

	var gateways []Gateway
	if err := r.db.SelectContext(ctx, &gateways, query); err != nil {
		return nil, fmt.Errorf("list enabled gateways: %w", err)
	}

	return gateways, nil
}

func (r *repository) Update(ctx context.Context, gw *Gateway) error {
	query := `
		UPDATE gateways
		SET title = $2, provider = $3, is_enabled = $4, methods = $5,
		    credentials = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &gw.UpdatedAt, query,
		gw.ID,
		gw.Title,
		gw.Provider,
		gw.IsEnabled,
		gw.Methods,
		gw.Credentials,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update gateway: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update gateway: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gateways WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete gateway: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete gateway: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete gateway: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountEnabledExcluding(
	ctx context.Context,
	excludeID string,
) (int, error) {
	query := `SELECT COUNT(*) FROM gateways WHERE is_enabled = true AND id::text <> $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, excludeID); err != nil {
		return 0, fmt.Errorf("count enabled gateways: %w", err)
	}

	return count, nil
}

const activationLockKey = "gateways:activation"

type txRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &txRunner{db: db}
}

func (t *txRunner) WithinLock(
	ctx context.Context,
	fn func(repo Repository) error,
) error {
	return core.InTx(ctx, t.db, func(tx *sqlx.Tx) error {
		if err := core.AdvisoryXactLock(ctx, tx, activationLockKey); err != nil {
			return err
		}
		return fn(NewRepository(tx))
	})
}
