// AngelaMos | 2026
// store.go

package affiliate

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/payout"
	"github.com/carterperez-dev/facilitypass/internal/sale"
)

// LedgerStore is the slice of the record store an affiliate's balance is
// computed from.
type LedgerStore interface {
	Sales() sale.Repository
	Payouts() payout.Repository
}

// TxRunner serializes payouts per affiliate: fn runs in a transaction that
// holds the affiliate's advisory lock, so the balance it reads cannot change
// before the payout is inserted.
type TxRunner interface {
	WithinAffiliateLock(ctx context.Context, affiliateID string, fn func(LedgerStore) error) error
}

type ledgerStore struct {
	sales   sale.Repository
	payouts payout.Repository
}

func (s ledgerStore) Sales() sale.Repository     { return s.sales }
func (s ledgerStore) Payouts() payout.Repository { return s.payouts }

type txRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) TxRunner {
	return &txRunner{db: db}
}

func (t *txRunner) WithinAffiliateLock(
	ctx context.Context,
	affiliateID string,
	fn func(LedgerStore) error,
) error {
	return core.InTx(ctx, t.db, func(tx *sqlx.Tx) error {
		if err := core.AdvisoryXactLock(ctx, tx, "affiliate:payout:"+affiliateID); err != nil {
			return err
		}
		return fn(ledgerStore{
			sales:   sale.NewRepository(tx),
			payouts: payout.NewRepository(tx),
		})
	})
}
