// AngelaMos | 2026
// store.go

package checkout

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/sale"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

// PurchaseStore persists a completed purchase. Record writes the sale and
// the buyer's new subscription atomically and fails with
// core.ErrDuplicateKey when the payment was already recorded.
type PurchaseStore interface {
	Record(ctx context.Context, buyerID string, sub *user.Subscription, s *sale.Sale) error
	FindByPaymentRef(ctx context.Context, paymentID string) (*sale.Sale, error)
}

type sqlPurchaseStore struct {
	db *sqlx.DB
}

func NewPurchaseStore(db *sqlx.DB) PurchaseStore {
	return &sqlPurchaseStore{db: db}
}

func (s *sqlPurchaseStore) Record(
	ctx context.Context,
	buyerID string,
	sub *user.Subscription,
	sl *sale.Sale,
) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := sale.NewRepository(tx).Create(ctx, sl); err != nil {
			return err
		}
		return user.NewRepository(tx).UpdateSubscription(ctx, buyerID, sub)
	})
}

func (s *sqlPurchaseStore) FindByPaymentRef(
	ctx context.Context,
	paymentID string,
) (*sale.Sale, error) {
	return sale.NewRepository(s.db).GetByPaymentRef(ctx, paymentID)
}
