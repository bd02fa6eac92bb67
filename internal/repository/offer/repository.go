package offer

import (
	"context"

	"catalog-sync/internal/domain"
)

// Store is the write surface a reconciliation pass works against. Inside
// InTx it is backed by a single transaction, so a mid-pass failure leaves
// either the old snapshot or the new one, never a mixture.
type Store interface {
	// UpsertBatch inserts or overwrites offers keyed by their external id.
	// Each offer is one idempotent write; repeating the batch is a no-op.
	UpsertBatch(ctx context.Context, offers []domain.Offer) (int, error)
	ListIDsByProduct(ctx context.Context, productID string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
}

type Repository interface {
	Store
	GetByID(ctx context.Context, id string) (*domain.Offer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Offer, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Offer, error)
	// InTx runs fn against a transactional Store, committing on nil error.
	InTx(ctx context.Context, fn func(Store) error) error
}
