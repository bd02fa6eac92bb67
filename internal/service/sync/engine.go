// Package sync reconciles local offers against the authoritative set held
// by the external offer registry.
package sync

import (
	"context"
	"errors"
	"io"
	"log"

	"catalog-sync/internal/domain"
	offerrepo "catalog-sync/internal/repository/offer"
)

// Fetcher pulls the authoritative offer set for one product.
type Fetcher interface {
	FetchOffers(ctx context.Context, productID string) ([]domain.Offer, error)
}

// ProductGetter checks local product existence before a pass runs.
type ProductGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Result counts what one reconciliation pass changed.
type Result struct {
	Upserted int
	Deleted  int
}

// Engine makes local offers for a product an exact mirror of the latest
// remote snapshot. Passes for different products are independent; each pass
// runs in one storage transaction and is idempotent, so at-least-once task
// delivery is safe.
type Engine struct {
	fetcher  Fetcher
	products ProductGetter
	offers   offerrepo.Repository
	logger   *log.Logger
}

func New(fetcher Fetcher, products ProductGetter, offers offerrepo.Repository, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{fetcher: fetcher, products: products, offers: offers, logger: logger}
}

// SyncProduct is the per-product unit of work: fetch the remote offer set
// and reconcile local storage against it. A product deleted locally since
// the task was scheduled is a no-op, not an error.
func (e *Engine) SyncProduct(ctx context.Context, productID string) (Result, error) {
	if _, err := e.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Printf("sync: product_id=%s no longer exists, skipping", productID)
			return Result{}, nil
		}
		return Result{}, &domain.SyncError{ProductID: productID, Err: err}
	}

	remote, err := e.fetcher.FetchOffers(ctx, productID)
	if err != nil {
		return Result{}, err
	}
	return e.Reconcile(ctx, productID, remote)
}

// Reconcile upserts every remote offer and deletes local offers absent from
// the remote set, all inside a single transaction.
func (e *Engine) Reconcile(ctx context.Context, productID string, remote []domain.Offer) (Result, error) {
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, o := range remote {
		remoteIDs[o.ID] = struct{}{}
	}

	var res Result
	err := e.offers.InTx(ctx, func(s offerrepo.Store) error {
		upserted, err := s.UpsertBatch(ctx, remote)
		if err != nil {
			return err
		}

		localIDs, err := s.ListIDsByProduct(ctx, productID)
		if err != nil {
			return err
		}
		var stale []string
		for _, id := range localIDs {
			if _, ok := remoteIDs[id]; !ok {
				stale = append(stale, id)
			}
		}

		deleted, err := s.DeleteByIDs(ctx, stale)
		if err != nil {
			return err
		}

		res = Result{Upserted: upserted, Deleted: deleted}
		return nil
	})
	if err != nil {
		return Result{}, &domain.SyncError{ProductID: productID, Err: err}
	}

	e.logger.Printf("sync: reconciled product_id=%s upserted=%d deleted=%d", productID, res.Upserted, res.Deleted)
	return res, nil
}
