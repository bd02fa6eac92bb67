package sync

import (
	"context"
	"errors"
	"sort"
	"testing"

	"catalog-sync/internal/domain"
	offerrepo "catalog-sync/internal/repository/offer"
)

type stubFetcher struct {
	offers []domain.Offer
	err    error
	calls  int
}

func (s *stubFetcher) FetchOffers(_ context.Context, productID string) ([]domain.Offer, error) {
	s.calls++
	if s.err != nil {
		return nil, &domain.SyncError{ProductID: productID, Err: s.err}
	}
	return s.offers, nil
}

type stubProducts struct {
	known map[string]bool
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if !s.known[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.Product{ID: id}, nil
}

// memOfferRepo keeps offers in a map and runs "transactions" directly
// against itself.
type memOfferRepo struct {
	offers    map[string]domain.Offer
	upsertErr error
}

func newMemOfferRepo(seed ...domain.Offer) *memOfferRepo {
	r := &memOfferRepo{offers: make(map[string]domain.Offer)}
	for _, o := range seed {
		r.offers[o.ID] = o
	}
	return r
}

func (r *memOfferRepo) UpsertBatch(_ context.Context, offers []domain.Offer) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	for _, o := range offers {
		r.offers[o.ID] = o
	}
	return len(offers), nil
}

func (r *memOfferRepo) GetByID(_ context.Context, id string) (*domain.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func (r *memOfferRepo) List(_ context.Context, _, _ int) ([]domain.Offer, error) {
	var result []domain.Offer
	for _, o := range r.offers {
		result = append(result, o)
	}
	return result, nil
}

func (r *memOfferRepo) ListIDsByProduct(_ context.Context, productID string) ([]string, error) {
	var ids []string
	for id, o := range r.offers {
		if o.ProductID == productID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memOfferRepo) DeleteByIDs(_ context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if _, ok := r.offers[id]; ok {
			delete(r.offers, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memOfferRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Offer, error) {
	ids, _ := r.ListIDsByProduct(ctx, productID)
	result := make([]domain.Offer, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.offers[id])
	}
	return result, nil
}

func (r *memOfferRepo) InTx(_ context.Context, fn func(offerrepo.Store) error) error {
	return fn(r)
}

func offer(id string, price int64, productID string) domain.Offer {
	return domain.Offer{ID: id, Price: price, ItemsInStock: 1, ProductID: productID}
}

func TestReconcile_MirrorsRemoteExactly(t *testing.T) {
	const pid = "p1"
	repo := newMemOfferRepo(
		offer("A", 100, pid),
		offer("B", 200, pid),
		offer("C", 300, pid),
	)
	engine := New(&stubFetcher{}, &stubProducts{known: map[string]bool{pid: true}}, repo, nil)

	remote := []domain.Offer{offer("A", 150, pid), offer("D", 400, pid)}
	res, err := engine.Reconcile(context.Background(), pid, remote)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Upserted != 2 || res.Deleted != 2 {
		t.Fatalf("expected upserted=2 deleted=2, got %+v", res)
	}

	ids, _ := repo.ListIDsByProduct(context.Background(), pid)
	if len(ids) != 2 || ids[0] != "A" || ids[1] != "D" {
		t.Fatalf("expected local offers {A, D}, got %v", ids)
	}
	if repo.offers["A"].Price != 150 {
		t.Fatalf("expected updated price for A, got %+v", repo.offers["A"])
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	const pid = "p1"
	repo := newMemOfferRepo()
	engine := New(&stubFetcher{}, &stubProducts{known: map[string]bool{pid: true}}, repo, nil)
	remote := []domain.Offer{offer("A", 100, pid)}

	first, err := engine.Reconcile(context.Background(), pid, remote)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	second, err := engine.Reconcile(context.Background(), pid, remote)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	if first.Upserted != 1 || second.Upserted != 1 || second.Deleted != 0 {
		t.Fatalf("unexpected results first=%+v second=%+v", first, second)
	}
	if len(repo.offers) != 1 || repo.offers["A"].Price != 100 {
		t.Fatalf("repeating an unchanged pass must not alter state, got %+v", repo.offers)
	}
}

func TestReconcile_EmptyRemoteDeletesEverything(t *testing.T) {
	const pid = "p1"
	repo := newMemOfferRepo(offer("O1", 100, pid))
	engine := New(&stubFetcher{}, &stubProducts{known: map[string]bool{pid: true}}, repo, nil)

	res, err := engine.Reconcile(context.Background(), pid, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Upserted != 0 || res.Deleted != 1 {
		t.Fatalf("expected deleted=1, got %+v", res)
	}
	if len(repo.offers) != 0 {
		t.Fatalf("expected no offers left, got %+v", repo.offers)
	}
}

func TestReconcile_StorageFailureIsSyncError(t *testing.T) {
	const pid = "p1"
	repo := newMemOfferRepo()
	repo.upsertErr = errors.New("db down")
	engine := New(&stubFetcher{}, &stubProducts{known: map[string]bool{pid: true}}, repo, nil)

	_, err := engine.Reconcile(context.Background(), pid, []domain.Offer{offer("A", 100, pid)})
	var syncErr *domain.SyncError
	if !errors.As(err, &syncErr) || syncErr.ProductID != pid {
		t.Fatalf("expected SyncError for %s, got %v", pid, err)
	}
}

func TestSyncProduct_FullPass(t *testing.T) {
	const pid = "p1"
	repo := newMemOfferRepo()
	fetcher := &stubFetcher{offers: []domain.Offer{offer("O1", 100, pid)}}
	engine := New(fetcher, &stubProducts{known: map[string]bool{pid: true}}, repo, nil)

	res, err := engine.SyncProduct(context.Background(), pid)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Upserted != 1 {
		t.Fatalf("expected 1 upsert, got %+v", res)
	}

	// Offer disappears upstream; the next pass removes it locally.
	fetcher.offers = nil
	res, err = engine.SyncProduct(context.Background(), pid)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if res.Deleted != 1 {
		t.Fatalf("expected 1 delete, got %+v", res)
	}
	offers, _ := repo.ListByProduct(context.Background(), pid)
	if len(offers) != 0 {
		t.Fatalf("expected no offers after sell-out, got %v", offers)
	}
}

func TestSyncProduct_MissingProductIsNoOp(t *testing.T) {
	fetcher := &stubFetcher{}
	engine := New(fetcher, &stubProducts{known: map[string]bool{}}, newMemOfferRepo(), nil)

	res, err := engine.SyncProduct(context.Background(), "gone")
	if err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if res != (Result{}) {
		t.Fatalf("expected zero result, got %+v", res)
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetcher must not run for a missing product")
	}
}

func TestSyncProduct_FetchFailurePropagates(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("registry down")}
	engine := New(fetcher, &stubProducts{known: map[string]bool{"p1": true}}, newMemOfferRepo(), nil)

	_, err := engine.SyncProduct(context.Background(), "p1")
	var syncErr *domain.SyncError
	if !errors.As(err, &syncErr) || syncErr.ProductID != "p1" {
		t.Fatalf("expected SyncError, got %v", err)
	}
}
