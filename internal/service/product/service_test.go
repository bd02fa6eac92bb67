package product

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"catalog-sync/internal/domain"
	"catalog-sync/internal/registry"
	offerrepo "catalog-sync/internal/repository/offer"
)

const testID = "11111111-1111-1111-1111-111111111111"

type stubRepo struct {
	existing    *domain.Product
	created     *domain.Product
	createCalls int
	deleteCalls int
	updated     *domain.Product
}

func (s *stubRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.createCalls++
	s.created = &domain.Product{ID: p.ID, Name: p.Name, Description: p.Description}
	return s.created, nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if s.existing != nil && s.existing.ID == id {
		return s.existing, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) List(_ context.Context, _, _ int) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubRepo) ListIDs(_ context.Context, _, _ int) ([]string, error) {
	return nil, nil
}

func (s *stubRepo) Count(_ context.Context) (int, error) {
	return 0, nil
}

func (s *stubRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.existing == nil || s.existing.ID != p.ID {
		return nil, domain.ErrNotFound
	}
	s.updated = &p
	return &p, nil
}

func (s *stubRepo) Delete(_ context.Context, id string) error {
	if s.existing == nil || s.existing.ID != id {
		return domain.ErrNotFound
	}
	s.deleteCalls++
	return nil
}

type stubOffers struct {
	offers []domain.Offer
}

func (s *stubOffers) UpsertBatch(_ context.Context, _ []domain.Offer) (int, error) { return 0, nil }
func (s *stubOffers) GetByID(_ context.Context, _ string) (*domain.Offer, error) {
	return nil, domain.ErrNotFound
}
func (s *stubOffers) List(_ context.Context, _, _ int) ([]domain.Offer, error) {
	return s.offers, nil
}
func (s *stubOffers) ListIDsByProduct(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}
func (s *stubOffers) DeleteByIDs(_ context.Context, _ []string) (int, error) { return 0, nil }
func (s *stubOffers) ListByProduct(_ context.Context, _ string) ([]domain.Offer, error) {
	return s.offers, nil
}
func (s *stubOffers) InTx(_ context.Context, fn func(offerrepo.Store) error) error { return fn(s) }

type stubRegistrar struct {
	outcome registry.RegistrationOutcome
	err     error
	calls   int
}

func (s *stubRegistrar) RegisterProduct(_ context.Context, _ domain.Product) (registry.RegistrationOutcome, error) {
	s.calls++
	return s.outcome, s.err
}

type stubEnqueuer struct {
	ids []string
}

func (s *stubEnqueuer) EnqueueReconcile(productID string) bool {
	s.ids = append(s.ids, productID)
	return true
}

func newService(repo *stubRepo, reg *stubRegistrar, tasks *stubEnqueuer) *Service {
	return New(repo, &stubOffers{}, reg, tasks, nil)
}

func TestCreate_CreatedAndAbsentLocally(t *testing.T) {
	repo := &stubRepo{}
	tasks := &stubEnqueuer{}
	svc := newService(repo, &stubRegistrar{outcome: registry.OutcomeCreated}, tasks)

	p, err := svc.Create(context.Background(), CreateInput{ID: testID, Name: "Widget"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != testID || repo.createCalls != 1 {
		t.Fatalf("expected one local create, got %+v calls=%d", p, repo.createCalls)
	}
	if len(tasks.ids) != 1 || tasks.ids[0] != testID {
		t.Fatalf("expected initial reconcile enqueued for %s, got %v", testID, tasks.ids)
	}
}

func TestCreate_CreatedButPresentLocally(t *testing.T) {
	repo := &stubRepo{existing: &domain.Product{ID: testID}}
	svc := newService(repo, &stubRegistrar{outcome: registry.OutcomeCreated}, &stubEnqueuer{})

	_, err := svc.Create(context.Background(), CreateInput{ID: testID, Name: "Widget"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("no local write may happen, got %d", repo.createCalls)
	}
}

func TestCreate_ConflictAndPresentLocally(t *testing.T) {
	repo := &stubRepo{existing: &domain.Product{ID: testID}}
	svc := newService(repo, &stubRegistrar{outcome: registry.OutcomeConflict}, &stubEnqueuer{})

	_, err := svc.Create(context.Background(), CreateInput{ID: testID, Name: "Widget"})
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("no local write may happen, got %d", repo.createCalls)
	}
}

func TestCreate_ConflictButAbsentLocally(t *testing.T) {
	// Re-registration of a product deleted locally: the registry still
	// knows the id, so conflict is the expected re-creation path.
	repo := &stubRepo{}
	tasks := &stubEnqueuer{}
	svc := newService(repo, &stubRegistrar{outcome: registry.OutcomeConflict}, tasks)

	p, err := svc.Create(context.Background(), CreateInput{ID: testID, Name: "Widget"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != testID || repo.createCalls != 1 {
		t.Fatalf("expected local create, got %+v calls=%d", p, repo.createCalls)
	}
	if len(tasks.ids) != 1 {
		t.Fatalf("expected reconcile enqueued, got %v", tasks.ids)
	}
}

func TestCreate_RegistrarFailureBlocksLocalWrite(t *testing.T) {
	repo := &stubRepo{}
	tasks := &stubEnqueuer{}
	reg := &stubRegistrar{err: &domain.RegistryError{StatusCode: http.StatusServiceUnavailable, Op: "register product"}}
	svc := newService(repo, reg, tasks)

	_, err := svc.Create(context.Background(), CreateInput{ID: testID, Name: "Widget"})
	var regErr *domain.RegistryError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected RegistryError, got %v", err)
	}
	if repo.createCalls != 0 || len(tasks.ids) != 0 {
		t.Fatalf("no local write or enqueue on registration failure")
	}
}

func TestCreate_IdentityMismatchBlocksLocalWrite(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, &stubRegistrar{err: domain.ErrIdentityMismatch}, &stubEnqueuer{})

	_, err := svc.Create(context.Background(), CreateInput{ID: testID, Name: "Widget"})
	if !errors.Is(err, domain.ErrIdentityMismatch) {
		t.Fatalf("expected ErrIdentityMismatch, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("no local write may happen on identity mismatch")
	}
}

func TestCreate_Validation(t *testing.T) {
	reg := &stubRegistrar{outcome: registry.OutcomeCreated}
	svc := newService(&stubRepo{}, reg, &stubEnqueuer{})

	if _, err := svc.Create(context.Background(), CreateInput{ID: "not-a-uuid", Name: "Widget"}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad id, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{ID: testID, Name: "   "}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty name, got %v", err)
	}
	if reg.calls != 0 {
		t.Fatalf("invalid input must not reach the registry, got %d calls", reg.calls)
	}
}

func TestDelete_ReturnsDeletedProduct(t *testing.T) {
	repo := &stubRepo{existing: &domain.Product{ID: testID, Name: "Widget"}}
	svc := newService(repo, &stubRegistrar{}, &stubEnqueuer{})

	p, err := svc.Delete(context.Background(), testID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if p.ID != testID || repo.deleteCalls != 1 {
		t.Fatalf("expected delete of %s, got %+v calls=%d", testID, p, repo.deleteCalls)
	}
}

func TestOffers_MissingProduct(t *testing.T) {
	svc := newService(&stubRepo{}, &stubRegistrar{}, &stubEnqueuer{})

	_, err := svc.Offers(context.Background(), testID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
