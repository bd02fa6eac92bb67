package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"catalog-sync/internal/domain"
	"catalog-sync/internal/registry"
	offerrepo "catalog-sync/internal/repository/offer"
	productrepo "catalog-sync/internal/repository/product"
	"github.com/google/uuid"
)

// Registrar performs the remote create-or-acknowledge handshake.
type Registrar interface {
	RegisterProduct(ctx context.Context, product domain.Product) (registry.RegistrationOutcome, error)
}

// Enqueuer schedules the initial reconciliation for a freshly created
// product. Called only after the local write committed.
type Enqueuer interface {
	EnqueueReconcile(productID string) bool
}

type CreateInput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Service owns the product lifecycle: remote registration ahead of every
// local create, plus plain CRUD passthrough.
type Service struct {
	repo      productrepo.Repository
	offers    offerrepo.Repository
	registrar Registrar
	tasks     Enqueuer
	logger    *log.Logger
}

func New(repo productrepo.Repository, offers offerrepo.Repository, registrar Registrar, tasks Enqueuer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, offers: offers, registrar: registrar, tasks: tasks, logger: logger}
}

// Create registers the product with the offer registry and, when the
// resolution of (registry status, local existence) allows it, persists the
// product locally and enqueues its first reconciliation.
//
//	created  + absent locally  -> create
//	created  + present locally -> ErrAlreadyExists
//	conflict + present locally -> ErrAlreadyRegistered
//	conflict + absent locally  -> create (re-registration after local delete)
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if _, err := uuid.Parse(in.ID); err != nil {
		return nil, fmt.Errorf("%w: product id must be a UUID", domain.ErrInvalid)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalid)
	}

	exists := true
	if _, err := s.repo.GetByID(ctx, in.ID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		exists = false
	}

	product := domain.Product{ID: in.ID, Name: in.Name, Description: in.Description}
	outcome, err := s.registrar.RegisterProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	switch {
	case outcome == registry.OutcomeCreated && exists:
		return nil, domain.ErrAlreadyExists
	case outcome == registry.OutcomeConflict && exists:
		return nil, domain.ErrAlreadyRegistered
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	if !s.tasks.EnqueueReconcile(created.ID) {
		s.logger.Printf("product service: initial reconcile not enqueued id=%s", created.ID)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalid)
	}
	return s.repo.Update(ctx, domain.Product{ID: id, Name: in.Name, Description: in.Description})
}

// Delete removes the product and, through the storage cascade, all its
// offers. The registry keeps its record; re-creating the same id later is
// the expected conflict-then-create path.
func (s *Service) Delete(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Printf("product service: deleted id=%s", id)
	return product, nil
}

// Offers lists the locally mirrored offers for a product, cheapest first.
func (s *Service) Offers(ctx context.Context, id string) ([]domain.Offer, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.offers.ListByProduct(ctx, id)
}
