// Package offer exposes the read surface over locally mirrored offers. All
// writes go through the reconciliation engine; this service only reads.
package offer

import (
	"context"

	"catalog-sync/internal/domain"
	offerrepo "catalog-sync/internal/repository/offer"
)

type Service struct {
	repo offerrepo.Repository
}

func New(repo offerrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Offer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]domain.Offer, error) {
	return s.repo.List(ctx, offset, limit)
}
