package product

import (
	"context"

	"catalog-sync/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, offset, limit int) ([]domain.Product, error)
	// ListIDs enumerates product identities only, for cheap fan-out paging.
	ListIDs(ctx context.Context, offset, limit int) ([]string, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, product domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
