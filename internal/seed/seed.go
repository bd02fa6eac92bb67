package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	ID          string
	Name        string
	Description string
}

// Apply inserts basic seed data for manual testing. It writes straight to
// storage, bypassing remote registration, and is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			ID:          "6f07e9e2-7a4c-4f2e-9a3b-6a2d0c54c111",
			Name:        "Demo Widget",
			Description: "Widget used for manual testing of offer sync",
		},
		{
			ID:          "0b9f2d84-1f6e-4f0a-8d0e-2f3a9b7cc222",
			Name:        "Demo Gadget",
			Description: "Gadget used for manual testing of offer sync",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, name, description)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description
`
	_, err := pool.Exec(ctx, q, p.ID, p.Name, p.Description)
	return err
}
