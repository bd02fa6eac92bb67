package offer

import (
	"context"
	"errors"
	"io"
	"log"

	"catalog-sync/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query
// methods serve plain and transactional stores.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	store  pgStore
	logger *log.Logger
}

type pgStore struct {
	q      querier
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{
		pool:   pool,
		store:  pgStore{q: pool, logger: logger},
		logger: logger,
	}
}

func (r *postgresRepo) UpsertBatch(ctx context.Context, offers []domain.Offer) (int, error) {
	return r.store.UpsertBatch(ctx, offers)
}

func (r *postgresRepo) ListIDsByProduct(ctx context.Context, productID string) ([]string, error) {
	return r.store.ListIDsByProduct(ctx, productID)
}

func (r *postgresRepo) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	return r.store.DeleteByIDs(ctx, ids)
}

func (r *postgresRepo) InTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(pgStore{q: tx, logger: r.logger})
	})
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	const q = `
SELECT id::text, price, items_in_stock, product_id::text, updated_at
FROM offers
WHERE id = $1
`
	var o domain.Offer
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&o.ID, &o.Price, &o.ItemsInStock, &o.ProductID, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("offer repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) List(ctx context.Context, offset, limit int) ([]domain.Offer, error) {
	const q = `
SELECT id::text, price, items_in_stock, product_id::text, updated_at
FROM offers
ORDER BY product_id, price, id
OFFSET $1 LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, offset, limit)
	if err != nil {
		r.logger.Printf("offer repo: list offset=%d limit=%d error=%v", offset, limit, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.ID, &o.Price, &o.ItemsInStock, &o.ProductID, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("offer repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Offer, error) {
	const q = `
SELECT id::text, price, items_in_stock, product_id::text, updated_at
FROM offers
WHERE product_id = $1
ORDER BY price ASC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		r.logger.Printf("offer repo: list product_id=%s error=%v", productID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.ID, &o.Price, &o.ItemsInStock, &o.ProductID, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("offer repo: list rows product_id=%s error=%v", productID, err)
		return nil, err
	}
	return result, nil
}

func (s pgStore) UpsertBatch(ctx context.Context, offers []domain.Offer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}
	const q = `
INSERT INTO offers (id, price, items_in_stock, product_id, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (id) DO UPDATE SET
    price = EXCLUDED.price,
    items_in_stock = EXCLUDED.items_in_stock,
    product_id = EXCLUDED.product_id,
    updated_at = now()
`
	batch := &pgx.Batch{}
	for _, o := range offers {
		batch.Queue(q, o.ID, o.Price, o.ItemsInStock, o.ProductID)
	}

	results := s.q.SendBatch(ctx, batch)
	defer results.Close()
	for i := range offers {
		if _, err := results.Exec(); err != nil {
			s.logger.Printf("offer repo: upsert id=%s error=%v", offers[i].ID, err)
			return i, err
		}
	}
	return len(offers), nil
}

func (s pgStore) ListIDsByProduct(ctx context.Context, productID string) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT id::text FROM offers WHERE product_id = $1`, productID)
	if err != nil {
		s.logger.Printf("offer repo: list ids product_id=%s error=%v", productID, err)
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s pgStore) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.q.Exec(ctx, `DELETE FROM offers WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		s.logger.Printf("offer repo: delete batch size=%d error=%v", len(ids), err)
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
