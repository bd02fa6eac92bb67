package product

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

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, description)
VALUES ($1, $2, $3)
RETURNING id::text, name, description, created_at
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, product.ID, product.Name, product.Description).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Printf("product repo: create id=%s duplicate", product.ID)
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create id=%s error=%v", product.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", p.ID, p.Name)
	return &p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, name, description, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	const q = `
SELECT id::text, name, description, created_at
FROM products
ORDER BY created_at DESC
OFFSET $1 LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, offset, limit)
	if err != nil {
		r.logger.Printf("product repo: list offset=%d limit=%d error=%v", offset, limit, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) ListIDs(ctx context.Context, offset, limit int) ([]string, error) {
	const q = `
SELECT id::text
FROM products
ORDER BY created_at, id
OFFSET $1 LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, offset, limit)
	if err != nil {
		r.logger.Printf("product repo: list ids offset=%d limit=%d error=%v", offset, limit, err)
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
		r.logger.Printf("product repo: list ids rows error=%v", err)
		return nil, err
	}
	return ids, nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return 0, err
	}
	return count, nil
}

func (r *postgresRepo) Update(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $2, description = $3
WHERE id = $1
RETURNING id::text, name, description, created_at
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, product.ID, product.Name, product.Description).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", product.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s", p.ID)
	return &p, nil
}

// Delete removes a product; its offers go with it via the FK cascade.
func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}
