package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Repository persists categories in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all categories with their active product counts.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.category_id, c.category_name, c.description, c.created_at, c.updated_at,
		       COUNT(p.product_id) FILTER (WHERE p.is_active)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.category_id
		GROUP BY c.category_id
		ORDER BY c.category_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Get fetches one category.
func (r *Repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`SELECT category_id, category_name, description, created_at, updated_at
		 FROM categories WHERE category_id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

// Create inserts a category. A duplicate name maps to ErrConflict.
func (r *Repository) Create(ctx context.Context, c Category) (Category, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (category_name, description) VALUES ($1, $2)
		 RETURNING category_id, created_at, updated_at`,
		c.Name, c.Description).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, mapUnique(err)
	}
	return c, nil
}

// Update rewrites a category.
func (r *Repository) Update(ctx context.Context, id int64, c Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET category_name = $1, description = $2, updated_at = NOW()
		 WHERE category_id = $3`,
		c.Name, c.Description, id)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ActiveProductCount counts active products referencing the category.
func (r *Repository) ActiveProductCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1 AND is_active = TRUE`, id).Scan(&count)
	return count, err
}

// Delete removes a category row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
