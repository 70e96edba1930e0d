package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Repository persists discounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const discountColumns = `discount_id, discount_name, discount_type, discount_value, start_date, end_date, is_active, created_at`

func scanDiscount(row pgx.Row) (Discount, error) {
	var d Discount
	var dtype string
	err := row.Scan(&d.ID, &d.Name, &dtype, &d.Value, &d.StartDate, &d.EndDate, &d.IsActive, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Discount{}, shared.ErrNotFound
		}
		return Discount{}, err
	}
	d.Type = Type(dtype)
	return d, nil
}

// List returns discounts newest first.
func (r *Repository) List(ctx context.Context, page, limit int) ([]Discount, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM discounts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+discountColumns+` FROM discounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// ListActive returns discounts usable today.
func (r *Repository) ListActive(ctx context.Context, at time.Time) ([]Discount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+discountColumns+` FROM discounts
		 WHERE is_active = TRUE AND $1::date BETWEEN start_date AND end_date
		 ORDER BY created_at DESC`, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Get fetches a discount by id.
func (r *Repository) Get(ctx context.Context, id int64) (Discount, error) {
	return scanDiscount(r.pool.QueryRow(ctx,
		`SELECT `+discountColumns+` FROM discounts WHERE discount_id = $1`, id))
}

// Create inserts a new discount. A duplicate name maps to ErrConflict.
func (r *Repository) Create(ctx context.Context, d Discount) (Discount, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO discounts (discount_name, discount_type, discount_value, start_date, end_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING discount_id, created_at`,
		d.Name, string(d.Type), d.Value, d.StartDate, d.EndDate, d.IsActive).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return Discount{}, mapUnique(err)
	}
	return d, nil
}

// Update rewrites a discount.
func (r *Repository) Update(ctx context.Context, id int64, d Discount) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE discounts
		 SET discount_name = $1, discount_type = $2, discount_value = $3, start_date = $4, end_date = $5, is_active = $6
		 WHERE discount_id = $7`,
		d.Name, string(d.Type), d.Value, d.StartDate, d.EndDate, d.IsActive, id)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a discount.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discounts WHERE discount_id = $1`, id)
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
