package suppliers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Repository persists suppliers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const supplierColumns = `supplier_id, supplier_name, contact_person, phone, email, address, is_active, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email, &s.Address,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, shared.ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

// List returns active suppliers ordered by name.
func (r *Repository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE is_active = TRUE ORDER BY supplier_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Get fetches one active supplier.
func (r *Repository) Get(ctx context.Context, id int64) (Supplier, error) {
	return scanSupplier(r.pool.QueryRow(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE supplier_id = $1 AND is_active = TRUE`, id))
}

// Create inserts a supplier. A duplicate name maps to ErrConflict.
func (r *Repository) Create(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (supplier_name, contact_person, phone, email, address)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING supplier_id, created_at, updated_at`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.Address).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Supplier{}, mapUnique(err)
	}
	s.IsActive = true
	return s, nil
}

// Update rewrites an active supplier.
func (r *Repository) Update(ctx context.Context, id int64, s Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers
		 SET supplier_name = $1, contact_person = $2, phone = $3, email = $4, address = $5, updated_at = NOW()
		 WHERE supplier_id = $6 AND is_active = TRUE`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.Address, id)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// OrderCount counts purchase orders referencing the supplier.
func (r *Repository) OrderCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM purchase_orders WHERE supplier_id = $1`, id).Scan(&count)
	return count, err
}

// SoftDelete deactivates a supplier.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET is_active = FALSE, updated_at = NOW() WHERE supplier_id = $1 AND is_active = TRUE`, id)
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
