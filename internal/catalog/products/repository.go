package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `p.product_id, p.product_name, COALESCE(p.barcode, ''), COALESCE(p.category_id, 0),
	COALESCE(c.category_name, ''), p.purchase_price, p.sale_price, p.unit,
	p.current_stock, p.min_stock, COALESCE(p.image_url, ''), p.is_active, p.created_at, p.updated_at`

const productJoin = ` FROM products p LEFT JOIN categories c ON p.category_id = c.category_id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Barcode, &p.CategoryID,
		&p.CategoryName, &p.PurchasePrice, &p.SalePrice, &p.Unit,
		&p.CurrentStock, &p.MinStock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// Get fetches one active product by id.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+productJoin+` WHERE p.product_id = $1 AND p.is_active = TRUE`, id))
}

// GetByBarcode fetches one active product by barcode for register scans.
func (r *Repository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+productJoin+` WHERE p.barcode = $1 AND p.is_active = TRUE`, barcode))
}

// List returns active products with optional search, category and low-stock
// filters. Search matches the folded search_name column.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	where := ` WHERE p.is_active = TRUE`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+Fold(filter.Search)+"%")
		where += ` AND p.search_name LIKE $` + strconv.Itoa(len(args))
	}
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		where += ` AND p.category_id = $` + strconv.Itoa(len(args))
	}
	if filter.LowStock {
		where += ` AND p.current_stock <= p.min_stock`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + productJoin + where +
		` ORDER BY p.product_name LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Create inserts a product. A duplicate barcode maps to ErrConflict.
func (r *Repository) Create(ctx context.Context, p Product, searchName string) (Product, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products
		   (product_name, search_name, barcode, category_id, purchase_price, sale_price,
		    unit, current_stock, min_stock, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING product_id, created_at, updated_at`,
		p.Name, searchName, nullable(p.Barcode), nullableID(p.CategoryID),
		p.PurchasePrice, p.SalePrice, p.Unit, p.CurrentStock, p.MinStock, nullable(p.ImageURL)).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, mapUnique(err)
	}
	p.IsActive = true
	return p, nil
}

// Update applies a partial update to an active product. Only the non-nil
// fields are written. A barcode collision with another product maps to
// ErrConflict via the unique index.
func (r *Repository) Update(ctx context.Context, id int64, u Update, searchName *string) error {
	set := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, column+` = $`+strconv.Itoa(len(args)))
	}

	if u.Name != nil {
		add(`product_name`, *u.Name)
	}
	if searchName != nil {
		add(`search_name`, *searchName)
	}
	if u.Barcode != nil {
		add(`barcode`, nullable(*u.Barcode))
	}
	if u.CategoryID != nil {
		add(`category_id`, nullableID(*u.CategoryID))
	}
	if u.PurchasePrice != nil {
		add(`purchase_price`, *u.PurchasePrice)
	}
	if u.SalePrice != nil {
		add(`sale_price`, *u.SalePrice)
	}
	if u.Unit != nil {
		add(`unit`, *u.Unit)
	}
	if u.MinStock != nil {
		add(`min_stock`, *u.MinStock)
	}
	if u.ImageURL != nil {
		add(`image_url`, nullable(*u.ImageURL))
	}
	if u.IsActive != nil {
		add(`is_active`, *u.IsActive)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := `UPDATE products SET ` + join(set) + `, updated_at = NOW()
		WHERE product_id = $` + strconv.Itoa(len(args)) + ` AND is_active = TRUE`

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete deactivates a product, keeping its sale and ledger history.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE product_id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func join(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
