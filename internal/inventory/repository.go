package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimart-pos/minimart-pos/internal/platform/db"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by stock workflows.
type TxRepository interface {
	ProductForUpdate(ctx context.Context, productID int64) (ProductState, error)
	SetStock(ctx context.Context, productID int64, stock int) error
	AppendLog(ctx context.Context, entry LogEntry) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps fn in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (t *txRepo) ProductForUpdate(ctx context.Context, productID int64) (ProductState, error) {
	return ProductForUpdateTx(ctx, t.tx, productID)
}

func (t *txRepo) SetStock(ctx context.Context, productID int64, stock int) error {
	return SetStockTx(ctx, t.tx, productID, stock)
}

func (t *txRepo) AppendLog(ctx context.Context, entry LogEntry) error {
	return AppendLogTx(ctx, t.tx, entry)
}

// ProductForUpdateTx locks the product row for the remainder of the
// transaction and returns its current state. Inactive products are reported
// as not found so no workflow can move stock on them.
func ProductForUpdateTx(ctx context.Context, tx pgx.Tx, productID int64) (ProductState, error) {
	var p ProductState
	var barcode *string
	err := tx.QueryRow(ctx,
		`SELECT product_id, product_name, barcode, sale_price, purchase_price, unit, current_stock, min_stock, is_active
		 FROM products WHERE product_id = $1 AND is_active = TRUE
		 FOR UPDATE`, productID).
		Scan(&p.ID, &p.Name, &barcode, &p.SalePrice, &p.PurchasePrice, &p.Unit, &p.Stock, &p.MinStock, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductState{}, shared.ErrNotFound
		}
		return ProductState{}, err
	}
	if barcode != nil {
		p.Barcode = *barcode
	}
	return p, nil
}

// SetStockTx writes the absolute stock value computed under the row lock.
func SetStockTx(ctx context.Context, tx pgx.Tx, productID int64, stock int) error {
	_, err := tx.Exec(ctx,
		`UPDATE products SET current_stock = $1, updated_at = NOW() WHERE product_id = $2`,
		stock, productID)
	return err
}

// AppendLogTx appends one ledger entry. The ledger is append-only; nothing in
// the application updates or deletes inventory_logs rows.
func AppendLogTx(ctx context.Context, tx pgx.Tx, entry LogEntry) error {
	var refID any
	if entry.ReferenceID != 0 {
		refID = entry.ReferenceID
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO inventory_logs
		   (product_id, user_id, transaction_type, quantity_change, previous_stock, new_stock, reference_id, reference_type, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ProductID, entry.UserID, string(entry.Type), entry.QuantityChange,
		entry.PreviousStock, entry.NewStock, refID, string(entry.ReferenceType), entry.Notes)
	return err
}

// ListLogs returns ledger entries newest first with product and actor names.
func (r *Repository) ListLogs(ctx context.Context, filter LogFilter) ([]LogEntry, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	where := ``
	args := []any{}
	if filter.ProductID != 0 {
		where = ` WHERE il.product_id = $1`
		args = append(args, filter.ProductID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_logs il`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT il.log_id, il.product_id, il.user_id, il.transaction_type, il.quantity_change,
		       il.previous_stock, il.new_stock, COALESCE(il.reference_id, 0), il.reference_type,
		       il.notes, il.created_at,
		       COALESCE(p.product_name, ''), COALESCE(p.barcode, ''), COALESCE(u.full_name, '')
		FROM inventory_logs il
		LEFT JOIN products p ON il.product_id = p.product_id
		LEFT JOIN users u ON il.user_id = u.user_id` + where + `
		ORDER BY il.created_at DESC, il.log_id DESC`
	if filter.ProductID != 0 {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var txType, refType string
		if err := rows.Scan(&e.ID, &e.ProductID, &e.UserID, &txType, &e.QuantityChange,
			&e.PreviousStock, &e.NewStock, &e.ReferenceID, &refType,
			&e.Notes, &e.CreatedAt, &e.ProductName, &e.Barcode, &e.UserName); err != nil {
			return nil, 0, err
		}
		e.Type = TransactionType(txType)
		e.ReferenceType = ReferenceType(refType)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// Stats aggregates ledger movement, top movers and low-stock products.
func (r *Repository) Stats(ctx context.Context, filter StatsFilter) (Stats, error) {
	where, args := dateBounds(filter, "created_at")

	var stats Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT product_id),
		       COALESCE(SUM(CASE WHEN transaction_type = 'in' THEN quantity_change ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN transaction_type = 'out' THEN ABS(quantity_change) ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN transaction_type = 'adjustment' THEN quantity_change ELSE 0 END), 0)
		FROM inventory_logs`+where, args...).
		Scan(&stats.Overall.TotalProducts, &stats.Overall.TotalIn, &stats.Overall.TotalOut, &stats.Overall.TotalAdjustments)
	if err != nil {
		return Stats{}, err
	}

	topWhere, topArgs := dateBounds(filter, "il.created_at")
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(p.product_name, ''), COALESCE(p.barcode, ''),
		       COALESCE(SUM(ABS(il.quantity_change)), 0),
		       COALESCE(SUM(CASE WHEN il.transaction_type = 'in' THEN il.quantity_change ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN il.transaction_type = 'out' THEN ABS(il.quantity_change) ELSE 0 END), 0)
		FROM inventory_logs il
		LEFT JOIN products p ON il.product_id = p.product_id`+topWhere+`
		GROUP BY p.product_id, p.product_name, p.barcode
		ORDER BY 3 DESC
		LIMIT 10`, topArgs...)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var m ProductMovement
		if err := rows.Scan(&m.ProductName, &m.Barcode, &m.TotalMovement, &m.TotalIn, &m.TotalOut); err != nil {
			return Stats{}, err
		}
		stats.TopProducts = append(stats.TopProducts, m)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	lowRows, err := r.pool.Query(ctx, `
		SELECT product_name, COALESCE(barcode, ''), current_stock, min_stock, current_stock - min_stock
		FROM products
		WHERE is_active = TRUE AND current_stock <= min_stock
		ORDER BY current_stock - min_stock ASC
		LIMIT 10`)
	if err != nil {
		return Stats{}, err
	}
	defer lowRows.Close()
	for lowRows.Next() {
		var p LowStockProduct
		if err := lowRows.Scan(&p.ProductName, &p.Barcode, &p.CurrentStock, &p.MinStock, &p.StockDifference); err != nil {
			return Stats{}, err
		}
		stats.LowStockProducts = append(stats.LowStockProducts, p)
	}
	return stats, lowRows.Err()
}

// Report returns per-product in/out totals for a date window.
func (r *Repository) Report(ctx context.Context, from, to time.Time) ([]ReportRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.product_id, p.product_name, COALESCE(p.barcode, ''), p.current_stock,
		       COUNT(il.log_id),
		       COALESCE(SUM(CASE WHEN il.transaction_type = 'in' THEN il.quantity_change ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN il.transaction_type = 'out' THEN ABS(il.quantity_change) ELSE 0 END), 0)
		FROM products p
		LEFT JOIN inventory_logs il ON p.product_id = il.product_id
		  AND il.created_at >= $1 AND il.created_at < $2
		WHERE p.is_active = TRUE
		GROUP BY p.product_id, p.product_name, p.barcode, p.current_stock
		ORDER BY p.product_name`, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.Barcode, &row.CurrentStock,
			&row.TotalTransactions, &row.TotalIn, &row.TotalOut); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

func dateBounds(filter StatsFilter, column string) (string, []any) {
	if filter.From.IsZero() || filter.To.IsZero() {
		return "", nil
	}
	return ` WHERE ` + column + ` >= $1 AND ` + column + ` < $2`,
		[]any{filter.From, filter.To.AddDate(0, 0, 1)}
}
