package sales

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimart-pos/minimart-pos/internal/inventory"
	"github.com/minimart-pos/minimart-pos/internal/platform/db"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations of the checkout transaction. The stock
// write and ledger append reuse the inventory helpers so every workflow moves
// stock through the same code path.
type TxRepository interface {
	ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error)
	NextInvoiceSeq(ctx context.Context) (int64, error)
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertItem(ctx context.Context, item SaleItem) error
	SetStock(ctx context.Context, productID int64, stock int) error
	AppendLog(ctx context.Context, entry inventory.LogEntry) error
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

func (t *txRepo) ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error) {
	return inventory.ProductForUpdateTx(ctx, t.tx, productID)
}

// NextInvoiceSeq draws from a dedicated sequence so concurrent checkouts can
// never format the same invoice number. Numbers burned by rolled-back
// transactions leave gaps, which is fine.
func (t *txRepo) NextInvoiceSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := t.tx.QueryRow(ctx, `SELECT nextval('sales_invoice_seq')`).Scan(&seq)
	return seq, err
}

func (t *txRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales
		   (invoice_number, user_id, customer_name, customer_phone, customer_email,
		    subtotal, discount_amount, total_amount, cash_received, change_amount, payment_method)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING sale_id`,
		sale.InvoiceNumber, sale.UserID, nullable(sale.CustomerName), nullable(sale.CustomerPhone),
		nullable(sale.CustomerEmail), sale.Subtotal, sale.DiscountAmount, sale.TotalAmount,
		sale.CashReceived, sale.ChangeAmount, sale.PaymentMethod).
		Scan(&id)
	return id, err
}

func (t *txRepo) InsertItem(ctx context.Context, item SaleItem) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, total_price)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
	return err
}

func (t *txRepo) SetStock(ctx context.Context, productID int64, stock int) error {
	return inventory.SetStockTx(ctx, t.tx, productID, stock)
}

func (t *txRepo) AppendLog(ctx context.Context, entry inventory.LogEntry) error {
	return inventory.AppendLogTx(ctx, t.tx, entry)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const saleColumns = `s.sale_id, s.invoice_number, s.user_id,
	COALESCE(s.customer_name, ''), COALESCE(s.customer_phone, ''), COALESCE(s.customer_email, ''),
	s.subtotal, s.discount_amount, s.total_amount, s.cash_received, s.change_amount,
	s.payment_method, s.created_at, COALESCE(u.full_name, '')`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.InvoiceNumber, &s.UserID,
		&s.CustomerName, &s.CustomerPhone, &s.CustomerEmail,
		&s.Subtotal, &s.DiscountAmount, &s.TotalAmount, &s.CashReceived, &s.ChangeAmount,
		&s.PaymentMethod, &s.CreatedAt, &s.CashierName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, err
	}
	return s, nil
}

// Get returns one sale with its line items.
func (r *Repository) Get(ctx context.Context, id int64) (Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx,
		`SELECT `+saleColumns+` FROM sales s LEFT JOIN users u ON s.user_id = u.user_id WHERE s.sale_id = $1`, id))
	if err != nil {
		return Sale{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT si.sale_item_id, si.sale_id, si.product_id,
		       COALESCE(p.product_name, ''), COALESCE(p.barcode, ''), COALESCE(p.unit, ''),
		       si.quantity, si.unit_price, si.total_price
		FROM sale_items si
		LEFT JOIN products p ON si.product_id = p.product_id
		WHERE si.sale_id = $1
		ORDER BY si.sale_item_id`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID,
			&item.ProductName, &item.Barcode, &item.Unit,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return Sale{}, err
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, rows.Err()
}

// List returns sales newest first, optionally bounded by date.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
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
	if !filter.From.IsZero() && !filter.To.IsZero() {
		where = ` WHERE s.created_at >= $1 AND s.created_at < $2`
		args = append(args, filter.From, filter.To.AddDate(0, 0, 1))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := len(args)
	query := `SELECT ` + saleColumns + ` FROM sales s LEFT JOIN users u ON s.user_id = u.user_id` + where +
		` ORDER BY s.created_at DESC, s.sale_id DESC` +
		` LIMIT $` + strconv.Itoa(offset+1) + ` OFFSET $` + strconv.Itoa(offset+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// Stats aggregates revenue over a date window.
func (r *Repository) Stats(ctx context.Context, filter ListFilter) (Stats, error) {
	where := ``
	args := []any{}
	if !filter.From.IsZero() && !filter.To.IsZero() {
		where = ` WHERE s.created_at >= $1 AND s.created_at < $2`
		args = append(args, filter.From, filter.To.AddDate(0, 0, 1))
	}

	var stats Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(s.total_amount), 0),
		       COALESCE(SUM(s.discount_amount), 0),
		       COALESCE((SELECT SUM(si.quantity) FROM sale_items si JOIN sales s2 ON si.sale_id = s2.sale_id`+
		statsItemBound(where)+`), 0),
		       COALESCE(AVG(s.total_amount), 0)
		FROM sales s`+where, args...).
		Scan(&stats.TotalTransactions, &stats.TotalRevenue, &stats.TotalDiscount, &stats.TotalItems, &stats.AverageSale)
	return stats, err
}

func statsItemBound(where string) string {
	if where == "" {
		return ""
	}
	return ` WHERE s2.created_at >= $1 AND s2.created_at < $2`
}
