package purchasing

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

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations of the purchase
// workflows. Stock writes and ledger appends reuse the inventory helpers.
type TxRepository interface {
	SupplierActive(ctx context.Context, supplierID int64) (bool, error)
	ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error)
	NextOrderSeq(ctx context.Context) (int64, error)
	InsertOrder(ctx context.Context, order PurchaseOrder) (int64, error)
	InsertItem(ctx context.Context, item PurchaseItem) error
	OrderForUpdate(ctx context.Context, orderID int64) (PurchaseOrder, error)
	OrderItems(ctx context.Context, orderID int64) ([]PurchaseItem, error)
	SetStatus(ctx context.Context, orderID int64, status Status) error
	DeleteOrder(ctx context.Context, orderID int64) error
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

func (t *txRepo) SupplierActive(ctx context.Context, supplierID int64) (bool, error) {
	var active bool
	err := t.tx.QueryRow(ctx,
		`SELECT is_active FROM suppliers WHERE supplier_id = $1`, supplierID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, shared.ErrNotFound
	}
	return active, err
}

func (t *txRepo) ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error) {
	return inventory.ProductForUpdateTx(ctx, t.tx, productID)
}

// NextOrderSeq draws from a dedicated sequence so concurrent order creation
// cannot collide on the same order number.
func (t *txRepo) NextOrderSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := t.tx.QueryRow(ctx, `SELECT nextval('purchase_order_seq')`).Scan(&seq)
	return seq, err
}

func (t *txRepo) InsertOrder(ctx context.Context, order PurchaseOrder) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO purchase_orders (order_number, supplier_id, user_id, total_amount, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING purchase_order_id`,
		order.OrderNumber, order.SupplierID, order.UserID, order.TotalAmount, string(order.Status), order.Notes).
		Scan(&id)
	return id, err
}

func (t *txRepo) InsertItem(ctx context.Context, item PurchaseItem) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO purchase_order_items (purchase_order_id, product_id, quantity, unit_price, total_price)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
	return err
}

func (t *txRepo) OrderForUpdate(ctx context.Context, orderID int64) (PurchaseOrder, error) {
	var o PurchaseOrder
	var status string
	err := t.tx.QueryRow(ctx,
		`SELECT purchase_order_id, order_number, supplier_id, user_id, total_amount, status, notes, created_at, updated_at
		 FROM purchase_orders WHERE purchase_order_id = $1
		 FOR UPDATE`, orderID).
		Scan(&o.ID, &o.OrderNumber, &o.SupplierID, &o.UserID, &o.TotalAmount, &status, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, shared.ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	o.Status = Status(status)
	return o, nil
}

func (t *txRepo) OrderItems(ctx context.Context, orderID int64) ([]PurchaseItem, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT item_id, purchase_order_id, product_id, quantity, unit_price, total_price
		 FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY item_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PurchaseItem
	for rows.Next() {
		var item PurchaseItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (t *txRepo) SetStatus(ctx context.Context, orderID int64, status Status) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE purchase_orders SET status = $1, updated_at = NOW() WHERE purchase_order_id = $2`,
		string(status), orderID)
	return err
}

// DeleteOrder removes the order row; items cascade.
func (t *txRepo) DeleteOrder(ctx context.Context, orderID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM purchase_orders WHERE purchase_order_id = $1`, orderID)
	return err
}

func (t *txRepo) SetStock(ctx context.Context, productID int64, stock int) error {
	return inventory.SetStockTx(ctx, t.tx, productID, stock)
}

func (t *txRepo) AppendLog(ctx context.Context, entry inventory.LogEntry) error {
	return inventory.AppendLogTx(ctx, t.tx, entry)
}

const orderColumns = `po.purchase_order_id, po.order_number, po.supplier_id, po.user_id,
	po.total_amount, po.status, po.notes, po.created_at, po.updated_at,
	COALESCE(s.supplier_name, ''), COALESCE(u.full_name, '')`

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.SupplierID, &o.UserID,
		&o.TotalAmount, &status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		&o.SupplierName, &o.UserName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, shared.ErrNotFound
		}
		return PurchaseOrder{}, err
	}
	o.Status = Status(status)
	return o, nil
}

// Get returns one order with items and joined names.
func (r *Repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM purchase_orders po
		LEFT JOIN suppliers s ON po.supplier_id = s.supplier_id
		LEFT JOIN users u ON po.user_id = u.user_id
		WHERE po.purchase_order_id = $1`, id))
	if err != nil {
		return PurchaseOrder{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT poi.item_id, poi.purchase_order_id, poi.product_id,
		       COALESCE(p.product_name, ''), poi.quantity, poi.unit_price, poi.total_price
		FROM purchase_order_items poi
		LEFT JOIN products p ON poi.product_id = p.product_id
		WHERE poi.purchase_order_id = $1
		ORDER BY poi.item_id`, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item PurchaseItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.ProductName, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return PurchaseOrder{}, err
		}
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

// List returns orders newest first with optional status and supplier filters.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, int, error) {
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
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += ` AND po.status = $` + strconv.Itoa(len(args))
	}
	if filter.SupplierID != 0 {
		args = append(args, filter.SupplierID)
		where += ` AND po.supplier_id = $` + strconv.Itoa(len(args))
	}
	if where != "" {
		where = ` WHERE` + where[4:]
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders po`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + orderColumns + `
		FROM purchase_orders po
		LEFT JOIN suppliers s ON po.supplier_id = s.supplier_id
		LEFT JOIN users u ON po.user_id = u.user_id` + where + `
		ORDER BY po.created_at DESC, po.purchase_order_id DESC
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}
