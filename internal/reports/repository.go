package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the report aggregate queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TodaySummary returns today's revenue and transaction count.
func (r *Repository) TodaySummary(ctx context.Context, now time.Time) (float64, int, error) {
	day := now.Truncate(24 * time.Hour)
	var revenue float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM sales WHERE created_at >= $1 AND created_at < $2`,
		day, day.AddDate(0, 0, 1)).Scan(&revenue, &count)
	return revenue, count, err
}

// MonthRevenue returns the revenue of the calendar month containing now.
func (r *Repository) MonthRevenue(ctx context.Context, now time.Time) (float64, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var revenue float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM sales WHERE created_at >= $1 AND created_at < $2`,
		monthStart, monthStart.AddDate(0, 1, 0)).Scan(&revenue)
	return revenue, err
}

// CatalogCounts returns the active product count and how many of them sit at
// or below min stock.
func (r *Repository) CatalogCounts(ctx context.Context) (int, int, error) {
	var products, lowStock int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE current_stock <= min_stock)
		FROM products WHERE is_active = TRUE`).Scan(&products, &lowStock)
	return products, lowStock, err
}

// PendingPurchaseCount counts open purchase orders.
func (r *Repository) PendingPurchaseCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM purchase_orders WHERE status = 'pending'`).Scan(&count)
	return count, err
}

// RecentSales returns the latest sales for the dashboard.
func (r *Repository) RecentSales(ctx context.Context, limit int) ([]RecentSale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.sale_id, s.invoice_number, s.total_amount, COALESCE(u.full_name, ''), s.created_at
		FROM sales s
		LEFT JOIN users u ON s.user_id = u.user_id
		ORDER BY s.created_at DESC, s.sale_id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []RecentSale
	for rows.Next() {
		var s RecentSale
		if err := rows.Scan(&s.SaleID, &s.InvoiceNumber, &s.TotalAmount, &s.CashierName, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Revenue returns per-day revenue for a date range.
func (r *Repository) Revenue(ctx context.Context, rng DateRange) ([]RevenueRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DATE_TRUNC('day', created_at) AS day,
		       COUNT(*),
		       COALESCE(SUM(subtotal), 0),
		       COALESCE(SUM(discount_amount), 0),
		       COALESCE(SUM(total_amount), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day`, rng.From, rng.To.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []RevenueRow
	for rows.Next() {
		var row RevenueRow
		if err := rows.Scan(&row.Date, &row.Transactions, &row.Gross, &row.Discount, &row.Net); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

// TopProducts returns the best selling products for a date range.
func (r *Repository) TopProducts(ctx context.Context, rng DateRange, limit int) ([]ProductRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.product_id, p.product_name, COALESCE(p.barcode, ''),
		       COALESCE(SUM(si.quantity), 0), COALESCE(SUM(si.total_price), 0)
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.sale_id
		JOIN products p ON si.product_id = p.product_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY p.product_id, p.product_name, p.barcode
		ORDER BY 4 DESC
		LIMIT $3`, rng.From, rng.To.AddDate(0, 0, 1), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []ProductRow
	for rows.Next() {
		var row ProductRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.Barcode, &row.QuantitySold, &row.Revenue); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

// Purchases returns per-supplier purchase totals for a date range.
func (r *Repository) Purchases(ctx context.Context, rng DateRange) ([]PurchaseRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sup.supplier_id, sup.supplier_name, COUNT(po.purchase_order_id),
		       COALESCE(SUM(po.total_amount), 0)
		FROM purchase_orders po
		JOIN suppliers sup ON po.supplier_id = sup.supplier_id
		WHERE po.created_at >= $1 AND po.created_at < $2 AND po.status <> 'cancelled'
		GROUP BY sup.supplier_id, sup.supplier_name
		ORDER BY 4 DESC`, rng.From, rng.To.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []PurchaseRow
	for rows.Next() {
		var row PurchaseRow
		if err := rows.Scan(&row.SupplierID, &row.SupplierName, &row.OrderCount, &row.TotalAmount); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
