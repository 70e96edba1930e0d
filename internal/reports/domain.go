package reports

import "time"

// Dashboard is the landing page summary.
type Dashboard struct {
	TodayRevenue      float64      `json:"today_revenue"`
	TodayTransactions int          `json:"today_transactions"`
	MonthRevenue      float64      `json:"month_revenue"`
	ActiveProducts    int          `json:"active_products"`
	LowStockCount     int          `json:"low_stock_count"`
	PendingPurchases  int          `json:"pending_purchases"`
	RecentSales       []RecentSale `json:"recent_sales"`
}

// RecentSale is one row of the dashboard's latest sales list.
type RecentSale struct {
	SaleID        int64     `json:"sale_id"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalAmount   float64   `json:"total_amount"`
	CashierName   string    `json:"cashier_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// RevenueRow is one day of the revenue report.
type RevenueRow struct {
	Date         time.Time `json:"date"`
	Transactions int       `json:"transactions"`
	Gross        float64   `json:"gross"`
	Discount     float64   `json:"discount"`
	Net          float64   `json:"net"`
}

// ProductRow is one product of the top sellers report.
type ProductRow struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Barcode      string  `json:"barcode,omitempty"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// PurchaseRow is one supplier of the purchases report.
type PurchaseRow struct {
	SupplierID   int64   `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	OrderCount   int     `json:"order_count"`
	TotalAmount  float64 `json:"total_amount"`
}

// DateRange bounds a report query. To is inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}
