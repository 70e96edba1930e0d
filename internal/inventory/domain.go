package inventory

import "time"

// TransactionType enumerates stock-changing event kinds.
type TransactionType string

const (
	// TransactionIn represents an inbound movement (purchase receipt).
	TransactionIn TransactionType = "in"
	// TransactionOut represents an outbound movement (sale).
	TransactionOut TransactionType = "out"
	// TransactionAdjustment indicates a manual or compensating change.
	TransactionAdjustment TransactionType = "adjustment"
)

// ReferenceType names the workflow that originated a ledger entry.
type ReferenceType string

const (
	ReferenceSale     ReferenceType = "sale"
	ReferencePurchase ReferenceType = "purchase"
	ReferenceManual   ReferenceType = "manual"
)

// LogEntry is one immutable row of the inventory ledger. Entries are only
// ever appended inside the same transaction as the stock write they record.
type LogEntry struct {
	ID             int64           `json:"log_id"`
	ProductID      int64           `json:"product_id"`
	UserID         int64           `json:"user_id"`
	Type           TransactionType `json:"transaction_type"`
	QuantityChange int             `json:"quantity_change"`
	PreviousStock  int             `json:"previous_stock"`
	NewStock       int             `json:"new_stock"`
	ReferenceID    int64           `json:"reference_id,omitempty"`
	ReferenceType  ReferenceType   `json:"reference_type"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`

	// Joined for listings.
	ProductName string `json:"product_name,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	UserName    string `json:"user_name,omitempty"`
}

// ProductState is the row-locked snapshot a workflow reads before mutating stock.
type ProductState struct {
	ID            int64
	Name          string
	Barcode       string
	SalePrice     float64
	PurchasePrice float64
	Unit          string
	Stock         int
	MinStock      int
	Active        bool
}

// AdjustmentInput describes a manual stock correction.
type AdjustmentInput struct {
	ProductID      int64
	QuantityChange int
	Notes          string
	ActorID        int64
}

// Adjustment reports the before/after stock of a committed adjustment.
type Adjustment struct {
	ProductName    string `json:"product_name"`
	PreviousStock  int    `json:"previous_stock"`
	NewStock       int    `json:"new_stock"`
	QuantityChange int    `json:"quantity_change"`
}

// LogFilter narrows ledger listings.
type LogFilter struct {
	ProductID int64
	Page      int
	Limit     int
}

// StatsFilter bounds aggregate queries by date.
type StatsFilter struct {
	From time.Time
	To   time.Time
}

// Overall aggregates ledger movement totals by type.
type Overall struct {
	TotalProducts    int `json:"total_products"`
	TotalIn          int `json:"total_in"`
	TotalOut         int `json:"total_out"`
	TotalAdjustments int `json:"total_adjustments"`
}

// ProductMovement summarises per-product ledger activity.
type ProductMovement struct {
	ProductName   string `json:"product_name"`
	Barcode       string `json:"barcode,omitempty"`
	TotalMovement int    `json:"total_movement"`
	TotalIn       int    `json:"total_in"`
	TotalOut      int    `json:"total_out"`
}

// LowStockProduct flags products at or below their minimum stock.
type LowStockProduct struct {
	ProductName     string `json:"product_name"`
	Barcode         string `json:"barcode,omitempty"`
	CurrentStock    int    `json:"current_stock"`
	MinStock        int    `json:"min_stock"`
	StockDifference int    `json:"stock_difference"`
}

// Stats is the inventory statistics payload.
type Stats struct {
	Overall          Overall           `json:"overall"`
	TopProducts      []ProductMovement `json:"top_products"`
	LowStockProducts []LowStockProduct `json:"low_stock_products"`
}

// ReportRow is one product line of the in-out-stock report.
type ReportRow struct {
	ProductID         int64  `json:"product_id"`
	ProductName       string `json:"product_name"`
	Barcode           string `json:"barcode,omitempty"`
	CurrentStock      int    `json:"current_stock"`
	TotalTransactions int    `json:"total_transactions"`
	TotalIn           int    `json:"total_in"`
	TotalOut          int    `json:"total_out"`
}
