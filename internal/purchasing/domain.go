package purchasing

import "time"

// Status enumerates the purchase order lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder is a restock order. Stock is applied when the order is
// created; status transitions never touch stock again.
type PurchaseOrder struct {
	ID           int64          `json:"purchase_order_id"`
	OrderNumber  string         `json:"order_number"`
	SupplierID   int64          `json:"supplier_id"`
	SupplierName string         `json:"supplier_name,omitempty"`
	UserID       int64          `json:"user_id"`
	UserName     string         `json:"user_name,omitempty"`
	TotalAmount  float64        `json:"total_amount"`
	Status       Status         `json:"status"`
	Notes        string         `json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Items        []PurchaseItem `json:"items,omitempty"`
}

// PurchaseItem is one line of a purchase order.
type PurchaseItem struct {
	ID          int64   `json:"item_id"`
	OrderID     int64   `json:"purchase_order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// CreateItem is one requested line of a new order.
type CreateItem struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	SupplierID int64
	Notes      string
	Items      []CreateItem
	ActorID    int64
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status     Status
	SupplierID int64
	Page       int
	Limit      int
}
