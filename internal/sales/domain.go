package sales

import "time"

// Payment methods accepted at the register.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// Sale is a committed checkout with its immutable price snapshot.
type Sale struct {
	ID             int64      `json:"sale_id"`
	InvoiceNumber  string     `json:"invoice_number"`
	UserID         int64      `json:"user_id"`
	CustomerName   string     `json:"customer_name,omitempty"`
	CustomerPhone  string     `json:"customer_phone,omitempty"`
	CustomerEmail  string     `json:"customer_email,omitempty"`
	Subtotal       float64    `json:"subtotal"`
	DiscountAmount float64    `json:"discount_amount"`
	TotalAmount    float64    `json:"total_amount"`
	CashReceived   float64    `json:"cash_received"`
	ChangeAmount   float64    `json:"change_amount"`
	PaymentMethod  string     `json:"payment_method"`
	CreatedAt      time.Time  `json:"created_at"`
	CashierName    string     `json:"cashier_name,omitempty"`
	Items          []SaleItem `json:"items,omitempty"`
}

// SaleItem is one line of a sale. Unit price is copied from the product at
// checkout time so later catalog edits never change past sales.
type SaleItem struct {
	ID          int64   `json:"sale_item_id"`
	SaleID      int64   `json:"sale_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Barcode     string  `json:"barcode,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// CheckoutItem is one requested line of a checkout.
type CheckoutItem struct {
	ProductID int64
	Quantity  int
}

// CheckoutInput carries everything the checkout workflow needs.
type CheckoutInput struct {
	Items         []CheckoutItem
	DiscountID    int64
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	CashReceived  float64
	PaymentMethod string
	ActorID       int64
	ActorName     string
}

// Receipt is the checkout result handed back to the register.
type Receipt struct {
	SaleID         int64   `json:"sale_id"`
	InvoiceNumber  string  `json:"invoice_number"`
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TotalAmount    float64 `json:"total_amount"`
	CashReceived   float64 `json:"cash_received"`
	ChangeAmount   float64 `json:"change_amount"`
	EmailSent      bool    `json:"email_sent"`
}

// ListFilter narrows sale listings.
type ListFilter struct {
	From  time.Time
	To    time.Time
	Page  int
	Limit int
}

// Stats aggregates sales over a date window.
type Stats struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalDiscount     float64 `json:"total_discount"`
	TotalItems        int     `json:"total_items"`
	AverageSale       float64 `json:"average_sale"`
}
