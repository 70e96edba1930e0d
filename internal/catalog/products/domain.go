package products

import "time"

// Product is a sellable catalog item. Stock values are owned by the
// inventory workflows; catalog updates never change them.
type Product struct {
	ID            int64     `json:"product_id"`
	Name          string    `json:"product_name"`
	Barcode       string    `json:"barcode,omitempty"`
	CategoryID    int64     `json:"category_id,omitempty"`
	CategoryName  string    `json:"category_name,omitempty"`
	PurchasePrice float64   `json:"purchase_price"`
	SalePrice     float64   `json:"sale_price"`
	Unit          string    `json:"unit"`
	CurrentStock  int       `json:"current_stock"`
	MinStock      int       `json:"min_stock"`
	ImageURL      string    `json:"image_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput describes a new product. InitialStock seeds current_stock for
// catalog imports; subsequent stock changes go through inventory workflows.
type CreateInput struct {
	Name          string
	Barcode       string
	CategoryID    int64
	PurchasePrice float64
	SalePrice     float64
	Unit          string
	InitialStock  int
	MinStock      int
	ImageURL      string
}

// Update is a typed partial update. Nil fields are left untouched. Stock is
// deliberately absent; it cannot be set through catalog edits.
type Update struct {
	Name          *string
	Barcode       *string
	CategoryID    *int64
	PurchasePrice *float64
	SalePrice     *float64
	Unit          *string
	MinStock      *int
	ImageURL      *string
	IsActive      *bool
}

// Empty reports whether the update carries no changes.
func (u Update) Empty() bool {
	return u.Name == nil && u.Barcode == nil && u.CategoryID == nil &&
		u.PurchasePrice == nil && u.SalePrice == nil && u.Unit == nil &&
		u.MinStock == nil && u.ImageURL == nil && u.IsActive == nil
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search     string
	CategoryID int64
	LowStock   bool
	Page       int
	Limit      int
}
