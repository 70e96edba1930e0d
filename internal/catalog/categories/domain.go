package categories

import "time"

// Category groups products for browsing and reporting.
type Category struct {
	ID           int64     `json:"category_id"`
	Name         string    `json:"category_name"`
	Description  string    `json:"description,omitempty"`
	ProductCount int       `json:"product_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
