package suppliers

import "time"

// Supplier is a restock source referenced by purchase orders.
type Supplier struct {
	ID            int64     `json:"supplier_id"`
	Name          string    `json:"supplier_name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
