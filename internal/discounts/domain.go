package discounts

import "time"

// Type enumerates how a discount reduces the payable amount.
type Type string

const (
	// TypePercentage reduces by value percent of the base amount.
	TypePercentage Type = "percentage"
	// TypeAmount reduces by a fixed value, capped at the base amount.
	TypeAmount Type = "amount"
)

// Discount models a promotional reduction with a validity window.
type Discount struct {
	ID        int64     `json:"discount_id"`
	Name      string    `json:"discount_name"`
	Type      Type      `json:"discount_type"`
	Value     float64   `json:"discount_value"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Usable reports whether the discount may be applied at the given time:
// it must be active and the time must fall inside [StartDate, EndDate].
func (d Discount) Usable(at time.Time) bool {
	if !d.IsActive {
		return false
	}
	day := at.Truncate(24 * time.Hour)
	return !day.Before(d.StartDate.Truncate(24*time.Hour)) && !day.After(d.EndDate.Truncate(24*time.Hour))
}

// Calculate returns the monetary reduction of d applied to base. An amount
// discount never exceeds the payable base.
func Calculate(d Discount, base float64) float64 {
	switch d.Type {
	case TypePercentage:
		return base * d.Value / 100
	case TypeAmount:
		if d.Value > base {
			return base
		}
		return d.Value
	default:
		return 0
	}
}
