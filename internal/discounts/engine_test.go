package discounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalculatePercentage(t *testing.T) {
	d := Discount{Type: TypePercentage, Value: 10}
	require.InDelta(t, 10000.0, Calculate(d, 100000), 0.001)
	require.InDelta(t, 0.0, Calculate(d, 0), 0.001)
}

func TestCalculateAmountCappedAtBase(t *testing.T) {
	d := Discount{Type: TypeAmount, Value: 50000}
	require.InDelta(t, 30000.0, Calculate(d, 30000), 0.001)
	require.InDelta(t, 50000.0, Calculate(d, 120000), 0.001)
}

func TestUsableWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)
	d := Discount{
		IsActive:  true,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	require.True(t, d.Usable(now))

	// Boundary days are inclusive.
	require.True(t, d.Usable(d.StartDate))
	require.True(t, d.Usable(d.EndDate.Add(23*time.Hour)))

	expired := d
	expired.EndDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.False(t, expired.Usable(now))

	upcoming := d
	upcoming.StartDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.False(t, upcoming.Usable(now))

	inactive := d
	inactive.IsActive = false
	require.False(t, inactive.Usable(now))
}
