package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

type memoryRepo struct {
	byID map[int64]Discount
}

func (r *memoryRepo) List(ctx context.Context, page, limit int) ([]Discount, int, error) {
	return nil, 0, nil
}

func (r *memoryRepo) ListActive(ctx context.Context, at time.Time) ([]Discount, error) {
	return nil, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Discount, error) {
	d, ok := r.byID[id]
	if !ok {
		return Discount{}, shared.ErrNotFound
	}
	return d, nil
}

func (r *memoryRepo) Create(ctx context.Context, d Discount) (Discount, error) {
	d.ID = int64(len(r.byID) + 1)
	r.byID[d.ID] = d
	return d, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, d Discount) error {
	if _, ok := r.byID[id]; !ok {
		return shared.ErrNotFound
	}
	d.ID = id
	r.byID[id] = d
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func fixedService(repo *memoryRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestResolveDistinguishesMissingFromUnusable(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := &memoryRepo{byID: map[int64]Discount{
		1: {
			ID: 1, Name: "June promo", Type: TypePercentage, Value: 10, IsActive: true,
			StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		2: {
			ID: 2, Name: "May promo", Type: TypeAmount, Value: 5000, IsActive: true,
			StartDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := fixedService(repo, now)

	d, err := svc.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "June promo", d.Name)

	_, err = svc.Resolve(context.Background(), 2)
	require.ErrorIs(t, err, shared.ErrDiscountUnavailable)

	_, err = svc.Resolve(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCalculateAmountIsExact(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := &memoryRepo{byID: map[int64]Discount{
		1: {
			ID: 1, Name: "Odd percent", Type: TypePercentage, Value: 12.5, IsActive: true,
			StartDate: now.AddDate(0, 0, -1),
			EndDate:   now.AddDate(0, 0, 1),
		},
	}}
	svc := fixedService(repo, now)

	// 12.5% of 333 is 41.625 and stays 41.625.
	amount, d, err := svc.CalculateAmount(context.Background(), 1, 333)
	require.NoError(t, err)
	require.Equal(t, int64(1), d.ID)
	require.InDelta(t, 41.625, amount, 0.0001)
}

func TestCreateValidation(t *testing.T) {
	repo := &memoryRepo{byID: map[int64]Discount{}}
	svc := NewService(repo)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		d    Discount
	}{
		{"missing name", Discount{Type: TypePercentage, Value: 10, StartDate: start, EndDate: start.AddDate(0, 1, 0)}},
		{"bad type", Discount{Name: "x", Type: Type("coupon"), Value: 10, StartDate: start, EndDate: start.AddDate(0, 1, 0)}},
		{"zero value", Discount{Name: "x", Type: TypeAmount, Value: 0, StartDate: start, EndDate: start.AddDate(0, 1, 0)}},
		{"over 100 percent", Discount{Name: "x", Type: TypePercentage, Value: 150, StartDate: start, EndDate: start.AddDate(0, 1, 0)}},
		{"end before start", Discount{Name: "x", Type: TypeAmount, Value: 10, StartDate: start, EndDate: start.AddDate(0, 0, -1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.d)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	created, err := svc.Create(context.Background(), Discount{
		Name: "Valid", Type: TypeAmount, Value: 2000, IsActive: true,
		StartDate: start, EndDate: start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}
