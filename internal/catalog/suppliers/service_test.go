package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

type memoryRepo struct {
	byID   map[int64]Supplier
	orders map[int64]int
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[int64]Supplier), orders: make(map[int64]int)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Supplier, error) { return nil, nil }

func (r *memoryRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	s, ok := r.byID[id]
	if !ok || !s.IsActive {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) Create(ctx context.Context, s Supplier) (Supplier, error) {
	for _, existing := range r.byID {
		if existing.Name == s.Name {
			return Supplier{}, shared.ErrConflict
		}
	}
	r.nextID++
	s.ID = r.nextID
	s.IsActive = true
	r.byID[s.ID] = s
	return s, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, s Supplier) error {
	existing, ok := r.byID[id]
	if !ok || !existing.IsActive {
		return shared.ErrNotFound
	}
	s.ID = id
	s.IsActive = true
	r.byID[id] = s
	return nil
}

func (r *memoryRepo) OrderCount(ctx context.Context, id int64) (int, error) {
	return r.orders[id], nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64) error {
	s, ok := r.byID[id]
	if !ok || !s.IsActive {
		return shared.ErrNotFound
	}
	s.IsActive = false
	r.byID[id] = s
	return nil
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Supplier{Name: "Acme Wholesale"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Supplier{Name: "Acme Wholesale"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteBlockedByPurchaseOrders(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Supplier{Name: "Acme Wholesale"})
	require.NoError(t, err)
	repo.orders[created.ID] = 2

	err = svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrHasDependents)
	require.True(t, repo.byID[created.ID].IsActive)

	repo.orders[created.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	// Soft delete keeps the row for order history.
	stored, ok := repo.byID[created.ID]
	require.True(t, ok)
	require.False(t, stored.IsActive)
}
