package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

type memoryRepo struct {
	byID     map[int64]Category
	products map[int64]int
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[int64]Category), products: make(map[int64]int)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Category, error) { return nil, nil }

func (r *memoryRepo) Get(ctx context.Context, id int64) (Category, error) {
	c, ok := r.byID[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) Create(ctx context.Context, c Category) (Category, error) {
	for _, existing := range r.byID {
		if existing.Name == c.Name {
			return Category{}, shared.ErrConflict
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.byID[c.ID] = c
	return c, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, c Category) error {
	if _, ok := r.byID[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	r.byID[id] = c
	return nil
}

func (r *memoryRepo) ActiveProductCount(ctx context.Context, id int64) (int, error) {
	return r.products[id], nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Category{Name: "Drinks"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Category{Name: "Drinks"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestDeleteBlockedByActiveProducts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Category{Name: "Snacks"})
	require.NoError(t, err)
	repo.products[created.ID] = 4

	err = svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrHasDependents)
	require.Contains(t, repo.byID, created.ID)

	repo.products[created.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.NotContains(t, repo.byID, created.ID)
}
