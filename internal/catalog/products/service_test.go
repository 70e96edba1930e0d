package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

type memoryRepo struct {
	byID    map[int64]Product
	folded  map[int64]string
	nextID  int64
	deleted []int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[int64]Product), folded: make(map[int64]string)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.byID[id]
	if !ok || !p.IsActive {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	for _, p := range r.byID {
		if p.Barcode == barcode && p.IsActive {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	return nil, 0, nil
}

func (r *memoryRepo) Create(ctx context.Context, p Product, searchName string) (Product, error) {
	for _, existing := range r.byID {
		if p.Barcode != "" && existing.Barcode == p.Barcode {
			return Product{}, shared.ErrConflict
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.IsActive = true
	r.byID[p.ID] = p
	r.folded[p.ID] = searchName
	return p, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, u Update, searchName *string) error {
	p, ok := r.byID[id]
	if !ok || !p.IsActive {
		return shared.ErrNotFound
	}
	if u.Barcode != nil {
		for otherID, other := range r.byID {
			if otherID != id && *u.Barcode != "" && other.Barcode == *u.Barcode {
				return shared.ErrConflict
			}
		}
		p.Barcode = *u.Barcode
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.SalePrice != nil {
		p.SalePrice = *u.SalePrice
	}
	if u.MinStock != nil {
		p.MinStock = *u.MinStock
	}
	if searchName != nil {
		r.folded[id] = *searchName
	}
	r.byID[id] = p
	return nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64) error {
	p, ok := r.byID[id]
	if !ok || !p.IsActive {
		return shared.ErrNotFound
	}
	p.IsActive = false
	r.byID[id] = p
	r.deleted = append(r.deleted, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateFoldsSearchName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Cà Phê Sữa Đá", SalePrice: 25000}, 1)
	require.NoError(t, err)
	require.Equal(t, "pcs", created.Unit)
	require.Equal(t, "ca phe sua đa", repo.folded[created.ID])
}

func TestFold(t *testing.T) {
	require.Equal(t, "cafe au lait", Fold("Café au Lait"))
	require.Equal(t, "muesli", Fold("  Müsli "))
	require.Equal(t, "plain", Fold("plain"))
}

func TestCreateDuplicateBarcode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "First", Barcode: "123"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Second", Barcode: "123"}, 1)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateBarcodeExcludesSelf(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	first, err := svc.Create(context.Background(), CreateInput{Name: "First", Barcode: "123"}, 1)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), CreateInput{Name: "Second", Barcode: "456"}, 1)
	require.NoError(t, err)

	// Re-setting a product's own barcode is fine.
	_, err = svc.Update(context.Background(), first.ID, Update{Barcode: ptr("123")}, 1)
	require.NoError(t, err)

	// Taking another product's barcode is a conflict.
	_, err = svc.Update(context.Background(), second.ID, Update{Barcode: ptr("123")}, 1)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateRejectsEmpty(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Update(context.Background(), 1, Update{}, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteIsSoft(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Gone soon"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID, 1))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// The row still exists, only deactivated.
	stored, ok := repo.byID[created.ID]
	require.True(t, ok)
	require.False(t, stored.IsActive)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID, 1), shared.ErrNotFound)
}
