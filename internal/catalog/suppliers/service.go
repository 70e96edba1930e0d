package suppliers

import (
	"context"
	"fmt"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, s Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, s Supplier) error
	OrderCount(ctx context.Context, id int64) (int, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Service manages suppliers.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns active suppliers.
func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

// Get fetches one supplier.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a supplier.
func (s *Service) Create(ctx context.Context, sup Supplier) (Supplier, error) {
	if sup.Name == "" {
		return Supplier{}, fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, sup)
}

// Update validates and rewrites a supplier.
func (s *Service) Update(ctx context.Context, id int64, sup Supplier) error {
	if sup.Name == "" {
		return fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, sup)
}

// Delete deactivates a supplier. It is blocked while purchase orders still
// reference it so order history keeps a live supplier record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.OrderCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d purchase orders reference this supplier", shared.ErrHasDependents, count)
	}
	return s.repo.SoftDelete(ctx, id)
}
