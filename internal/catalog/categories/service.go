package categories

import (
	"context"
	"fmt"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, id int64, c Category) error
	ActiveProductCount(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

// Service manages categories.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get fetches one category.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a category.
func (s *Service) Create(ctx context.Context, c Category) (Category, error) {
	if c.Name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, c)
}

// Update validates and rewrites a category.
func (s *Service) Update(ctx context.Context, id int64, c Category) error {
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, c)
}

// Delete removes a category. It is blocked while active products still
// reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.ActiveProductCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d active products still use this category", shared.ErrHasDependents, count)
	}
	return s.repo.Delete(ctx, id)
}
