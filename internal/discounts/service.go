package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context, page, limit int) ([]Discount, int, error)
	ListActive(ctx context.Context, at time.Time) ([]Discount, error)
	Get(ctx context.Context, id int64) (Discount, error)
	Create(ctx context.Context, d Discount) (Discount, error)
	Update(ctx context.Context, id int64, d Discount) error
	Delete(ctx context.Context, id int64) error
}

// Service manages discounts and resolves their applicability.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Resolve returns the discount when it is usable right now. A discount that
// exists but is inactive, expired or not yet started is rejected, never
// silently ignored.
func (s *Service) Resolve(ctx context.Context, id int64) (Discount, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return Discount{}, err
	}
	if !d.Usable(s.now()) {
		return Discount{}, fmt.Errorf("%w: %s", shared.ErrDiscountUnavailable, d.Name)
	}
	return d, nil
}

// CalculateAmount resolves the discount and computes the exact reduction for
// a base amount. Nothing is rounded here; the stored sale keeps the same
// figure the checkout computed.
func (s *Service) CalculateAmount(ctx context.Context, id int64, base float64) (float64, Discount, error) {
	d, err := s.Resolve(ctx, id)
	if err != nil {
		return 0, Discount{}, err
	}
	return Calculate(d, base), d, nil
}

// List returns paged discounts.
func (s *Service) List(ctx context.Context, page, limit int) ([]Discount, int, error) {
	return s.repo.List(ctx, page, limit)
}

// ListActive returns discounts usable today.
func (s *Service) ListActive(ctx context.Context) ([]Discount, error) {
	return s.repo.ListActive(ctx, s.now())
}

// Get fetches one discount.
func (s *Service) Get(ctx context.Context, id int64) (Discount, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a discount.
func (s *Service) Create(ctx context.Context, d Discount) (Discount, error) {
	if err := validateDiscount(d); err != nil {
		return Discount{}, err
	}
	return s.repo.Create(ctx, d)
}

// Update validates and rewrites a discount.
func (s *Service) Update(ctx context.Context, id int64, d Discount) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := validateDiscount(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, d)
}

// Delete removes a discount.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateDiscount(d Discount) error {
	if d.Name == "" {
		return fmt.Errorf("%w: discount name is required", shared.ErrValidation)
	}
	if d.Type != TypePercentage && d.Type != TypeAmount {
		return fmt.Errorf("%w: discount type must be percentage or amount", shared.ErrValidation)
	}
	if d.Value <= 0 {
		return fmt.Errorf("%w: discount value must be positive", shared.ErrValidation)
	}
	if d.Type == TypePercentage && d.Value > 100 {
		return fmt.Errorf("%w: percentage discount cannot exceed 100", shared.ErrValidation)
	}
	if !d.EndDate.After(d.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", shared.ErrValidation)
	}
	return nil
}
