package products

import (
	"context"
	"fmt"
	"strconv"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	Create(ctx context.Context, p Product, searchName string) (Product, error)
	Update(ctx context.Context, id int64, u Update, searchName *string) error
	SoftDelete(ctx context.Context, id int64) error
}

// ActivityPort records user-visible actions.
type ActivityPort interface {
	Record(ctx context.Context, log shared.ActivityLog) error
}

// Service manages the product catalog.
type Service struct {
	repo     RepositoryPort
	activity ActivityPort
}

// NewService builds Service. activity may be nil.
func NewService(repo RepositoryPort, activity ActivityPort) *Service {
	return &Service{repo: repo, activity: activity}
}

// Create validates and inserts a product.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID int64) (Product, error) {
	if input.Name == "" {
		return Product{}, fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if input.SalePrice < 0 || input.PurchasePrice < 0 {
		return Product{}, fmt.Errorf("%w: prices cannot be negative", shared.ErrValidation)
	}
	if input.InitialStock < 0 || input.MinStock < 0 {
		return Product{}, fmt.Errorf("%w: stock values cannot be negative", shared.ErrValidation)
	}
	unit := input.Unit
	if unit == "" {
		unit = "pcs"
	}

	created, err := s.repo.Create(ctx, Product{
		Name:          input.Name,
		Barcode:       input.Barcode,
		CategoryID:    input.CategoryID,
		PurchasePrice: input.PurchasePrice,
		SalePrice:     input.SalePrice,
		Unit:          unit,
		CurrentStock:  input.InitialStock,
		MinStock:      input.MinStock,
		ImageURL:      input.ImageURL,
	}, Fold(input.Name))
	if err != nil {
		return Product{}, err
	}

	s.record(ctx, actorID, shared.ActivityProductCreate, "Created product "+created.Name, created.ID)
	return created, nil
}

// Update applies a typed partial update.
func (s *Service) Update(ctx context.Context, id int64, u Update, actorID int64) (Product, error) {
	if u.Empty() {
		return Product{}, fmt.Errorf("%w: no fields to update", shared.ErrValidation)
	}
	if u.Name != nil && *u.Name == "" {
		return Product{}, fmt.Errorf("%w: product name cannot be empty", shared.ErrValidation)
	}
	if u.SalePrice != nil && *u.SalePrice < 0 {
		return Product{}, fmt.Errorf("%w: sale price cannot be negative", shared.ErrValidation)
	}
	if u.PurchasePrice != nil && *u.PurchasePrice < 0 {
		return Product{}, fmt.Errorf("%w: purchase price cannot be negative", shared.ErrValidation)
	}
	if u.MinStock != nil && *u.MinStock < 0 {
		return Product{}, fmt.Errorf("%w: min stock cannot be negative", shared.ErrValidation)
	}

	var searchName *string
	if u.Name != nil {
		folded := Fold(*u.Name)
		searchName = &folded
	}
	if err := s.repo.Update(ctx, id, u, searchName); err != nil {
		return Product{}, err
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, actorID, shared.ActivityProductUpdate, "Updated product "+updated.Name, id)
	return updated, nil
}

// Delete deactivates a product. History referencing it stays intact.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, shared.ActivityProductDelete, "Deactivated product", id)
	return nil
}

// Get returns one active product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// GetByBarcode returns one active product by barcode.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	if barcode == "" {
		return Product{}, fmt.Errorf("%w: barcode is required", shared.ErrValidation)
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// List returns paged products.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) record(ctx context.Context, actorID int64, activityType, description string, productID int64) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, shared.ActivityLog{
		UserID:      actorID,
		Type:        activityType,
		Description: description,
		Entity:      "product",
		EntityID:    strconv.FormatInt(productID, 10),
	})
}
