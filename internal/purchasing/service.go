package purchasing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/minimart-pos/minimart-pos/internal/inventory"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, int, error)
}

// ActivityPort records user-visible actions.
type ActivityPort interface {
	Record(ctx context.Context, log shared.ActivityLog) error
}

// Service runs the purchase workflows.
type Service struct {
	repo     RepositoryPort
	activity ActivityPort
	now      func() time.Time
}

// NewService builds Service. activity may be nil.
func NewService(repo RepositoryPort, activity ActivityPort) *Service {
	return &Service{repo: repo, activity: activity, now: time.Now}
}

// Create places a purchase order. Stock is incremented and the ledger is
// appended in the same transaction as the order insert; completing the order
// later does not touch stock again.
func (s *Service) Create(ctx context.Context, input CreateInput) (PurchaseOrder, error) {
	if err := validateCreate(input); err != nil {
		return PurchaseOrder{}, err
	}

	items := make([]CreateItem, len(input.Items))
	copy(items, input.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	var created PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		active, err := tx.SupplierActive(ctx, input.SupplierID)
		if err != nil {
			return err
		}
		if !active {
			return fmt.Errorf("%w: supplier %d is inactive", shared.ErrValidation, input.SupplierID)
		}

		var total float64
		for _, item := range items {
			total += item.UnitPrice * float64(item.Quantity)
		}

		seq, err := tx.NextOrderSeq(ctx)
		if err != nil {
			return err
		}
		orderNumber := fmt.Sprintf("PO-%d-%06d", s.now().Year(), seq%1000000)

		orderID, err := tx.InsertOrder(ctx, PurchaseOrder{
			OrderNumber: orderNumber,
			SupplierID:  input.SupplierID,
			UserID:      input.ActorID,
			TotalAmount: total,
			Status:      StatusPending,
			Notes:       input.Notes,
		})
		if err != nil {
			return err
		}

		created = PurchaseOrder{
			ID:          orderID,
			OrderNumber: orderNumber,
			SupplierID:  input.SupplierID,
			UserID:      input.ActorID,
			TotalAmount: total,
			Status:      StatusPending,
			Notes:       input.Notes,
		}
		for _, item := range items {
			product, err := tx.ProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			line := PurchaseItem{
				OrderID:    orderID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				TotalPrice: item.UnitPrice * float64(item.Quantity),
			}
			if err := tx.InsertItem(ctx, line); err != nil {
				return err
			}
			newStock := product.Stock + item.Quantity
			if err := tx.SetStock(ctx, product.ID, newStock); err != nil {
				return err
			}
			if err := tx.AppendLog(ctx, inventory.LogEntry{
				ProductID:      product.ID,
				UserID:         input.ActorID,
				Type:           inventory.TransactionIn,
				QuantityChange: item.Quantity,
				PreviousStock:  product.Stock,
				NewStock:       newStock,
				ReferenceID:    orderID,
				ReferenceType:  inventory.ReferencePurchase,
				Notes:          "Purchase " + orderNumber,
			}); err != nil {
				return err
			}
			created.Items = append(created.Items, line)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, shared.ActivityLog{
			UserID:      input.ActorID,
			Type:        shared.ActivityPurchaseCreate,
			Description: fmt.Sprintf("Purchase order %s for %.2f", created.OrderNumber, created.TotalAmount),
			Entity:      "purchase_order",
			EntityID:    strconv.FormatInt(created.ID, 10),
		})
	}
	return created, nil
}

// UpdateStatus moves a pending order to completed or cancelled. The change is
// a plain status flip; stock was applied at creation and stays as is.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status Status) error {
	if status != StatusCompleted && status != StatusCancelled {
		return fmt.Errorf("%w: status must be completed or cancelled", shared.ErrValidation)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusPending {
			return fmt.Errorf("%w: order %s is already %s", shared.ErrInvalidState, order.OrderNumber, order.Status)
		}
		return tx.SetStatus(ctx, orderID, status)
	})
}

// Delete removes a pending order and reverses its stock effect. Each item
// gets a compensating adjustment ledger entry referencing the order. An order
// past pending cannot be deleted.
func (s *Service) Delete(ctx context.Context, orderID int64, actorID int64) error {
	var orderNumber string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != StatusPending {
			return fmt.Errorf("%w: only pending orders can be deleted, order %s is %s",
				shared.ErrInvalidState, order.OrderNumber, order.Status)
		}
		orderNumber = order.OrderNumber

		items, err := tx.OrderItems(ctx, orderID)
		if err != nil {
			return err
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		for _, item := range items {
			product, err := tx.ProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			newStock := product.Stock - item.Quantity
			if newStock < 0 {
				// The received stock was already sold; reversing would drive
				// the count negative.
				return &shared.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}
			if err := tx.SetStock(ctx, product.ID, newStock); err != nil {
				return err
			}
			if err := tx.AppendLog(ctx, inventory.LogEntry{
				ProductID:      product.ID,
				UserID:         actorID,
				Type:           inventory.TransactionAdjustment,
				QuantityChange: -item.Quantity,
				PreviousStock:  product.Stock,
				NewStock:       newStock,
				ReferenceID:    orderID,
				ReferenceType:  inventory.ReferencePurchase,
				Notes:          "Reversal of deleted purchase " + order.OrderNumber,
			}); err != nil {
				return err
			}
		}
		return tx.DeleteOrder(ctx, orderID)
	})
	if err != nil {
		return err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, shared.ActivityLog{
			UserID:      actorID,
			Type:        shared.ActivityPurchaseDelete,
			Description: "Deleted purchase order " + orderNumber,
			Entity:      "purchase_order",
			EntityID:    strconv.FormatInt(orderID, 10),
		})
	}
	return nil
}

// Get returns one order with items.
func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns paged orders.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, int, error) {
	return s.repo.List(ctx, filter)
}

func validateCreate(input CreateInput) error {
	if input.SupplierID <= 0 {
		return fmt.Errorf("%w: supplier id required", shared.ErrValidation)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: an order needs at least one item", shared.ErrValidation)
	}
	seen := make(map[int64]bool, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: item product id required", shared.ErrValidation)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", shared.ErrValidation)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: item unit price cannot be negative", shared.ErrValidation)
		}
		if seen[item.ProductID] {
			return fmt.Errorf("%w: duplicate product %d in order", shared.ErrValidation, item.ProductID)
		}
		seen[item.ProductID] = true
	}
	return nil
}
