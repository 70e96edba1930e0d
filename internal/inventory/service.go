package inventory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListLogs(ctx context.Context, filter LogFilter) ([]LogEntry, int, error)
	Stats(ctx context.Context, filter StatsFilter) (Stats, error)
	Report(ctx context.Context, from, to time.Time) ([]ReportRow, error)
}

// ActivityPort records user-visible actions.
type ActivityPort interface {
	Record(ctx context.Context, log shared.ActivityLog) error
}

// Service coordinates ledger operations.
type Service struct {
	repo     RepositoryPort
	activity ActivityPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, activity ActivityPort) *Service {
	return &Service{repo: repo, activity: activity}
}

// Adjust applies a manual stock correction. The stock write and its ledger
// entry commit in one transaction; a result below zero rejects the whole
// operation and leaves stock untouched.
func (s *Service) Adjust(ctx context.Context, input AdjustmentInput) (Adjustment, error) {
	if input.ProductID <= 0 {
		return Adjustment{}, fmt.Errorf("%w: product id required", shared.ErrValidation)
	}
	if input.QuantityChange == 0 {
		return Adjustment{}, fmt.Errorf("%w: quantity change must be non-zero", shared.ErrValidation)
	}
	notes := input.Notes
	if notes == "" {
		notes = "Manual stock adjustment"
	}

	var result Adjustment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.ProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		newStock := product.Stock + input.QuantityChange
		if newStock < 0 {
			return &shared.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   -input.QuantityChange,
			}
		}
		if err := tx.SetStock(ctx, product.ID, newStock); err != nil {
			return err
		}
		if err := tx.AppendLog(ctx, LogEntry{
			ProductID:      product.ID,
			UserID:         input.ActorID,
			Type:           TransactionAdjustment,
			QuantityChange: input.QuantityChange,
			PreviousStock:  product.Stock,
			NewStock:       newStock,
			ReferenceType:  ReferenceManual,
			Notes:          notes,
		}); err != nil {
			return err
		}
		result = Adjustment{
			ProductName:    product.Name,
			PreviousStock:  product.Stock,
			NewStock:       newStock,
			QuantityChange: input.QuantityChange,
		}
		return nil
	})
	if err != nil {
		return Adjustment{}, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, shared.ActivityLog{
			UserID:      input.ActorID,
			Type:        shared.ActivityStockAdjust,
			Description: fmt.Sprintf("Adjusted %s by %+d", result.ProductName, input.QuantityChange),
			Entity:      "product",
			EntityID:    strconv.FormatInt(input.ProductID, 10),
		})
	}
	return result, nil
}

// Logs lists ledger entries.
func (s *Service) Logs(ctx context.Context, filter LogFilter) ([]LogEntry, int, error) {
	return s.repo.ListLogs(ctx, filter)
}

// GetStats aggregates inventory statistics.
func (s *Service) GetStats(ctx context.Context, filter StatsFilter) (Stats, error) {
	return s.repo.Stats(ctx, filter)
}

// GetReport builds the in-out-stock report for a date window.
func (s *Service) GetReport(ctx context.Context, from, to time.Time) ([]ReportRow, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: start date and end date are required", shared.ErrValidation)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date before start date", shared.ErrValidation)
	}
	return s.repo.Report(ctx, from, to)
}
