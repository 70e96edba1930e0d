package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

type memoryRepo struct {
	products map[int64]*ProductState
	logs     []LogEntry
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(products ...ProductState) *memoryRepo {
	repo := &memoryRepo{products: make(map[int64]*ProductState)}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	return repo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]ProductState, len(r.products))
	for id, p := range r.products {
		snapshot[id] = *p
	}
	logCount := len(r.logs)
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		// Roll back, mirroring the database transaction.
		for id, p := range snapshot {
			stored := p
			r.products[id] = &stored
		}
		r.logs = r.logs[:logCount]
		return err
	}
	return nil
}

func (r *memoryRepo) ListLogs(ctx context.Context, filter LogFilter) ([]LogEntry, int, error) {
	out := make([]LogEntry, len(r.logs))
	copy(out, r.logs)
	return out, len(out), nil
}

func (r *memoryRepo) Stats(ctx context.Context, filter StatsFilter) (Stats, error) {
	return Stats{}, nil
}

func (r *memoryRepo) Report(ctx context.Context, from, to time.Time) ([]ReportRow, error) {
	return nil, nil
}

func (tx *memoryTx) ProductForUpdate(ctx context.Context, productID int64) (ProductState, error) {
	p, ok := tx.repo.products[productID]
	if !ok || !p.Active {
		return ProductState{}, shared.ErrNotFound
	}
	return *p, nil
}

func (tx *memoryTx) SetStock(ctx context.Context, productID int64, stock int) error {
	tx.repo.products[productID].Stock = stock
	return nil
}

func (tx *memoryTx) AppendLog(ctx context.Context, entry LogEntry) error {
	tx.repo.logs = append(tx.repo.logs, entry)
	return nil
}

func TestAdjustPositive(t *testing.T) {
	repo := newMemoryRepo(ProductState{ID: 1, Name: "Instant noodles", Stock: 5, Active: true})
	svc := NewService(repo, nil)

	result, err := svc.Adjust(context.Background(), AdjustmentInput{ProductID: 1, QuantityChange: 7, ActorID: 9})
	require.NoError(t, err)
	require.Equal(t, 5, result.PreviousStock)
	require.Equal(t, 12, result.NewStock)
	require.Equal(t, 12, repo.products[1].Stock)

	require.Len(t, repo.logs, 1)
	entry := repo.logs[0]
	require.Equal(t, TransactionAdjustment, entry.Type)
	require.Equal(t, ReferenceManual, entry.ReferenceType)
	require.Equal(t, 7, entry.QuantityChange)
	require.Equal(t, entry.PreviousStock+entry.QuantityChange, entry.NewStock)
	require.Equal(t, int64(9), entry.UserID)
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	repo := newMemoryRepo(ProductState{ID: 1, Name: "Bottled water", Stock: 3, Active: true})
	svc := NewService(repo, nil)

	_, err := svc.Adjust(context.Background(), AdjustmentInput{ProductID: 1, QuantityChange: -5, ActorID: 2})
	require.Error(t, err)
	require.True(t, shared.IsInsufficientStock(err))
	require.Equal(t, 3, repo.products[1].Stock)
	require.Empty(t, repo.logs)

	// Retrying fails identically with no state change.
	_, err = svc.Adjust(context.Background(), AdjustmentInput{ProductID: 1, QuantityChange: -5, ActorID: 2})
	require.True(t, shared.IsInsufficientStock(err))
	require.Equal(t, 3, repo.products[1].Stock)
	require.Empty(t, repo.logs)
}

func TestAdjustUnknownProduct(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Adjust(context.Background(), AdjustmentInput{ProductID: 42, QuantityChange: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAdjustZeroChangeRejected(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Adjust(context.Background(), AdjustmentInput{ProductID: 1, QuantityChange: 0})
	require.ErrorIs(t, err, shared.ErrValidation)
}
