package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/discounts"
	"github.com/minimart-pos/minimart-pos/internal/inventory"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

type memoryRepo struct {
	products map[int64]*inventory.ProductState
	sales    map[int64]Sale
	items    []SaleItem
	logs     []inventory.LogEntry
	nextID   int64

	// invoiceSeq mimics a database sequence: it survives rollback, so a
	// failed checkout burns its number instead of handing it out again.
	invoiceSeq     int64
	failInsertItem bool
}

func newMemoryRepo(products ...inventory.ProductState) *memoryRepo {
	repo := &memoryRepo{products: make(map[int64]*inventory.ProductState), sales: make(map[int64]Sale)}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	return repo
}

type memoryTx struct {
	repo *memoryRepo
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	productSnap := make(map[int64]inventory.ProductState, len(r.products))
	for id, p := range r.products {
		productSnap[id] = *p
	}
	saleSnap := make(map[int64]Sale, len(r.sales))
	for id, s := range r.sales {
		saleSnap[id] = s
	}
	itemCount, logCount, nextID := len(r.items), len(r.logs), r.nextID

	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		for id, p := range productSnap {
			stored := p
			r.products[id] = &stored
		}
		r.sales = saleSnap
		r.items = r.items[:itemCount]
		r.logs = r.logs[:logCount]
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	return nil, len(r.sales), nil
}

func (r *memoryRepo) Stats(ctx context.Context, filter ListFilter) (Stats, error) {
	return Stats{}, nil
}

func (tx *memoryTx) ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error) {
	p, ok := tx.repo.products[productID]
	if !ok || !p.Active {
		return inventory.ProductState{}, shared.ErrNotFound
	}
	return *p, nil
}

func (tx *memoryTx) NextInvoiceSeq(ctx context.Context) (int64, error) {
	tx.repo.invoiceSeq++
	return tx.repo.invoiceSeq, nil
}

func (tx *memoryTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	tx.repo.nextID++
	sale.ID = tx.repo.nextID
	tx.repo.sales[sale.ID] = sale
	return sale.ID, nil
}

func (tx *memoryTx) InsertItem(ctx context.Context, item SaleItem) error {
	if tx.repo.failInsertItem {
		return fmt.Errorf("insert item failed")
	}
	tx.repo.items = append(tx.repo.items, item)
	return nil
}

func (tx *memoryTx) SetStock(ctx context.Context, productID int64, stock int) error {
	tx.repo.products[productID].Stock = stock
	return nil
}

func (tx *memoryTx) AppendLog(ctx context.Context, entry inventory.LogEntry) error {
	tx.repo.logs = append(tx.repo.logs, entry)
	return nil
}

type stubDiscounts struct {
	byID map[int64]discounts.Discount
}

func (s *stubDiscounts) Resolve(ctx context.Context, id int64) (discounts.Discount, error) {
	d, ok := s.byID[id]
	if !ok {
		return discounts.Discount{}, shared.ErrNotFound
	}
	if !d.IsActive {
		return discounts.Discount{}, fmt.Errorf("%w: %s", shared.ErrDiscountUnavailable, d.Name)
	}
	return d, nil
}

type stubEnqueuer struct {
	sent []ReceiptMail
	fail bool
}

func (e *stubEnqueuer) EnqueueReceipt(ctx context.Context, mail ReceiptMail) error {
	if e.fail {
		return fmt.Errorf("queue unavailable")
	}
	e.sent = append(e.sent, mail)
	return nil
}

func newTestService(repo *memoryRepo, ds *stubDiscounts, enq *stubEnqueuer) *Service {
	if ds == nil {
		ds = &stubDiscounts{byID: map[int64]discounts.Discount{}}
	}
	svc := NewService(repo, ds, enq, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateSaleCommitsAtomically(t *testing.T) {
	repo := newMemoryRepo(
		inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true},
		inventory.ProductState{ID: 2, Name: "Sugar", SalePrice: 8000, Stock: 4, Active: true},
	)
	svc := newTestService(repo, nil, nil)

	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items: []CheckoutItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
		CashReceived:  100000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.Equal(t, "INV-2026-000001", receipt.InvoiceNumber)
	require.InDelta(t, 54000.0, receipt.Subtotal, 0.001)
	require.InDelta(t, 54000.0, receipt.TotalAmount, 0.001)
	require.InDelta(t, 46000.0, receipt.ChangeAmount, 0.001)

	require.Equal(t, 8, repo.products[1].Stock)
	require.Equal(t, 1, repo.products[2].Stock)
	require.Len(t, repo.items, 2)
	require.Len(t, repo.logs, 2)
	for _, entry := range repo.logs {
		require.Equal(t, inventory.TransactionOut, entry.Type)
		require.Equal(t, inventory.ReferenceSale, entry.ReferenceType)
		require.Equal(t, receipt.SaleID, entry.ReferenceID)
		require.Negative(t, entry.QuantityChange)
		require.Equal(t, entry.PreviousStock+entry.QuantityChange, entry.NewStock)
	}
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	repo := newMemoryRepo(
		inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true},
		inventory.ProductState{ID: 2, Name: "Sugar", SalePrice: 8000, Stock: 2, Active: true},
	)
	svc := newTestService(repo, nil, nil)

	input := CheckoutInput{
		Items: []CheckoutItem{
			{ProductID: 1, Quantity: 5},
			{ProductID: 2, Quantity: 3},
		},
		CashReceived:  200000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	}

	_, err := svc.CreateSale(context.Background(), input)
	require.Error(t, err)
	require.True(t, shared.IsInsufficientStock(err))

	require.Equal(t, 10, repo.products[1].Stock)
	require.Equal(t, 2, repo.products[2].Stock)
	require.Empty(t, repo.sales)
	require.Empty(t, repo.items)
	require.Empty(t, repo.logs)

	// Retrying fails identically and still changes nothing.
	_, err = svc.CreateSale(context.Background(), input)
	require.True(t, shared.IsInsufficientStock(err))
	require.Equal(t, 10, repo.products[1].Stock)
	require.Empty(t, repo.logs)
}

func TestCreateSaleAppliesPercentageDiscount(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 50000, Stock: 10, Active: true})
	ds := &stubDiscounts{byID: map[int64]discounts.Discount{
		3: {ID: 3, Name: "Ten off", Type: discounts.TypePercentage, Value: 10, IsActive: true},
	}}
	svc := newTestService(repo, ds, nil)

	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 2}},
		DiscountID:    3,
		CashReceived:  100000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.InDelta(t, 100000.0, receipt.Subtotal, 0.001)
	require.InDelta(t, 10000.0, receipt.DiscountAmount, 0.001)
	require.InDelta(t, 90000.0, receipt.TotalAmount, 0.001)
	require.InDelta(t, 10000.0, receipt.ChangeAmount, 0.001)
}

func TestCreateSaleAmountDiscountCappedAtSubtotal(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Gum", SalePrice: 3000, Stock: 10, Active: true})
	ds := &stubDiscounts{byID: map[int64]discounts.Discount{
		4: {ID: 4, Name: "Big cut", Type: discounts.TypeAmount, Value: 50000, IsActive: true},
	}}
	svc := newTestService(repo, ds, nil)

	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}},
		DiscountID:    4,
		CashReceived:  0,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.InDelta(t, 3000.0, receipt.DiscountAmount, 0.001)
	require.InDelta(t, 0.0, receipt.TotalAmount, 0.001)
}

func TestCreateSaleUnusableDiscountRejected(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true})
	ds := &stubDiscounts{byID: map[int64]discounts.Discount{
		5: {ID: 5, Name: "Expired", Type: discounts.TypePercentage, Value: 10, IsActive: false},
	}}
	svc := newTestService(repo, ds, nil)

	_, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}},
		DiscountID:    5,
		CashReceived:  20000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.ErrorIs(t, err, shared.ErrDiscountUnavailable)
	require.Equal(t, 10, repo.products[1].Stock)
	require.Empty(t, repo.sales)
}

func TestCreateSaleRecordsNegativeChange(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true})
	svc := newTestService(repo, nil, nil)

	// Short cash is the register's concern; the workflow records the
	// negative change and commits the sale anyway.
	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 2}},
		CashReceived:  20000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.InDelta(t, 30000.0, receipt.TotalAmount, 0.001)
	require.InDelta(t, -10000.0, receipt.ChangeAmount, 0.001)
	require.Equal(t, 8, repo.products[1].Stock)
	require.Len(t, repo.logs, 1)
}

func TestCreateSaleComputesChangeForCardPayments(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true})
	svc := newTestService(repo, nil, nil)

	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 2}},
		CashReceived:  0,
		PaymentMethod: PaymentCard,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.InDelta(t, -30000.0, receipt.ChangeAmount, 0.001)
}

func TestCreateSaleInvoiceNumberNotReusedAfterRollback(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true})
	svc := newTestService(repo, nil, nil)

	repo.failInsertItem = true
	_, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}},
		CashReceived:  20000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.Error(t, err)
	require.Empty(t, repo.sales)
	require.Equal(t, 10, repo.products[1].Stock)

	// The number drawn by the rolled-back attempt stays burned.
	repo.failInsertItem = false
	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}},
		CashReceived:  20000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.Equal(t, "INV-2026-000002", receipt.InvoiceNumber)
}

func TestCreateSaleValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil, nil)

	_, err := svc.CreateSale(context.Background(), CheckoutInput{PaymentMethod: PaymentCash})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 2}},
		PaymentMethod: PaymentCash,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}},
		PaymentMethod: "check",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateSaleEnqueuesReceipt(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true})
	enq := &stubEnqueuer{}
	svc := newTestService(repo, nil, enq)

	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}},
		CustomerEmail: "jo@example.com",
		CashReceived:  20000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.True(t, receipt.EmailSent)
	require.Len(t, enq.sent, 1)
	require.Equal(t, receipt.InvoiceNumber, enq.sent[0].InvoiceNumber)
}

func TestCreateSaleSurvivesQueueOutage(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true})
	enq := &stubEnqueuer{fail: true}
	svc := newTestService(repo, nil, enq)

	receipt, err := svc.CreateSale(context.Background(), CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 1, Quantity: 1}},
		CustomerEmail: "jo@example.com",
		CashReceived:  20000,
		PaymentMethod: PaymentCash,
		ActorID:       7,
	})
	require.NoError(t, err)
	require.False(t, receipt.EmailSent)
	require.Equal(t, 9, repo.products[1].Stock)
}

func TestLedgerChainAcrossSales(t *testing.T) {
	repo := newMemoryRepo(inventory.ProductState{ID: 1, Name: "Coffee", SalePrice: 15000, Stock: 10, Active: true})
	svc := newTestService(repo, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSale(context.Background(), CheckoutInput{
			Items:         []CheckoutItem{{ProductID: 1, Quantity: 2}},
			CashReceived:  50000,
			PaymentMethod: PaymentCash,
			ActorID:       7,
		})
		require.NoError(t, err)
	}

	require.Len(t, repo.logs, 3)
	prev := 10
	for _, entry := range repo.logs {
		require.Equal(t, prev, entry.PreviousStock)
		require.Equal(t, prev-2, entry.NewStock)
		prev = entry.NewStock
	}
	require.Equal(t, 4, repo.products[1].Stock)
}
