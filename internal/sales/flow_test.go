package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/minimart-pos/minimart-pos/internal/inventory"
	"github.com/minimart-pos/minimart-pos/internal/purchasing"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// flowStore backs one shared stock ledger for the purchase, checkout and
// adjustment services at once. Each service sees it through its own port
// adapter so the three workflows move the same product rows.
type flowStore struct {
	products   map[int64]*inventory.ProductState
	logs       []inventory.LogEntry
	orders     map[int64]purchasing.PurchaseOrder
	orderItems []purchasing.PurchaseItem
	sales      map[int64]Sale
	saleItems  []SaleItem
	orderSeq   int64
	invoiceSeq int64
	nextID     int64
}

func newFlowStore(products ...inventory.ProductState) *flowStore {
	st := &flowStore{
		products: make(map[int64]*inventory.ProductState),
		orders:   make(map[int64]purchasing.PurchaseOrder),
		sales:    make(map[int64]Sale),
	}
	for i := range products {
		p := products[i]
		st.products[p.ID] = &p
	}
	return st
}

func (st *flowStore) productForUpdate(productID int64) (inventory.ProductState, error) {
	p, ok := st.products[productID]
	if !ok || !p.Active {
		return inventory.ProductState{}, shared.ErrNotFound
	}
	return *p, nil
}

func (st *flowStore) setStock(productID int64, stock int) error {
	st.products[productID].Stock = stock
	return nil
}

func (st *flowStore) appendLog(entry inventory.LogEntry) error {
	st.logs = append(st.logs, entry)
	return nil
}

// flowSalesRepo adapts flowStore to the checkout ports.
type flowSalesRepo struct {
	st *flowStore
}

func (r *flowSalesRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *flowSalesRepo) Get(ctx context.Context, id int64) (Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return Sale{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *flowSalesRepo) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	return nil, len(r.st.sales), nil
}

func (r *flowSalesRepo) Stats(ctx context.Context, filter ListFilter) (Stats, error) {
	return Stats{}, nil
}

func (r *flowSalesRepo) ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error) {
	return r.st.productForUpdate(productID)
}

func (r *flowSalesRepo) NextInvoiceSeq(ctx context.Context) (int64, error) {
	r.st.invoiceSeq++
	return r.st.invoiceSeq, nil
}

func (r *flowSalesRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	r.st.nextID++
	sale.ID = r.st.nextID
	r.st.sales[sale.ID] = sale
	return sale.ID, nil
}

func (r *flowSalesRepo) InsertItem(ctx context.Context, item SaleItem) error {
	r.st.saleItems = append(r.st.saleItems, item)
	return nil
}

func (r *flowSalesRepo) SetStock(ctx context.Context, productID int64, stock int) error {
	return r.st.setStock(productID, stock)
}

func (r *flowSalesRepo) AppendLog(ctx context.Context, entry inventory.LogEntry) error {
	return r.st.appendLog(entry)
}

// flowPurchaseRepo adapts flowStore to the purchase ports.
type flowPurchaseRepo struct {
	st *flowStore
}

func (r *flowPurchaseRepo) WithTx(ctx context.Context, fn func(context.Context, purchasing.TxRepository) error) error {
	return fn(ctx, r)
}

func (r *flowPurchaseRepo) Get(ctx context.Context, id int64) (purchasing.PurchaseOrder, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return purchasing.PurchaseOrder{}, shared.ErrNotFound
	}
	return o, nil
}

func (r *flowPurchaseRepo) List(ctx context.Context, filter purchasing.ListFilter) ([]purchasing.PurchaseOrder, int, error) {
	return nil, len(r.st.orders), nil
}

func (r *flowPurchaseRepo) SupplierActive(ctx context.Context, supplierID int64) (bool, error) {
	return true, nil
}

func (r *flowPurchaseRepo) ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error) {
	return r.st.productForUpdate(productID)
}

func (r *flowPurchaseRepo) NextOrderSeq(ctx context.Context) (int64, error) {
	r.st.orderSeq++
	return r.st.orderSeq, nil
}

func (r *flowPurchaseRepo) InsertOrder(ctx context.Context, order purchasing.PurchaseOrder) (int64, error) {
	r.st.nextID++
	order.ID = r.st.nextID
	r.st.orders[order.ID] = order
	return order.ID, nil
}

func (r *flowPurchaseRepo) InsertItem(ctx context.Context, item purchasing.PurchaseItem) error {
	r.st.orderItems = append(r.st.orderItems, item)
	return nil
}

func (r *flowPurchaseRepo) OrderForUpdate(ctx context.Context, orderID int64) (purchasing.PurchaseOrder, error) {
	return r.Get(ctx, orderID)
}

func (r *flowPurchaseRepo) OrderItems(ctx context.Context, orderID int64) ([]purchasing.PurchaseItem, error) {
	var items []purchasing.PurchaseItem
	for _, item := range r.st.orderItems {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *flowPurchaseRepo) SetStatus(ctx context.Context, orderID int64, status purchasing.Status) error {
	o := r.st.orders[orderID]
	o.Status = status
	r.st.orders[orderID] = o
	return nil
}

func (r *flowPurchaseRepo) DeleteOrder(ctx context.Context, orderID int64) error {
	delete(r.st.orders, orderID)
	return nil
}

func (r *flowPurchaseRepo) SetStock(ctx context.Context, productID int64, stock int) error {
	return r.st.setStock(productID, stock)
}

func (r *flowPurchaseRepo) AppendLog(ctx context.Context, entry inventory.LogEntry) error {
	return r.st.appendLog(entry)
}

// flowInventoryRepo adapts flowStore to the adjustment ports.
type flowInventoryRepo struct {
	st *flowStore
}

func (r *flowInventoryRepo) WithTx(ctx context.Context, fn func(context.Context, inventory.TxRepository) error) error {
	return fn(ctx, r)
}

func (r *flowInventoryRepo) ListLogs(ctx context.Context, filter inventory.LogFilter) ([]inventory.LogEntry, int, error) {
	return r.st.logs, len(r.st.logs), nil
}

func (r *flowInventoryRepo) Stats(ctx context.Context, filter inventory.StatsFilter) (inventory.Stats, error) {
	return inventory.Stats{}, nil
}

func (r *flowInventoryRepo) Report(ctx context.Context, from, to time.Time) ([]inventory.ReportRow, error) {
	return nil, nil
}

func (r *flowInventoryRepo) ProductForUpdate(ctx context.Context, productID int64) (inventory.ProductState, error) {
	return r.st.productForUpdate(productID)
}

func (r *flowInventoryRepo) SetStock(ctx context.Context, productID int64, stock int) error {
	return r.st.setStock(productID, stock)
}

func (r *flowInventoryRepo) AppendLog(ctx context.Context, entry inventory.LogEntry) error {
	return r.st.appendLog(entry)
}

// A product that is purchased, sold and then corrected must leave one
// unbroken ledger chain: every entry starts where the previous one ended,
// regardless of which workflow wrote it.
func TestLedgerChainsAcrossWorkflows(t *testing.T) {
	ctx := context.Background()
	st := newFlowStore(inventory.ProductState{ID: 7, Name: "Beans", SalePrice: 12000, Stock: 0, Active: true})

	purchaseSvc := purchasing.NewService(&flowPurchaseRepo{st: st}, nil)
	saleSvc := NewService(&flowSalesRepo{st: st}, nil, nil, nil)
	adjustSvc := inventory.NewService(&flowInventoryRepo{st: st}, nil)

	order, err := purchaseSvc.Create(ctx, purchasing.CreateInput{
		SupplierID: 1,
		Items:      []purchasing.CreateItem{{ProductID: 7, Quantity: 10, UnitPrice: 9000}},
		ActorID:    2,
	})
	require.NoError(t, err)
	require.Equal(t, 10, st.products[7].Stock)

	receipt, err := saleSvc.CreateSale(ctx, CheckoutInput{
		Items:         []CheckoutItem{{ProductID: 7, Quantity: 4}},
		CashReceived:  48000,
		PaymentMethod: PaymentCash,
		ActorID:       2,
	})
	require.NoError(t, err)
	require.Equal(t, 6, st.products[7].Stock)

	adj, err := adjustSvc.Adjust(ctx, inventory.AdjustmentInput{
		ProductID:      7,
		QuantityChange: -1,
		Notes:          "Broken bag written off",
		ActorID:        2,
	})
	require.NoError(t, err)
	require.Equal(t, 5, adj.NewStock)
	require.Equal(t, 5, st.products[7].Stock)

	require.Len(t, st.logs, 3)

	in, out, manual := st.logs[0], st.logs[1], st.logs[2]
	require.Equal(t, inventory.TransactionIn, in.Type)
	require.Equal(t, inventory.ReferencePurchase, in.ReferenceType)
	require.Equal(t, order.ID, in.ReferenceID)
	require.Equal(t, 10, in.QuantityChange)

	require.Equal(t, inventory.TransactionOut, out.Type)
	require.Equal(t, inventory.ReferenceSale, out.ReferenceType)
	require.Equal(t, receipt.SaleID, out.ReferenceID)
	require.Equal(t, -4, out.QuantityChange)

	require.Equal(t, inventory.TransactionAdjustment, manual.Type)
	require.Equal(t, inventory.ReferenceManual, manual.ReferenceType)
	require.Equal(t, -1, manual.QuantityChange)

	// 0 -> 10 -> 6 -> 5, each entry picking up where the last left off.
	require.Equal(t, 0, in.PreviousStock)
	require.Equal(t, 10, in.NewStock)
	require.Equal(t, in.NewStock, out.PreviousStock)
	require.Equal(t, 6, out.NewStock)
	require.Equal(t, out.NewStock, manual.PreviousStock)
	require.Equal(t, 5, manual.NewStock)
}
