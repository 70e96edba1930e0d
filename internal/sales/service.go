package sales

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/minimart-pos/minimart-pos/internal/discounts"
	"github.com/minimart-pos/minimart-pos/internal/inventory"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context, filter ListFilter) ([]Sale, int, error)
	Stats(ctx context.Context, filter ListFilter) (Stats, error)
}

// DiscountPort resolves a discount that is usable right now.
type DiscountPort interface {
	Resolve(ctx context.Context, id int64) (discounts.Discount, error)
}

// ReceiptMail is the payload handed to the mail queue after checkout.
type ReceiptMail struct {
	SaleID        int64   `json:"sale_id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	TotalAmount   float64 `json:"total_amount"`
}

// ReceiptEnqueuer queues the receipt email for async delivery.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, mail ReceiptMail) error
}

// ActivityPort records user-visible actions.
type ActivityPort interface {
	Record(ctx context.Context, log shared.ActivityLog) error
}

// Service runs the checkout workflow and sale queries.
type Service struct {
	repo      RepositoryPort
	discounts DiscountPort
	receipts  ReceiptEnqueuer
	activity  ActivityPort
	now       func() time.Time
}

// NewService builds Service. receipts and activity may be nil.
func NewService(repo RepositoryPort, discountSvc DiscountPort, receipts ReceiptEnqueuer, activity ActivityPort) *Service {
	return &Service{repo: repo, discounts: discountSvc, receipts: receipts, activity: activity, now: time.Now}
}

// CreateSale validates the cart, applies the discount and commits the sale,
// its items, the stock decrements and the ledger entries in one transaction.
// Any failure rolls the whole checkout back.
func (s *Service) CreateSale(ctx context.Context, input CheckoutInput) (Receipt, error) {
	if err := validateCheckout(input); err != nil {
		return Receipt{}, err
	}

	var discount discounts.Discount
	if input.DiscountID != 0 {
		d, err := s.discounts.Resolve(ctx, input.DiscountID)
		if err != nil {
			return Receipt{}, err
		}
		discount = d
	}

	// Lock rows in a stable order so two concurrent checkouts over the same
	// products cannot deadlock.
	items := make([]CheckoutItem, len(input.Items))
	copy(items, input.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	var receipt Receipt
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		type pricedItem struct {
			product  inventory.ProductState
			quantity int
			total    float64
		}

		var subtotal float64
		priced := make([]pricedItem, 0, len(items))
		for _, item := range items {
			product, err := tx.ProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < item.Quantity {
				return &shared.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}
			lineTotal := product.SalePrice * float64(item.Quantity)
			subtotal += lineTotal
			priced = append(priced, pricedItem{product: product, quantity: item.Quantity, total: lineTotal})
		}

		discountAmount := 0.0
		if discount.ID != 0 {
			discountAmount = discounts.Calculate(discount, subtotal)
		}
		total := subtotal - discountAmount

		// Change may come out negative (short cash, card settled later).
		// The register decides how to handle it; the workflow just records it.
		change := input.CashReceived - total

		seq, err := tx.NextInvoiceSeq(ctx)
		if err != nil {
			return err
		}
		invoice := fmt.Sprintf("INV-%d-%06d", s.now().Year(), seq%1000000)

		saleID, err := tx.InsertSale(ctx, Sale{
			InvoiceNumber:  invoice,
			UserID:         input.ActorID,
			CustomerName:   input.CustomerName,
			CustomerPhone:  input.CustomerPhone,
			CustomerEmail:  input.CustomerEmail,
			Subtotal:       subtotal,
			DiscountAmount: discountAmount,
			TotalAmount:    total,
			CashReceived:   input.CashReceived,
			ChangeAmount:   change,
			PaymentMethod:  input.PaymentMethod,
		})
		if err != nil {
			return err
		}

		for _, line := range priced {
			if err := tx.InsertItem(ctx, SaleItem{
				SaleID:     saleID,
				ProductID:  line.product.ID,
				Quantity:   line.quantity,
				UnitPrice:  line.product.SalePrice,
				TotalPrice: line.total,
			}); err != nil {
				return err
			}
			newStock := line.product.Stock - line.quantity
			if err := tx.SetStock(ctx, line.product.ID, newStock); err != nil {
				return err
			}
			if err := tx.AppendLog(ctx, inventory.LogEntry{
				ProductID:      line.product.ID,
				UserID:         input.ActorID,
				Type:           inventory.TransactionOut,
				QuantityChange: -line.quantity,
				PreviousStock:  line.product.Stock,
				NewStock:       newStock,
				ReferenceID:    saleID,
				ReferenceType:  inventory.ReferenceSale,
				Notes:          "Sale " + invoice,
			}); err != nil {
				return err
			}
		}

		receipt = Receipt{
			SaleID:         saleID,
			InvoiceNumber:  invoice,
			Subtotal:       subtotal,
			DiscountAmount: discountAmount,
			TotalAmount:    total,
			CashReceived:   input.CashReceived,
			ChangeAmount:   change,
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	// The receipt email is best effort and never fails the committed sale.
	if s.receipts != nil && input.CustomerEmail != "" {
		mail := ReceiptMail{
			SaleID:        receipt.SaleID,
			InvoiceNumber: receipt.InvoiceNumber,
			CustomerName:  input.CustomerName,
			CustomerEmail: input.CustomerEmail,
			TotalAmount:   receipt.TotalAmount,
		}
		if err := s.receipts.EnqueueReceipt(ctx, mail); err == nil {
			receipt.EmailSent = true
		}
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, shared.ActivityLog{
			UserID:      input.ActorID,
			Type:        shared.ActivitySaleCreate,
			Description: fmt.Sprintf("Sale %s for %.2f", receipt.InvoiceNumber, receipt.TotalAmount),
			Entity:      "sale",
			EntityID:    strconv.FormatInt(receipt.SaleID, 10),
		})
	}
	return receipt, nil
}

// Get returns one sale with items.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns paged sales.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	return s.repo.List(ctx, filter)
}

// GetStats aggregates sales over a window.
func (s *Service) GetStats(ctx context.Context, filter ListFilter) (Stats, error) {
	return s.repo.Stats(ctx, filter)
}

func validateCheckout(input CheckoutInput) error {
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: a sale needs at least one item", shared.ErrValidation)
	}
	seen := make(map[int64]bool, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("%w: item product id required", shared.ErrValidation)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", shared.ErrValidation)
		}
		if seen[item.ProductID] {
			return fmt.Errorf("%w: duplicate product %d in cart", shared.ErrValidation, item.ProductID)
		}
		seen[item.ProductID] = true
	}
	switch input.PaymentMethod {
	case PaymentCash, PaymentCard, PaymentTransfer:
	default:
		return fmt.Errorf("%w: unknown payment method %q", shared.ErrValidation, input.PaymentMethod)
	}
	if input.CashReceived < 0 {
		return fmt.Errorf("%w: cash received cannot be negative", shared.ErrValidation)
	}
	return nil
}
