package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReceiptEmailHandler delivers receipt emails.
type ReceiptEmailHandler struct {
	mailer Mailer
	logger *slog.Logger
}

// NewReceiptEmailHandler constructs ReceiptEmailHandler.
func NewReceiptEmailHandler(mailer Mailer, logger *slog.Logger) *ReceiptEmailHandler {
	return &ReceiptEmailHandler{mailer: mailer, logger: logger}
}

// Handle processes TaskTypeReceiptEmail tasks. A malformed payload is dropped
// rather than retried.
func (h *ReceiptEmailHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CustomerEmail == "" {
		return asynq.SkipRetry
	}
	if err := h.mailer.Send(ctx, payload.CustomerEmail, receiptSubject(payload), receiptBody(payload)); err != nil {
		h.logger.Warn("receipt email failed",
			slog.String("invoice", payload.InvoiceNumber), slog.Any("error", err))
		return err
	}
	h.logger.Info("receipt email sent",
		slog.String("invoice", payload.InvoiceNumber), slog.String("to", payload.CustomerEmail))
	return nil
}

// LowStockScanner emails an alert listing products at or below min stock.
type LowStockScanner struct {
	pool      *pgxpool.Pool
	mailer    Mailer
	recipient string
	logger    *slog.Logger
}

// NewLowStockScanner constructs LowStockScanner.
func NewLowStockScanner(pool *pgxpool.Pool, mailer Mailer, recipient string, logger *slog.Logger) *LowStockScanner {
	return &LowStockScanner{pool: pool, mailer: mailer, recipient: recipient, logger: logger}
}

// Handle processes TaskTypeLowStockScan tasks.
func (s *LowStockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	rows, err := s.pool.Query(ctx, `
		SELECT product_name, current_stock, min_stock
		FROM products
		WHERE is_active = TRUE AND current_stock <= min_stock
		ORDER BY current_stock - min_stock ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var body string
	count := 0
	for rows.Next() {
		var name string
		var stock, minStock int
		if err := rows.Scan(&name, &stock, &minStock); err != nil {
			return err
		}
		body += fmt.Sprintf("- %s: %d in stock (minimum %d)\n", name, stock, minStock)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if count == 0 {
		s.logger.Info("low stock scan clean")
		return nil
	}

	subject := fmt.Sprintf("Low stock alert: %d products need restocking", count)
	if err := s.mailer.Send(ctx, s.recipient, subject, "The following products are low on stock:\n\n"+body); err != nil {
		s.logger.Warn("low stock alert failed", slog.Any("error", err))
		return err
	}
	s.logger.Info("low stock alert sent", slog.Int("products", count))
	return nil
}
