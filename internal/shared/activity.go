package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Activity types recorded in activity_logs.
const (
	ActivityLogin          = "login"
	ActivityProductCreate  = "product_create"
	ActivityProductUpdate  = "product_update"
	ActivityProductDelete  = "product_delete"
	ActivitySaleCreate     = "sale_create"
	ActivityInvoicePrint   = "invoice_print"
	ActivityPurchaseCreate = "purchase_create"
	ActivityPurchaseDelete = "purchase_delete"
	ActivityStockAdjust    = "stock_adjust"
)

// ActivityLog describes one user-visible action.
type ActivityLog struct {
	UserID      int64
	Type        string
	Description string
	Entity      string
	EntityID    string
	At          time.Time
}

// ActivityLogger appends records to activity_logs. Writes are best effort and
// happen outside the workflow transactions.
type ActivityLogger struct {
	pool *pgxpool.Pool
}

// NewActivityLogger returns a new ActivityLogger.
func NewActivityLogger(pool *pgxpool.Pool) *ActivityLogger {
	return &ActivityLogger{pool: pool}
}

// Record persists the log entry.
func (l *ActivityLogger) Record(ctx context.Context, log ActivityLog) error {
	if l == nil {
		return errors.New("activity logger not initialised")
	}
	if log.Type == "" {
		return errors.New("activity log requires a type")
	}
	at := log.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO activity_logs (user_id, activity_type, description, entity, entity_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.UserID, log.Type, log.Description, log.Entity, log.EntityID, at)
	return err
}
