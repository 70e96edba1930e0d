package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReceiptEmail sends a sale receipt to the customer.
	TaskTypeReceiptEmail = "mail:receipt"
	// TaskTypeLowStockScan scans for products at or below min stock and
	// alerts the configured recipient.
	TaskTypeLowStockScan = "inventory:lowstock"
)

// ReceiptEmailPayload carries the sale summary for the receipt email.
type ReceiptEmailPayload struct {
	SaleID        int64   `json:"sale_id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	TotalAmount   float64 `json:"total_amount"`
}

// NewReceiptEmailTask constructs the receipt email task.
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReceiptEmail, data), nil
}

// NewLowStockScanTask constructs the scheduled low stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockScan, nil)
}

func receiptSubject(p ReceiptEmailPayload) string {
	return "Your receipt " + p.InvoiceNumber
}

func receiptBody(p ReceiptEmailPayload) string {
	name := p.CustomerName
	if name == "" {
		name = "customer"
	}
	return fmt.Sprintf(
		"Hello %s,\n\nThank you for your purchase.\n\nInvoice: %s\nTotal: %.2f\n\nWe hope to see you again soon.\n",
		name, p.InvoiceNumber, p.TotalAmount)
}
