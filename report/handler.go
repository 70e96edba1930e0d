package report

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/minimart-pos/minimart-pos/internal/platform/httpx"
	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/sales"
	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// SalePort is the slice of the sale service the invoice renderer needs.
type SalePort interface {
	Get(ctx context.Context, id int64) (sales.Sale, error)
}

// ActivityPort records user-visible actions.
type ActivityPort interface {
	Record(ctx context.Context, log shared.ActivityLog) error
}

// Handler serves invoice PDF downloads.
type Handler struct {
	logger   *slog.Logger
	client   *Client
	sales    SalePort
	activity ActivityPort
}

// NewHandler constructs Handler. activity may be nil.
func NewHandler(logger *slog.Logger, client *Client, salePort SalePort, activity ActivityPort) *Handler {
	return &Handler{logger: logger, client: client, sales: salePort, activity: activity}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices/{id}", h.invoice)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	sale, err := h.sales.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	html, err := BuildInvoiceHTML(sale)
	if err != nil {
		h.logger.Error("build invoice html", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.Fail(w, http.StatusBadGateway, "document service unavailable")
		return
	}

	if h.activity != nil {
		actor, _ := rbac.ActorFromContext(r.Context())
		_ = h.activity.Record(r.Context(), shared.ActivityLog{
			UserID:      actor.ID,
			Type:        shared.ActivityInvoicePrint,
			Description: "Printed invoice " + sale.InvoiceNumber,
			Entity:      "sale",
			EntityID:    strconv.FormatInt(id, 10),
		})
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+sale.InvoiceNumber+`.pdf"`)
	_, _ = w.Write(pdf)
}
