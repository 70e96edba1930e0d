package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minimart-pos/minimart-pos/internal/platform/httpx"
	"github.com/minimart-pos/minimart-pos/internal/rbac"
)

// Handler serves report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.Require(rbac.CapViewReports))
	r.Get("/dashboard", h.dashboard)
	r.Get("/revenue", h.revenue)
	r.Get("/revenue/export", h.revenueExport)
	r.Get("/products", h.products)
	r.Get("/purchases", h.purchases)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, d)
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetRevenue(r.Context(), parseRange(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, report)
}

func (h *Handler) revenueExport(w http.ResponseWriter, r *http.Request) {
	rng := parseRange(r)
	report, err := h.service.GetRevenue(r.Context(), rng)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("revenue_%s_%s.xlsx", rng.From.Format("20060102"), rng.To.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteRevenueWorkbook(w, report); err != nil {
		h.logger.Error("revenue export", slog.Any("error", err))
	}
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetTopProducts(r.Context(), parseRange(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, report)
}

func (h *Handler) purchases(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetPurchases(r.Context(), parseRange(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, report)
}

func parseRange(r *http.Request) DateRange {
	const layout = "2006-01-02"
	from, _ := time.Parse(layout, r.URL.Query().Get("start_date"))
	to, _ := time.Parse(layout, r.URL.Query().Get("end_date"))
	return DateRange{From: from, To: to}
}
