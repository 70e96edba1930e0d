package inventory

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/minimart-pos/minimart-pos/internal/platform/httpx"
	"github.com/minimart-pos/minimart-pos/internal/rbac"
)

// Handler serves inventory endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listLogs)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapAdjustInventory))
		r.Post("/adjust", h.adjust)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapViewInventory))
		r.Get("/stats", h.stats)
		r.Get("/report", h.report)
	})
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	filter := LogFilter{}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		filter.ProductID, _ = strconv.ParseInt(raw, 10, 64)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	logs, total, err := h.service.Logs(r.Context(), filter)
	if err != nil {
		h.logger.Error("list inventory logs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.NewPage(logs, filter.Page, filter.Limit, total))
}

type adjustForm struct {
	ProductID      int64  `json:"product_id" validate:"required,gt=0"`
	QuantityChange int    `json:"quantity_change" validate:"required"`
	Notes          string `json:"notes"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var form adjustForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "product_id and a non-zero quantity_change are required")
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())

	result, err := h.service.Adjust(r.Context(), AdjustmentInput{
		ProductID:      form.ProductID,
		QuantityChange: form.QuantityChange,
		Notes:          form.Notes,
		ActorID:        actor.ID,
	})
	if err != nil {
		h.logger.Warn("inventory adjust rejected", slog.Int64("product_id", form.ProductID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Inventory adjusted successfully", result)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	filter := StatsFilter{}
	filter.From, filter.To = parseDateRange(r)

	stats, err := h.service.GetStats(r.Context(), filter)
	if err != nil {
		h.logger.Error("inventory stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, stats)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	from, to := parseDateRange(r)
	report, err := h.service.GetReport(r.Context(), from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, report)
}

func parseDateRange(r *http.Request) (time.Time, time.Time) {
	const layout = "2006-01-02"
	from, _ := time.Parse(layout, r.URL.Query().Get("start_date"))
	to, _ := time.Parse(layout, r.URL.Query().Get("end_date"))
	return from, to
}
