package sales

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

// Handler serves sale endpoints.
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

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapCreateSale))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapCreateSale, rbac.CapViewSalesStats))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/stats", h.stats)
	})
}

type checkoutItemForm struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type checkoutForm struct {
	Items         []checkoutItemForm `json:"items" validate:"required,min=1,dive"`
	DiscountID    int64              `json:"discount_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	CustomerEmail string             `json:"customer_email" validate:"omitempty,email"`
	CashReceived  float64            `json:"cash_received"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=cash card transfer"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form checkoutForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "items with positive quantities and a valid payment method are required")
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())

	input := CheckoutInput{
		DiscountID:    form.DiscountID,
		CustomerName:  form.CustomerName,
		CustomerPhone: form.CustomerPhone,
		CustomerEmail: form.CustomerEmail,
		CashReceived:  form.CashReceived,
		PaymentMethod: form.PaymentMethod,
		ActorID:       actor.ID,
		ActorName:     actor.FullName,
	}
	for _, item := range form.Items {
		input.Items = append(input.Items, CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	receipt, err := h.service.CreateSale(r.Context(), input)
	if err != nil {
		h.logger.Warn("checkout rejected", slog.Int64("user_id", actor.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusCreated, "Sale created successfully", receipt)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.From, filter.To = parseDateRange(r)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	list, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.NewPage(list, filter.Page, filter.Limit, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, sale)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	filter.From, filter.To = parseDateRange(r)

	stats, err := h.service.GetStats(r.Context(), filter)
	if err != nil {
		h.logger.Error("sales stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, stats)
}

func parseDateRange(r *http.Request) (time.Time, time.Time) {
	const layout = "2006-01-02"
	from, _ := time.Parse(layout, r.URL.Query().Get("start_date"))
	to, _ := time.Parse(layout, r.URL.Query().Get("end_date"))
	return from, to
}
