package discounts

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

// Handler serves discount endpoints.
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

// MountRoutes registers discount routes. Reading and calculating are open to
// any authenticated user so the register screen can apply promotions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/active", h.listActive)
	r.Get("/{id}", h.get)
	r.Post("/calculate", h.calculate)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapManageDiscounts))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	list, total, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list discounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.NewPage(list, page, limit, total))
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list active discounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid discount id")
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, d)
}

type calculateForm struct {
	DiscountID  int64   `json:"discount_id" validate:"required,gt=0"`
	TotalAmount float64 `json:"total_amount" validate:"required,gt=0"`
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var form calculateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "discount_id and a positive total_amount are required")
		return
	}

	amount, d, err := h.service.CalculateAmount(r.Context(), form.DiscountID, form.TotalAmount)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"discount_id":     d.ID,
		"discount_name":   d.Name,
		"discount_type":   d.Type,
		"discount_value":  d.Value,
		"discount_amount": amount,
		"final_amount":    form.TotalAmount - amount,
	})
}

type discountForm struct {
	Name      string  `json:"discount_name" validate:"required"`
	Type      string  `json:"discount_type" validate:"required,oneof=percentage amount"`
	Value     float64 `json:"discount_value" validate:"required,gt=0"`
	StartDate string  `json:"start_date" validate:"required"`
	EndDate   string  `json:"end_date" validate:"required"`
	IsActive  *bool   `json:"is_active"`
}

func (f discountForm) toDomain() (Discount, error) {
	const layout = "2006-01-02"
	start, err := time.Parse(layout, f.StartDate)
	if err != nil {
		return Discount{}, err
	}
	end, err := time.Parse(layout, f.EndDate)
	if err != nil {
		return Discount{}, err
	}
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return Discount{
		Name:      f.Name,
		Type:      Type(f.Type),
		Value:     f.Value,
		StartDate: start,
		EndDate:   end,
		IsActive:  active,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form discountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "name, type, value and a date range are required")
		return
	}
	d, err := form.toDomain()
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "dates must use the YYYY-MM-DD format")
		return
	}

	created, err := h.service.Create(r.Context(), d)
	if err != nil {
		h.logger.Warn("create discount rejected", slog.String("name", form.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusCreated, "Discount created successfully", created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid discount id")
		return
	}
	var form discountForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "name, type, value and a date range are required")
		return
	}
	d, err := form.toDomain()
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "dates must use the YYYY-MM-DD format")
		return
	}

	if err := h.service.Update(r.Context(), id, d); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Discount updated successfully", nil)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid discount id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Discount deleted successfully", nil)
}
