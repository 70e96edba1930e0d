package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/minimart-pos/minimart-pos/internal/platform/httpx"
	"github.com/minimart-pos/minimart-pos/internal/rbac"
)

// Handler serves product endpoints.
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

// MountRoutes registers product routes. Reads are open to any authenticated
// user so the register can look up items; writes need catalog rights.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/barcode/{barcode}", h.getByBarcode)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapManageProducts))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Search: r.URL.Query().Get("search")}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		filter.CategoryID, _ = strconv.ParseInt(raw, 10, 64)
	}
	filter.LowStock = r.URL.Query().Get("low_stock") == "true"
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	list, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.NewPage(list, filter.Page, filter.Limit, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

func (h *Handler) getByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

type createProductForm struct {
	Name          string  `json:"product_name" validate:"required"`
	Barcode       string  `json:"barcode"`
	CategoryID    int64   `json:"category_id"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	SalePrice     float64 `json:"sale_price" validate:"gte=0"`
	Unit          string  `json:"unit"`
	InitialStock  int     `json:"initial_stock" validate:"gte=0"`
	MinStock      int     `json:"min_stock" validate:"gte=0"`
	ImageURL      string  `json:"image_url"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form createProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "product_name is required and numeric fields cannot be negative")
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())

	created, err := h.service.Create(r.Context(), CreateInput{
		Name:          form.Name,
		Barcode:       form.Barcode,
		CategoryID:    form.CategoryID,
		PurchasePrice: form.PurchasePrice,
		SalePrice:     form.SalePrice,
		Unit:          form.Unit,
		InitialStock:  form.InitialStock,
		MinStock:      form.MinStock,
		ImageURL:      form.ImageURL,
	}, actor.ID)
	if err != nil {
		h.logger.Warn("create product rejected", slog.String("name", form.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusCreated, "Product created successfully", created)
}

type updateProductForm struct {
	Name          *string  `json:"product_name"`
	Barcode       *string  `json:"barcode"`
	CategoryID    *int64   `json:"category_id"`
	PurchasePrice *float64 `json:"purchase_price"`
	SalePrice     *float64 `json:"sale_price"`
	Unit          *string  `json:"unit"`
	MinStock      *int     `json:"min_stock"`
	ImageURL      *string  `json:"image_url"`
	IsActive      *bool    `json:"is_active"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var form updateProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())

	updated, err := h.service.Update(r.Context(), id, Update{
		Name:          form.Name,
		Barcode:       form.Barcode,
		CategoryID:    form.CategoryID,
		PurchasePrice: form.PurchasePrice,
		SalePrice:     form.SalePrice,
		Unit:          form.Unit,
		MinStock:      form.MinStock,
		ImageURL:      form.ImageURL,
		IsActive:      form.IsActive,
	}, actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Product updated successfully", updated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid product id")
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())

	if err := h.service.Delete(r.Context(), id, actor.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OKMessage(w, http.StatusOK, "Product deleted successfully", nil)
}
