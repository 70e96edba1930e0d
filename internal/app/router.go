package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/minimart-pos/minimart-pos/internal/auth"
	"github.com/minimart-pos/minimart-pos/internal/catalog/categories"
	"github.com/minimart-pos/minimart-pos/internal/catalog/products"
	"github.com/minimart-pos/minimart-pos/internal/catalog/suppliers"
	"github.com/minimart-pos/minimart-pos/internal/discounts"
	"github.com/minimart-pos/minimart-pos/internal/inventory"
	"github.com/minimart-pos/minimart-pos/internal/purchasing"
	"github.com/minimart-pos/minimart-pos/internal/reports"
	"github.com/minimart-pos/minimart-pos/internal/sales"
	"github.com/minimart-pos/minimart-pos/internal/users"
	"github.com/minimart-pos/minimart-pos/jobs"
	"github.com/minimart-pos/minimart-pos/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Tokens auth.TokenPort

	AuthHandler       *auth.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	SuppliersHandler  *suppliers.Handler
	InventoryHandler  *inventory.Handler
	SalesHandler      *sales.Handler
	PurchasingHandler *purchasing.Handler
	DiscountsHandler  *discounts.Handler
	UsersHandler      *users.Handler
	ReportsHandler    *reports.Handler
	InvoiceHandler    *report.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate(params.Tokens))
				params.AuthHandler.MountProtectedRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(params.Tokens))

			r.Route("/products", params.ProductsHandler.MountRoutes)
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
			r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			r.Route("/inventory", params.InventoryHandler.MountRoutes)
			r.Route("/sales", params.SalesHandler.MountRoutes)
			r.Route("/purchases", params.PurchasingHandler.MountRoutes)
			r.Route("/discounts", params.DiscountsHandler.MountRoutes)
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/reports", params.ReportsHandler.MountRoutes)
			if params.InvoiceHandler != nil {
				params.InvoiceHandler.MountRoutes(r)
			}
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
