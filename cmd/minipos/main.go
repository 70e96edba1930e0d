package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/minimart-pos/minimart-pos/internal/app"
	"github.com/minimart-pos/minimart-pos/internal/auth"
	"github.com/minimart-pos/minimart-pos/internal/catalog/categories"
	"github.com/minimart-pos/minimart-pos/internal/catalog/products"
	"github.com/minimart-pos/minimart-pos/internal/catalog/suppliers"
	"github.com/minimart-pos/minimart-pos/internal/discounts"
	"github.com/minimart-pos/minimart-pos/internal/inventory"
	"github.com/minimart-pos/minimart-pos/internal/platform/cache"
	"github.com/minimart-pos/minimart-pos/internal/platform/db"
	"github.com/minimart-pos/minimart-pos/internal/purchasing"
	"github.com/minimart-pos/minimart-pos/internal/rbac"
	"github.com/minimart-pos/minimart-pos/internal/reports"
	"github.com/minimart-pos/minimart-pos/internal/sales"
	"github.com/minimart-pos/minimart-pos/internal/shared"
	"github.com/minimart-pos/minimart-pos/internal/users"
	"github.com/minimart-pos/minimart-pos/jobs"
	"github.com/minimart-pos/minimart-pos/report"
)

// receiptQueue adapts the asynq client to the checkout service's enqueue port.
type receiptQueue struct {
	client *jobs.Client
}

func (q receiptQueue) EnqueueReceipt(ctx context.Context, mail sales.ReceiptMail) error {
	_, err := q.client.EnqueueReceiptEmail(ctx, jobs.ReceiptEmailPayload{
		SaleID:        mail.SaleID,
		InvoiceNumber: mail.InvoiceNumber,
		CustomerName:  mail.CustomerName,
		CustomerEmail: mail.CustomerEmail,
		TotalAmount:   mail.TotalAmount,
	})
	return err
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	activity := shared.NewActivityLogger(pool)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	authService := auth.NewService(usersService, tokenStore, activity)
	authHandler := auth.NewHandler(logger, authService, rbacMiddleware)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, activity)
	productsHandler := products.NewHandler(logger, productsService, rbacMiddleware)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService, rbacMiddleware)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService, rbacMiddleware)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, activity)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rbacMiddleware)

	discountsRepo := discounts.NewRepository(pool)
	discountsService := discounts.NewService(discountsRepo)
	discountsHandler := discounts.NewHandler(logger, discountsService, rbacMiddleware)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, discountsService, receiptQueue{client: jobClient}, activity)
	salesHandler := sales.NewHandler(logger, salesService, rbacMiddleware)

	purchasingRepo := purchasing.NewRepository(pool)
	purchasingService := purchasing.NewService(purchasingRepo, activity)
	purchasingHandler := purchasing.NewHandler(logger, purchasingService, rbacMiddleware)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, redisClient, logger, cfg.ReportCacheTTL)
	reportsHandler := reports.NewHandler(logger, reportsService, rbacMiddleware)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	invoiceHandler := report.NewHandler(logger, pdfClient, salesService, activity)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Tokens:            tokenStore,
		AuthHandler:       authHandler,
		ProductsHandler:   productsHandler,
		CategoriesHandler: categoriesHandler,
		SuppliersHandler:  suppliersHandler,
		InventoryHandler:  inventoryHandler,
		SalesHandler:      salesHandler,
		PurchasingHandler: purchasingHandler,
		DiscountsHandler:  discountsHandler,
		UsersHandler:      usersHandler,
		ReportsHandler:    reportsHandler,
		InvoiceHandler:    invoiceHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
