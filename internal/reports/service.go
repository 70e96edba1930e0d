package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// RepositoryPort abstracts the aggregate queries for the service.
type RepositoryPort interface {
	TodaySummary(ctx context.Context, now time.Time) (float64, int, error)
	MonthRevenue(ctx context.Context, now time.Time) (float64, error)
	CatalogCounts(ctx context.Context) (int, int, error)
	PendingPurchaseCount(ctx context.Context) (int, error)
	RecentSales(ctx context.Context, limit int) ([]RecentSale, error)
	Revenue(ctx context.Context, rng DateRange) ([]RevenueRow, error)
	TopProducts(ctx context.Context, rng DateRange, limit int) ([]ProductRow, error)
	Purchases(ctx context.Context, rng DateRange) ([]PurchaseRow, error)
}

// Service builds reports. Results are cached in redis for a short TTL and
// concurrent identical requests are collapsed through singleflight so a
// dashboard refresh storm runs each query set once.
type Service struct {
	repo     RepositoryPort
	cache    *redis.Client
	logger   *slog.Logger
	cacheTTL time.Duration
	group    singleflight.Group
	now      func() time.Time
}

// NewService builds Service. cache may be nil to disable caching.
func NewService(repo RepositoryPort, cache *redis.Client, logger *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, cache: cache, logger: logger, cacheTTL: cacheTTL, now: time.Now}
}

// GetDashboard assembles the dashboard summary. The independent aggregates
// run concurrently.
func (s *Service) GetDashboard(ctx context.Context) (Dashboard, error) {
	return cached(ctx, s, "reports:dashboard", func(ctx context.Context) (Dashboard, error) {
		var d Dashboard
		now := s.now()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			revenue, count, err := s.repo.TodaySummary(ctx, now)
			d.TodayRevenue, d.TodayTransactions = revenue, count
			return err
		})
		g.Go(func() error {
			revenue, err := s.repo.MonthRevenue(ctx, now)
			d.MonthRevenue = revenue
			return err
		})
		g.Go(func() error {
			products, lowStock, err := s.repo.CatalogCounts(ctx)
			d.ActiveProducts, d.LowStockCount = products, lowStock
			return err
		})
		g.Go(func() error {
			count, err := s.repo.PendingPurchaseCount(ctx)
			d.PendingPurchases = count
			return err
		})
		g.Go(func() error {
			recent, err := s.repo.RecentSales(ctx, 5)
			d.RecentSales = recent
			return err
		})
		if err := g.Wait(); err != nil {
			return Dashboard{}, err
		}
		return d, nil
	})
}

// GetRevenue returns the per-day revenue report.
func (s *Service) GetRevenue(ctx context.Context, rng DateRange) ([]RevenueRow, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reports:revenue:%s:%s", rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	return cached(ctx, s, key, func(ctx context.Context) ([]RevenueRow, error) {
		return s.repo.Revenue(ctx, rng)
	})
}

// GetTopProducts returns the top sellers report.
func (s *Service) GetTopProducts(ctx context.Context, rng DateRange) ([]ProductRow, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reports:products:%s:%s", rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	return cached(ctx, s, key, func(ctx context.Context) ([]ProductRow, error) {
		return s.repo.TopProducts(ctx, rng, 20)
	})
}

// GetPurchases returns the per-supplier purchases report.
func (s *Service) GetPurchases(ctx context.Context, rng DateRange) ([]PurchaseRow, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reports:purchases:%s:%s", rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	return cached(ctx, s, key, func(ctx context.Context) ([]PurchaseRow, error) {
		return s.repo.Purchases(ctx, rng)
	})
}

// cached wraps build with the redis cache and singleflight. Cache failures
// degrade to running the query; they never fail the report.
func cached[T any](ctx context.Context, s *Service, key string, build func(context.Context) (T, error)) (T, error) {
	var zero T

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var out T
			if json.Unmarshal(raw, &out) == nil {
				return out, nil
			}
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		out, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if payload, err := json.Marshal(out); err == nil {
				if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil && s.logger != nil {
					s.logger.Warn("report cache write failed", slog.String("key", key), slog.Any("error", err))
				}
			}
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

func validateRange(rng DateRange) error {
	if rng.From.IsZero() || rng.To.IsZero() {
		return fmt.Errorf("%w: start date and end date are required", shared.ErrValidation)
	}
	if rng.To.Before(rng.From) {
		return fmt.Errorf("%w: end date before start date", shared.ErrValidation)
	}
	return nil
}
