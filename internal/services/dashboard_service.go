package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grocery-analytics/internal/analytics"
	"grocery-analytics/internal/apperror"
	"grocery-analytics/internal/config"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"

	"golang.org/x/sync/errgroup"
)

const defaultFetchTimeout = 15 * time.Second

// Repository - контракт чтения сырых коллекций магазина.
type Repository interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrderItems(ctx context.Context) ([]models.OrderItem, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
}

// CycleSource - источник, умеющий зафиксировать одно состояние данных на цикл пересчета.
// Все шесть чтений цикла идут через возвращенный Repository.
type CycleSource interface {
	Repository
	BeginCycle(ctx context.Context) (Repository, error)
}

// DashboardService читает коллекции параллельно и собирает снимок дашборда.
// Между вызовами сервис состояния не хранит.
type DashboardService struct {
	repo         Repository
	log          *logger.Logger
	fetchTimeout time.Duration
	location     *time.Location
	defaultRange models.ReportRange
}

// NewDashboardService создает сервис дашборда.
func NewDashboardService(repo Repository, log *logger.Logger, cfg *config.AnalyticsConfig) *DashboardService {
	s := &DashboardService{
		repo:         repo,
		log:          log,
		fetchTimeout: defaultFetchTimeout,
		location:     time.Local,
		defaultRange: models.RangeWeek,
	}

	if cfg != nil {
		if cfg.FetchTimeoutSeconds > 0 {
			s.fetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
		}
		if loc, err := cfg.Location(); err != nil {
			log.WithError(err).Warn("Falling back to local time zone for dashboard")
		} else {
			s.location = loc
		}
		if rng, err := models.ParseReportRange(cfg.DefaultRange, models.RangeWeek); err == nil {
			s.defaultRange = rng
		}
	}

	return s
}

// DefaultRange возвращает период по умолчанию.
func (s *DashboardService) DefaultRange() models.ReportRange {
	return s.defaultRange
}

// Now возвращает текущий момент в часовом поясе дашборда.
func (s *DashboardService) Now() time.Time {
	return time.Now().In(s.location)
}

// Compute выполняет полный цикл: чтение всех коллекций и расчет снимка.
// Ошибка любого чтения прерывает цикл целиком.
func (s *DashboardService) Compute(ctx context.Context, now time.Time, rng models.ReportRange) (*models.Snapshot, error) {
	started := time.Now()

	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := analytics.Compute(data, now.In(s.location), rng)

	s.log.WithFields(map[string]interface{}{
		"range":       snapshot.Range,
		"orders":      len(data.Orders),
		"order_items": len(data.OrderItems),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("Dashboard snapshot computed")

	return snapshot, nil
}

// ComputeAll читает коллекции один раз и считает снимки для всех периодов.
func (s *DashboardService) ComputeAll(ctx context.Context, now time.Time) ([]*models.Snapshot, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	ranges := []models.ReportRange{models.RangeWeek, models.RangeMonth, models.RangeYear}
	snapshots := make([]*models.Snapshot, 0, len(ranges))
	for _, rng := range ranges {
		snapshots = append(snapshots, analytics.Compute(data, now.In(s.location), rng))
	}
	return snapshots, nil
}

// fetch запускает все чтения одновременно и ждет их завершения.
func (s *DashboardService) fetch(ctx context.Context) (*analytics.Dataset, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	data, err := s.read(fetchCtx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("dashboard computation cancelled: %w", ctx.Err())
		}
		s.log.WithError(err).Warn("Dashboard fetch failed")
		return nil, apperror.Unavailable("dashboard data is temporarily unavailable", err)
	}

	return data, nil
}

func (s *DashboardService) read(ctx context.Context) (*analytics.Dataset, error) {
	repo := s.repo
	if source, ok := s.repo.(CycleSource); ok {
		cycle, err := source.BeginCycle(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to begin fetch cycle: %w", err)
		}
		repo = cycle
	}

	data := &analytics.Dataset{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		orders, err := repo.ListOrders(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch orders: %w", err)
		}
		data.Orders = orders
		return nil
	})
	g.Go(func() error {
		items, err := repo.ListOrderItems(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch order items: %w", err)
		}
		data.OrderItems = items
		return nil
	})
	g.Go(func() error {
		products, err := repo.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch products: %w", err)
		}
		data.Products = products
		return nil
	})
	g.Go(func() error {
		categories, err := repo.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch categories: %w", err)
		}
		data.Categories = categories
		return nil
	})
	g.Go(func() error {
		users, err := repo.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch users: %w", err)
		}
		data.Users = users
		return nil
	})
	g.Go(func() error {
		favorites, err := repo.ListFavorites(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch favorites: %w", err)
		}
		data.Favorites = favorites
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
