package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"
	"grocery-analytics/internal/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redis.Connect(&config.RedisConfig{Host: "127.0.0.1", Port: mr.Port(), DB: 0}, newTestLogger())
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// memoryRepository отдает фиксированные коллекции и умеет имитировать сбои и задержки.
type memoryRepository struct {
	orders     []models.Order
	items      []models.OrderItem
	products   []models.Product
	categories []models.Category
	users      []models.User
	favorites  []models.Favorite

	failOn string
	delay  time.Duration
	gate   chan struct{}

	// barrier держит каждое чтение, пока не стартуют все остальные.
	barrier *sync.WaitGroup

	mu    sync.Mutex
	calls map[string]int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{calls: make(map[string]int)}
}

func (m *memoryRepository) call(ctx context.Context, name string) error {
	m.mu.Lock()
	m.calls[name]++
	m.mu.Unlock()

	if m.barrier != nil {
		m.barrier.Done()
		joined := make(chan struct{})
		go func() {
			m.barrier.Wait()
			close(joined)
		}()
		select {
		case <-joined:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.failOn == name {
		return errors.New(name + " unavailable")
	}
	return nil
}

func (m *memoryRepository) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *memoryRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	if err := m.call(ctx, "orders"); err != nil {
		return nil, err
	}
	return m.orders, nil
}

func (m *memoryRepository) ListOrderItems(ctx context.Context) ([]models.OrderItem, error) {
	if err := m.call(ctx, "order_items"); err != nil {
		return nil, err
	}
	return m.items, nil
}

func (m *memoryRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	if err := m.call(ctx, "products"); err != nil {
		return nil, err
	}
	return m.products, nil
}

func (m *memoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := m.call(ctx, "categories"); err != nil {
		return nil, err
	}
	return m.categories, nil
}

func (m *memoryRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := m.call(ctx, "users"); err != nil {
		return nil, err
	}
	return m.users, nil
}

func (m *memoryRepository) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	if err := m.call(ctx, "favorites"); err != nil {
		return nil, err
	}
	return m.favorites, nil
}

// cycleRepository отдает на каждый цикл свой memoryRepository и считает начатые циклы.
type cycleRepository struct {
	*memoryRepository
	beginErr error

	mu     sync.Mutex
	cycles int
}

func (c *cycleRepository) BeginCycle(ctx context.Context) (Repository, error) {
	c.mu.Lock()
	c.cycles++
	c.mu.Unlock()
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return c.memoryRepository, nil
}

func (c *cycleRepository) cycleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycles
}

var testNow = time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC)

func seededRepository() *memoryRepository {
	repo := newMemoryRepository()
	ref := &models.ProductRef{ID: uuid.New(), Name: "Milk"}
	order := models.Order{
		ID:            uuid.New(),
		TotalAmount:   decimal.RequireFromString("100"),
		Status:        models.OrderStatusDelivered,
		PaymentMethod: models.PaymentMethodCard,
		CreatedAt:     time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	repo.orders = []models.Order{order}
	repo.items = []models.OrderItem{{OrderID: order.ID, Quantity: 2, Price: decimal.RequireFromString("50"), Product: ref}}
	repo.products = []models.Product{{ID: ref.ID, Name: ref.Name, Stock: 20}}
	repo.users = []models.User{{ID: uuid.New(), CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	repo.favorites = []models.Favorite{{ID: uuid.New(), UserID: uuid.New(), Product: ref}}
	return repo
}

func utcAnalyticsConfig() *config.AnalyticsConfig {
	return &config.AnalyticsConfig{TimeZone: "UTC", FetchTimeoutSeconds: 5, CacheTTLMinutes: 1, DefaultRange: "week"}
}
