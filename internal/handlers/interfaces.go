package handlers

import (
	"context"
	"time"

	"grocery-analytics/internal/models"
	"grocery-analytics/internal/services"
)

// ----- Dashboard -----

// DashboardClock отдает текущий момент и период по умолчанию в часовом поясе дашборда.
type DashboardClock interface {
	Now() time.Time
	DefaultRange() models.ReportRange
}

// SessionProvider выдает сессию пересчета по ключу клиента.
type SessionProvider interface {
	Get(key string) *services.Session
}

// SnapshotCache хранит последние снимки по периодам.
type SnapshotCache interface {
	Get(ctx context.Context, rng models.ReportRange) (*models.Snapshot, bool)
	Store(ctx context.Context, snapshot *models.Snapshot)
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}

// BrokerChecker проверяет доступность брокеров Kafka.
type BrokerChecker func(brokers []string) error
