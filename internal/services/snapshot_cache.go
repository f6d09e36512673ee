package services

import (
	"context"
	"errors"
	"time"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"
	"grocery-analytics/internal/redis"
)

const defaultSnapshotTTL = 5 * time.Minute

type snapshotStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetMultiple(ctx context.Context, values map[string]interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// SnapshotCache хранит последний снимок каждого периода в Redis.
// Ошибки кеша логируются и не прерывают запросы.
type SnapshotCache struct {
	store snapshotStore
	log   *logger.Logger
	ttl   time.Duration
}

// NewSnapshotCache создает кеш; без клиента Redis кеш выключен.
func NewSnapshotCache(client *redis.Client, log *logger.Logger, cfg *config.AnalyticsConfig) *SnapshotCache {
	ttl := defaultSnapshotTTL
	if cfg != nil && cfg.CacheTTLMinutes > 0 {
		ttl = time.Duration(cfg.CacheTTLMinutes) * time.Minute
	}

	c := &SnapshotCache{log: log, ttl: ttl}
	if client != nil {
		c.store = client
	}
	return c
}

// Enabled сообщает, подключен ли кеш.
func (c *SnapshotCache) Enabled() bool {
	return c != nil && c.store != nil
}

// Get возвращает снимок периода, если он есть в кеше.
func (c *SnapshotCache) Get(ctx context.Context, rng models.ReportRange) (*models.Snapshot, bool) {
	if !c.Enabled() {
		return nil, false
	}

	var snapshot models.Snapshot
	if err := c.store.Get(ctx, snapshotKey(rng), &snapshot); err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			c.log.WithError(err).WithField("range", rng).Warn("Failed to read cached snapshot")
		}
		return nil, false
	}
	return &snapshot, true
}

// Store сохраняет снимок под ключом его периода.
func (c *SnapshotCache) Store(ctx context.Context, snapshot *models.Snapshot) {
	if !c.Enabled() || snapshot == nil {
		return
	}
	if err := c.store.Set(ctx, snapshotKey(snapshot.Range), snapshot, c.ttl); err != nil {
		c.log.WithError(err).WithField("range", snapshot.Range).Warn("Failed to cache snapshot")
	}
}

// StoreAll сохраняет несколько снимков одним pipeline.
func (c *SnapshotCache) StoreAll(ctx context.Context, snapshots []*models.Snapshot) {
	if !c.Enabled() || len(snapshots) == 0 {
		return
	}

	values := make(map[string]interface{}, len(snapshots))
	for _, snapshot := range snapshots {
		if snapshot != nil {
			values[snapshotKey(snapshot.Range)] = snapshot
		}
	}
	if err := c.store.SetMultiple(ctx, values, c.ttl); err != nil {
		c.log.WithError(err).WithField("count", len(values)).Warn("Failed to cache snapshots")
	}
}

// Invalidate удаляет все закешированные снимки.
func (c *SnapshotCache) Invalidate(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	return c.store.DeleteByPrefix(ctx, redis.KeyPrefixDashboard)
}

func snapshotKey(rng models.ReportRange) string {
	return redis.GenerateKey(redis.KeyPrefixDashboard, string(rng))
}
