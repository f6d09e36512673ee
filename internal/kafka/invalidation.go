package kafka

import (
	"context"

	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"
)

// Invalidator сбрасывает закешированные снимки дашборда.
type Invalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

// RegisterInvalidation подписывает сброс кеша на все события изменения данных.
func RegisterInvalidation(c *Consumer, inv Invalidator, log *logger.Logger) {
	handler := func(ctx context.Context, event *models.Event) error {
		removed, err := inv.Invalidate(ctx)
		if err != nil {
			return err
		}
		log.WithField("event_type", event.Type).WithField("removed", removed).Info("Dashboard cache invalidated")
		return nil
	}

	for _, eventType := range models.DataChangeEvents {
		c.RegisterHandler(eventType, handler)
	}
}
