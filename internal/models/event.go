package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события изменения данных
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeProductUpdated     EventType = "product.updated"
	EventTypeFavoriteChanged    EventType = "favorite.changed"
)

// DataChangeEvents - события, после которых кешированные снимки устаревают.
var DataChangeEvents = []EventType{
	EventTypeOrderCreated,
	EventTypeOrderStatusChanged,
	EventTypeProductUpdated,
	EventTypeFavoriteChanged,
}

// Event представляет событие из Kafka
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}
