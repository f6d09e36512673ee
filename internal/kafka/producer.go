package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует события изменения данных магазина
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронного producer-а
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Net.DialTimeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")
	return &Producer{producer: producer, log: log, topics: &cfg.Topics}, nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishDataChanged публикует событие в топик, соответствующий его типу.
func (p *Producer) PublishDataChanged(eventType models.EventType, data interface{}) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}
		event.Data = raw
	}

	topic, err := p.topicFor(eventType)
	if err != nil {
		return err
	}
	return p.publishEvent(topic, event)
}

func (p *Producer) topicFor(eventType models.EventType) (string, error) {
	var topic string
	switch eventType {
	case models.EventTypeOrderCreated, models.EventTypeOrderStatusChanged:
		topic = p.topics.Orders
	case models.EventTypeProductUpdated:
		topic = p.topics.Catalog
	case models.EventTypeFavoriteChanged:
		topic = p.topics.Favorites
	default:
		return "", fmt.Errorf("unknown event type %q", eventType)
	}
	if topic == "" {
		return "", fmt.Errorf("no topic configured for %s", eventType)
	}
	return topic, nil
}

func (p *Producer) publishEvent(topic string, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event to %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":      topic,
		"event_type": event.Type,
		"partition":  partition,
		"offset":     offset,
	}).Debug("Event published")
	return nil
}
