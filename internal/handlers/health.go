package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IBM/sarama"
)

const statusDisabled = "disabled"

// HealthHandler представляет обработчик для проверки здоровья системы.
// Неподключенные компоненты (nil) считаются выключенными и не влияют на статус.
type HealthHandler struct {
	db           DBHealth
	redisClient  RedisHealth
	kafkaBrokers []string
	checkKafka   BrokerChecker
}

// NewHealthHandler создает новый обработчик здоровья
func NewHealthHandler(db DBHealth, redisClient RedisHealth, kafkaBrokers []string, checker BrokerChecker) *HealthHandler {
	return &HealthHandler{
		db:           db,
		redisClient:  redisClient,
		kafkaBrokers: kafkaBrokers,
		checkKafka:   checker,
	}
}

// HealthResponse представляет ответ проверки здоровья
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Version  string            `json:"version"`
	Uptime   string            `json:"uptime"`
}

var startTime = time.Now()

// Version выставляется при сборке через -ldflags.
var Version = "1.0.0"

// Health проверяет состояние всех компонентов системы
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	overallStatus := "healthy"

	for name, err := range h.check(ctx) {
		switch {
		case errors.Is(err, errDisabled):
			services[name] = statusDisabled
		case err != nil:
			services[name] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		default:
			services[name] = "healthy"
		}
	}

	response := HealthResponse{
		Status:   overallStatus,
		Services: services,
		Version:  Version,
		Uptime:   time.Since(startTime).String(),
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, statusCode, response)
}

// Readiness проверяет готовность приложения к обработке запросов
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Health(); err != nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, "Database not ready")
			return
		}
	}

	if h.redisClient != nil {
		if err := h.redisClient.Health(ctx); err != nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, "Redis not ready")
			return
		}
	}

	if h.checkKafka != nil {
		if err := h.checkKafka(h.kafkaBrokers); err != nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, "Kafka not ready")
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Liveness проверяет, что приложение живо
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": time.Since(startTime).String(),
	})
}

var errDisabled = errors.New("component disabled")

func (h *HealthHandler) check(ctx context.Context) map[string]error {
	results := map[string]error{
		"database": errDisabled,
		"redis":    errDisabled,
		"kafka":    errDisabled,
	}
	if h.db != nil {
		results["database"] = h.db.Health()
	}
	if h.redisClient != nil {
		results["redis"] = h.redisClient.Health(ctx)
	}
	if h.checkKafka != nil {
		results["kafka"] = h.checkKafka(h.kafkaBrokers)
	}
	return results
}

// CheckKafkaHealth проверяет доступность Kafka брокеров
func CheckKafkaHealth(brokers []string) error {
	return checkKafkaHealth(brokers)
}

func checkKafkaHealth(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers configured")
	}

	cfg := sarama.NewConfig()
	cfg.Net.DialTimeout = 3 * time.Second
	cfg.Net.ReadTimeout = 5 * time.Second
	cfg.Net.WriteTimeout = 5 * time.Second
	cfg.Metadata.Retry.Max = 1
	cfg.Metadata.Retry.Backoff = 500 * time.Millisecond

	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	return nil
}
