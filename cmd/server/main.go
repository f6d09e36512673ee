package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/database"
	"grocery-analytics/internal/handlers"
	"grocery-analytics/internal/kafka"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/redis"
	"grocery-analytics/internal/repository"
	"grocery-analytics/internal/services"

	"github.com/shopspring/decimal"
)

const warmupTimeout = time.Minute

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	openRepository   = repository.Open
	redisConnect     = redis.Connect
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB
	redis     *redis.Client
	consumer  *kafka.Consumer
	dashboard *services.DashboardService
	cache     *services.SnapshotCache
	mux       *http.ServeMux
	server    *http.Server
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting grocery analytics server...")

	go app.warmCache()

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	app.shutdown(ctx)
	app.log.Info("Server exited")
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := newLogger(&cfg.Logger)

	source, db, err := openRepository(&cfg.DataSource, &cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("data source: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without snapshot cache and rate limiting")
	}

	dashboard := services.NewDashboardService(source, log, &cfg.Analytics)
	cache := services.NewSnapshotCache(redisClient, log, &cfg.Analytics)
	sessions := services.NewSessionRegistry(dashboard, time.Duration(cfg.Analytics.SessionIdleMinutes)*time.Minute)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	app := &application{
		cfg:       cfg,
		log:       log,
		db:        db,
		redis:     redisClient,
		dashboard: dashboard,
		cache:     cache,
	}

	var checker handlers.BrokerChecker
	if cfg.Kafka.Enabled {
		consumer, err := newKafkaConsumer(&cfg.Kafka, log)
		if err != nil {
			app.closeStores()
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		kafka.RegisterInvalidation(consumer, cache, log)
		if err := consumer.Start(); err != nil {
			_ = consumer.Stop()
			app.closeStores()
			return nil, fmt.Errorf("kafka consumer start: %w", err)
		}
		app.consumer = consumer
		checker = kafkaHealthCheck
	}

	// Интерфейсы получают nil только явно, чтобы выключенный компонент не выглядел подключенным.
	var dbHealth handlers.DBHealth
	if db != nil {
		dbHealth = db
	}
	var redisHealth handlers.RedisHealth
	if redisClient != nil {
		redisHealth = redisClient
	}

	analyticsHandler := handlers.NewAnalyticsHandler(dashboard, sessions, cache, log, &cfg.Analytics)
	healthHandler := handlers.NewHealthHandler(dbHealth, redisHealth, cfg.Kafka.Brokers, checker)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	app.mux = setupRoutes(analyticsHandler, healthHandler, rateLimitHandler, rateLimiter, log)
	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return app, nil
}

// warmCache считает снимки всех периодов одним чтением и кладет их в кеш.
func (a *application) warmCache() {
	if !a.cache.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
	defer cancel()

	snapshots, err := a.dashboard.ComputeAll(ctx, a.dashboard.Now())
	if err != nil {
		a.log.WithError(err).Warn("Dashboard cache warm-up failed")
		return
	}
	a.cache.StoreAll(ctx, snapshots)
	a.log.WithField("snapshots", len(snapshots)).Info("Dashboard cache warmed up")
}

func (a *application) shutdown(ctx context.Context) {
	if a.consumer != nil {
		if err := a.consumer.Stop(); err != nil {
			a.log.WithError(err).Warn("Failed to stop Kafka consumer")
		}
	}
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.log.WithError(err).Error("Server forced to shutdown")
		}
	}
	a.closeStores()
}

func (a *application) closeStores() {
	_ = a.redis.Close()
	if a.db != nil {
		_ = a.db.Close()
	}
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(analyticsHandler *handlers.AnalyticsHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter *services.RateLimiter, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(scope string, h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, scope, h))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Dashboard endpoints
	mux.HandleFunc("/api/analytics/dashboard", applyAPI(handlers.RateScopeDashboard, analyticsHandler.GetDashboard))
	mux.HandleFunc("/api/analytics/dashboard/cancel", applyAPI(handlers.RateScopeCancel, analyticsHandler.CancelDashboard))

	// Статус окна не расходует лимит
	mux.HandleFunc("/api/rate-limit/status", corsMiddleware(rateLimitHandler.Status))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "Route not found")
	})

	return mux
}

func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+handlers.SessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", handlers.StaleHeader+", "+handlers.SourceHeader+", "+handlers.DegradedHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
