package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Redis      RedisConfig      `json:"redis"`
	Kafka      KafkaConfig      `json:"kafka"`
	Logger     LoggerConfig     `json:"logger"`
	Analytics  AnalyticsConfig  `json:"analytics"`
	DataSource DataSourceConfig `json:"data_source"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// DSN собирает строку подключения для lib/pq.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Enabled bool     `json:"enabled"`
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет топики с событиями изменения данных магазина
type Topics struct {
	Orders    string `json:"orders"`
	Catalog   string `json:"catalog"`
	Favorites string `json:"favorites"`
}

// List возвращает непустые топики.
func (t Topics) List() []string {
	var topics []string
	for _, topic := range []string{t.Orders, t.Catalog, t.Favorites} {
		if topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// AnalyticsConfig хранит настройки дашборда
type AnalyticsConfig struct {
	DefaultRange          string `json:"default_range"`
	TimeZone              string `json:"time_zone"`
	FetchTimeoutSeconds   int    `json:"fetch_timeout_seconds"`
	CacheTTLMinutes       int    `json:"cache_ttl_minutes"`
	SessionIdleMinutes    int    `json:"session_idle_minutes"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// Location возвращает часовой пояс, в котором считаются календарные дни.
func (c AnalyticsConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" || strings.EqualFold(c.TimeZone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Источники сырых данных.
const (
	DataSourcePostgres = "postgres"
	DataSourceFile     = "file"
)

// DataSourceConfig описывает, откуда читаются коллекции
type DataSourceConfig struct {
	Kind string `json:"kind"` // postgres | file
	File string `json:"file"` // путь к JSON-выгрузке для kind=file
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
}

// Load загружает конфигурацию из переменных окружения.
// Если задан ENV_FILE, сначала читается этот файл; уже заданные переменные не перезаписываются.
func Load() (*Config, error) {
	if path := getEnv("ENV_FILE", ""); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "grocery_user"),
			Password: getEnv("DB_PASSWORD", "grocery_pass"),
			DBName:   getEnv("DB_NAME", "grocery"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupID: getEnv("KAFKA_GROUP_ID", "grocery-analytics"),
			Topics: Topics{
				Orders:    getEnv("KAFKA_TOPIC_ORDERS", "orders"),
				Catalog:   getEnv("KAFKA_TOPIC_CATALOG", "catalog"),
				Favorites: getEnv("KAFKA_TOPIC_FAVORITES", "favorites"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Analytics: AnalyticsConfig{
			DefaultRange:          getEnv("ANALYTICS_DEFAULT_RANGE", "week"),
			TimeZone:              getEnv("ANALYTICS_TIME_ZONE", "Local"),
			FetchTimeoutSeconds:   getEnvAsInt("ANALYTICS_FETCH_TIMEOUT_SECONDS", 15),
			CacheTTLMinutes:       getEnvAsInt("ANALYTICS_CACHE_TTL_MINUTES", 5),
			SessionIdleMinutes:    getEnvAsInt("ANALYTICS_SESSION_IDLE_MINUTES", 30),
			RequestTimeoutSeconds: getEnvAsInt("ANALYTICS_REQUEST_TIMEOUT_SECONDS", 20),
		},
		DataSource: DataSourceConfig{
			Kind: strings.ToLower(getEnv("DATA_SOURCE", DataSourcePostgres)),
			File: getEnv("DATA_SOURCE_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
	}, nil
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}
