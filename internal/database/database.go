package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/logger"

	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// DB оборачивает пул соединений с PostgreSQL
type DB struct {
	*sql.DB
}

// Connect открывает пул и проверяет соединение
func Connect(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"host": cfg.Host,
		"db":   cfg.DBName,
	}).Info("Successfully connected to database")

	return &DB{DB: sqlDB}, nil
}

// Health проверяет доступность базы
func (db *DB) Health() error {
	if db == nil || db.DB == nil {
		return errors.New("database is not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return db.PingContext(ctx)
}

// Close закрывает пул соединений
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}
