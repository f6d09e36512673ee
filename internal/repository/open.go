package repository

import (
	"fmt"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/database"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/services"
)

var connectDB = database.Connect

// Open создает источник данных по настройке DataSource.
// Для postgres возвращается и открытый пул, его закрывает вызывающий; для file пул nil.
func Open(dsCfg *config.DataSourceConfig, dbCfg *config.DatabaseConfig, log *logger.Logger) (services.Repository, *database.DB, error) {
	switch dsCfg.Kind {
	case "", config.DataSourcePostgres:
		db, err := connectDB(dbCfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres source: %w", err)
		}
		return NewPostgres(db), db, nil
	case config.DataSourceFile:
		if dsCfg.File == "" {
			return nil, nil, fmt.Errorf("data source file is required for kind %q", dsCfg.Kind)
		}
		log.WithField("file", dsCfg.File).Info("Reading collections from dump file")
		return NewFile(dsCfg.File), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", dsCfg.Kind)
	}
}
