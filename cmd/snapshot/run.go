package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grocery-analytics/internal/apperror"
	"grocery-analytics/internal/config"
	"grocery-analytics/internal/export"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"
	"grocery-analytics/internal/repository"
	"grocery-analytics/internal/services"

	"github.com/spf13/cobra"
)

// Фабричные функции (подменяемые в тестах).
var (
	loadConfig     = config.Load
	openRepository = repository.Open
)

type snapshotOptions struct {
	rng    string
	format string
	now    string
	source string
	file   string
}

// loadEnvironment читает конфигурацию и создает логгер, пишущий в stderr,
// чтобы не смешивать логи с выводом команды.
func loadEnvironment(cmd *cobra.Command, opts *snapshotOptions) (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.source != "" {
		cfg.DataSource.Kind = strings.ToLower(opts.source)
	}
	if opts.file != "" {
		cfg.DataSource.File = opts.file
	}

	cfg.Logger.File = ""
	log := logger.New(&cfg.Logger)
	log.SetOutput(cmd.ErrOrStderr())
	return cfg, log, nil
}

func runSnapshot(cmd *cobra.Command, opts *snapshotOptions) error {
	cfg, log, err := loadEnvironment(cmd, opts)
	if err != nil {
		return err
	}

	format := strings.ToLower(opts.format)
	if format != "json" && format != "csv" {
		return apperror.Validation("format must be json or csv", nil)
	}

	source, db, err := openRepository(&cfg.DataSource, &cfg.Database, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	dashboard := services.NewDashboardService(source, log, &cfg.Analytics)

	rng, err := models.ParseReportRange(opts.rng, dashboard.DefaultRange())
	if err != nil {
		return apperror.Validation(err.Error(), err)
	}

	now := dashboard.Now()
	if opts.now != "" {
		parsed, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return apperror.Validation("now must be an RFC3339 timestamp", err)
		}
		now = parsed
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	snapshot, err := dashboard.Compute(ctx, now, rng)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "csv" {
		return export.WriteDailySalesCSV(out, snapshot.DailySales)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshot)
}
