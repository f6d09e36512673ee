package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grocery-analytics/internal/apperror"
	"grocery-analytics/internal/config"
	"grocery-analytics/internal/export"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/models"
	"grocery-analytics/internal/services"
)

const (
	defaultRequestTimeout = 30 * time.Second

	// SessionHeader позволяет клиенту явно задать ключ своей сессии пересчета.
	SessionHeader = "X-Dashboard-Session"
	// StaleHeader помечает ответ, собранный из предыдущего снимка.
	StaleHeader = "X-Snapshot-Stale"
	// SourceHeader сообщает, откуда взят снимок: cache или compute.
	SourceHeader = "X-Snapshot-Source"
)

// AnalyticsHandler отдает снимок дашборда.
type AnalyticsHandler struct {
	clock    DashboardClock
	sessions SessionProvider
	cache    SnapshotCache
	log      *logger.Logger
	cfg      *config.AnalyticsConfig
}

// NewAnalyticsHandler создает новый обработчик аналитики.
func NewAnalyticsHandler(clock DashboardClock, sessions SessionProvider, cache SnapshotCache, log *logger.Logger, cfg *config.AnalyticsConfig) *AnalyticsHandler {
	return &AnalyticsHandler{
		clock:    clock,
		sessions: sessions,
		cache:    cache,
		log:      log,
		cfg:      cfg,
	}
}

type dashboardQuery struct {
	rng     models.ReportRange
	refresh bool
	format  string
}

// GetDashboard возвращает снимок за выбранный период в JSON или дневной ряд в CSV.
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query, err := h.parseQuery(r)
	if err != nil {
		writeServiceError(w, h.log, err, "Invalid dashboard query")
		return
	}

	if !query.refresh {
		if snapshot, ok := h.cache.Get(r.Context(), query.rng); ok {
			w.Header().Set(SourceHeader, "cache")
			h.writeSnapshot(w, snapshot, query.format)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout())
	defer cancel()

	session := h.sessions.Get(sessionKey(r))
	snapshot, err := session.Recompute(ctx, h.clock.Now(), query.rng)
	if err != nil {
		if errors.Is(err, services.ErrSuperseded) {
			writeServiceError(w, h.log, err, "Dashboard recompute superseded")
			return
		}

		if stale, ok := h.staleSnapshot(r.Context(), session, query.rng); ok {
			h.log.WithError(err).WithField("range", query.rng).Warn("Serving stale dashboard snapshot")
			w.Header().Set(StaleHeader, "true")
			w.Header().Set(SourceHeader, "cache")
			h.writeSnapshot(w, stale, query.format)
			return
		}

		writeServiceError(w, h.log, err, "Failed to compute dashboard")
		return
	}

	h.cache.Store(r.Context(), snapshot)
	w.Header().Set(SourceHeader, "compute")
	h.writeSnapshot(w, snapshot, query.format)
}

// CancelDashboard отменяет выполняющийся пересчет сессии клиента.
func (h *AnalyticsHandler) CancelDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	h.sessions.Get(sessionKey(r)).Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnalyticsHandler) parseQuery(r *http.Request) (dashboardQuery, error) {
	values := r.URL.Query()

	rng, err := models.ParseReportRange(values.Get("range"), h.clock.DefaultRange())
	if err != nil {
		return dashboardQuery{}, apperror.Validation(err.Error(), err)
	}

	refresh, err := parseBoolParam(values.Get("refresh"))
	if err != nil {
		return dashboardQuery{}, apperror.Validation("refresh must be a boolean", err)
	}

	format := strings.ToLower(strings.TrimSpace(values.Get("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return dashboardQuery{}, apperror.Validation("format must be json or csv", nil)
	}

	return dashboardQuery{rng: rng, refresh: refresh, format: format}, nil
}

// staleSnapshot ищет ранее посчитанный снимок сначала в кеше, затем в сессии.
func (h *AnalyticsHandler) staleSnapshot(ctx context.Context, session *services.Session, rng models.ReportRange) (*models.Snapshot, bool) {
	if snapshot, ok := h.cache.Get(ctx, rng); ok {
		return snapshot, true
	}
	return session.Last(rng)
}

func (h *AnalyticsHandler) writeSnapshot(w http.ResponseWriter, snapshot *models.Snapshot, format string) {
	if format != "csv" {
		writeJSONResponse(w, http.StatusOK, snapshot)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DailySalesFilename(snapshot)))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteDailySalesCSV(w, snapshot.DailySales); err != nil {
		h.log.WithError(err).Warn("Failed to stream daily sales CSV")
	}
}

func (h *AnalyticsHandler) requestTimeout() time.Duration {
	if h.cfg != nil && h.cfg.RequestTimeoutSeconds > 0 {
		return time.Duration(h.cfg.RequestTimeoutSeconds) * time.Second
	}
	return defaultRequestTimeout
}

func sessionKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(SessionHeader)); key != "" {
		return "session:" + key
	}
	return "ip:" + services.ExtractClientIP(r)
}
