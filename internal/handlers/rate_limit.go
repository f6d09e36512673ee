package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/services"
)

// Области лимита: у пересчета и отмены отдельные окна.
const (
	RateScopeDashboard = "dashboard"
	RateScopeCancel    = "cancel"
)

// DegradedHeader выставляется, когда лимит не удалось проверить и запрос пропущен.
const DegradedHeader = "X-RateLimit-Degraded"

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Time, error)
	Enabled() bool
	Limit() int64
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, key string) (int64, int64, *time.Time, error)
}

// RateLimitHandler отдает состояние окна для вкладки дашборда.
type RateLimitHandler struct {
	limiter RateLimitStatusProvider
	log     *logger.Logger
	cfg     *config.RateLimitConfig
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter, log: log, cfg: cfg}
}

// Status возвращает использование окна в области ?scope= (по умолчанию dashboard).
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	scope, ok := parseRateScope(r.URL.Query().Get("scope"))
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "Unknown rate limit scope")
		return
	}

	if h.limiter == nil || h.cfg == nil || !h.cfg.Enabled || !h.limiter.Enabled() {
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"enabled": false, "scope": scope})
		return
	}

	key := rateLimitKey(scope, r)
	used, remaining, resetAt, err := h.limiter.Usage(r.Context(), key)
	if err != nil {
		h.log.WithError(err).WithField("scope", scope).Warn("Rate limit usage unavailable")
		writeErrorResponse(w, http.StatusServiceUnavailable, "Rate limit store is unavailable")
		return
	}

	resp := map[string]interface{}{
		"enabled":        true,
		"scope":          scope,
		"limit":          h.limiter.Limit(),
		"window_seconds": h.cfg.WindowSeconds,
		"used":           used,
		"remaining":      remaining,
		"key":            key,
	}
	if resetAt != nil {
		resp["reset_at"] = resetAt.Format(time.RFC3339)
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// RateLimitMiddleware ограничивает запросы вкладки в заданной области.
// Сбой хранилища лимита не блокирует запрос: он пропускается с заголовком DegradedHeader.
func RateLimitMiddleware(limiter MiddlewareLimiter, log *logger.Logger, scope string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil || !limiter.Enabled() {
			next(w, r)
			return
		}

		key := rateLimitKey(scope, r)
		allowed, remaining, resetAt, err := limiter.Allow(r.Context(), key)
		if err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"scope": scope,
				"path":  r.URL.Path,
			}).Warn("Rate limiter unavailable, letting request through")
			w.Header().Set(DegradedHeader, "true")
			next(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiter.Limit(), 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !resetAt.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		}

		if !allowed {
			if !resetAt.IsZero() {
				if wait := time.Until(resetAt); wait > 0 {
					w.Header().Set("Retry-After", strconv.FormatInt(int64(wait.Round(time.Second)/time.Second), 10))
				}
			}
			writeErrorResponse(w, http.StatusTooManyRequests, "Too many dashboard requests, try again later")
			return
		}

		next(w, r)
	}
}

// rateLimitKey строит ключ окна: область, IP клиента и, если задан, ключ сессии.
// Вкладки за одним NAT получают отдельные окна.
func rateLimitKey(scope string, r *http.Request) string {
	key := scope + "|" + services.ExtractClientIP(r)
	if session := strings.TrimSpace(r.Header.Get(SessionHeader)); session != "" {
		key += "|" + session
	}
	return key
}

func parseRateScope(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", RateScopeDashboard:
		return RateScopeDashboard, true
	case RateScopeCancel:
		return RateScopeCancel, true
	default:
		return "", false
	}
}
