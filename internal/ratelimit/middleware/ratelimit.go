// Package middleware enforces per-class request budgets on the write endpoints.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"deedgate/internal/platform/privacy"
	"deedgate/internal/ratelimit/models"
	"deedgate/pkg/platform/httputil"
	"deedgate/pkg/requestcontext"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  Limiter
	limits   map[models.EndpointClass]models.Limit
	rejected *prometheus.CounterVec
	logger   *slog.Logger
}

type Option func(*Middleware)

func WithMetrics(reg prometheus.Registerer) Option {
	return func(m *Middleware) {
		m.rejected = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "deedgate_ratelimit_rejections_total",
			Help: "Requests rejected by the rate limiter by endpoint class",
		}, []string{"class"})
	}
}

func New(limiter Limiter, limits map[models.EndpointClass]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Middleware{
		limiter: limiter,
		limits:  limits,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit charges one request to the caller's budget for class. Authenticated
// callers are keyed by user id, anonymous ones by client IP. A nil Middleware or an
// unconfigured class passes everything through. Store failures fail open.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		limit, ok := m.limits[class]
		if !ok || limit.Requests <= 0 || limit.Window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := bucketKey(ctx, class)

			result, err := m.limiter.Allow(ctx, key, limit)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"class", string(class),
					"ip_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				if m.rejected != nil {
					m.rejected.WithLabelValues(string(class)).Inc()
				}
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bucketKey(ctx context.Context, class models.EndpointClass) string {
	if p, ok := requestcontext.PrincipalFrom(ctx); ok && !p.UserID.IsNil() {
		return string(class) + ":user:" + p.UserID.String()
	}
	ip := requestcontext.ClientIP(ctx)
	if ip == "" {
		ip = "unknown"
	}
	return string(class) + ":ip:" + ip
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "too many requests; retry later",
	})
}
