// Package httptransport wires the domain handlers into one chi router. Handlers stay thin
// and delegate to services, so everything here is routing and middleware order.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"deedgate/internal/audit"
	cataloghandler "deedgate/internal/catalog/handler"
	documentshandler "deedgate/internal/documents/handler"
	"deedgate/internal/platform/health"
	purchaseshandler "deedgate/internal/purchases/handler"
	ratelimit "deedgate/internal/ratelimit/middleware"
	"deedgate/internal/ratelimit/models"
	registrationhandler "deedgate/internal/registration/handler"
	verificationhandler "deedgate/internal/verification/handler"
	"deedgate/pkg/platform/middleware/admin"
	"deedgate/pkg/platform/middleware/auth"
	"deedgate/pkg/platform/middleware/request"
)

// Handlers groups the domain handlers mounted by NewRouter.
type Handlers struct {
	Verification *verificationhandler.Handler
	Registration *registrationhandler.Handler
	Documents    *documentshandler.Handler
	Catalog      *cataloghandler.Handler
	Purchases    *purchaseshandler.Handler
	Health       *health.Handler
	// Audit serves the admin audit trail; nil leaves it unmounted.
	Audit *audit.Handler
	// Metrics serves the Prometheus scrape endpoint; nil leaves /metrics unmounted.
	Metrics http.Handler
}

// Config carries the cross-cutting settings for the middleware stack.
type Config struct {
	Tokens         auth.JWTValidator
	Admins         auth.AdminPolicy
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration
	Latency        *request.Metrics
	// RateLimit may be nil, which disables limiting.
	RateLimit *ratelimit.Middleware
}

// NewRouter mounts public routes, bearer routes and admin routes, in that order of
// increasing privilege.
func NewRouter(h Handlers, cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientMetadata(cfg.TrustedProxies))
	r.Use(request.Logger(logger))
	r.Use(request.Latency(cfg.Latency))

	if h.Health != nil {
		h.Health.Register(r)
	}
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(cfg.RequestTimeout))
		}

		h.Catalog.RegisterPublic(r)
		r.With(cfg.RateLimit.RateLimit(models.ClassCompare)).Group(h.Documents.RegisterPublic)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(cfg.Tokens, cfg.Admins, logger))

			r.With(cfg.RateLimit.RateLimit(models.ClassVerify)).Group(h.Verification.Register)
			h.Catalog.RegisterAuthenticated(r)
			h.Purchases.Register(r)

			r.Group(func(r chi.Router) {
				r.Use(admin.RequireAdmin(logger))

				r.With(cfg.RateLimit.RateLimit(models.ClassRegister)).Group(h.Registration.Register)
				h.Documents.RegisterAdmin(r)
				if h.Audit != nil {
					h.Audit.RegisterAdmin(r)
				}
			})
		})
	})

	return r
}
