// Package requestcontext carries request-scoped values (request id, client metadata,
// request time and the authenticated principal) through context.Context.
package requestcontext

import (
	"context"
	"time"

	"deedgate/pkg/domain"
)

type (
	requestIDKey struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
	timeKey      struct{}
	principalKey struct{}
)

// Principal is the authenticated caller as established by the bearer token.
type Principal struct {
	UserID domain.UserID
	Email  string
	Wallet domain.WalletAddress
	Admin  bool
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

func UserAgent(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey{}).(string)
	return ua
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}

// Now returns the request-scoped time, falling back to the wall clock for
// workers, CLI commands and tests that never ran the request middleware.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
