package admin

import (
	"log/slog"
	"net/http"

	pstrings "deedgate/pkg/platform/strings"
	"deedgate/pkg/requestcontext"
)

// Allowlist grants the admin capability to a fixed set of emails, compared
// case-insensitively.
type Allowlist struct {
	emails map[string]struct{}
}

func NewAllowlist(emails []string) *Allowlist {
	normalized := pstrings.NormalizeEmails(emails)
	set := make(map[string]struct{}, len(normalized))
	for _, e := range normalized {
		set[e] = struct{}{}
	}
	return &Allowlist{emails: set}
}

func (a *Allowlist) IsAdmin(email string) bool {
	if a == nil {
		return false
	}
	_, ok := a.emails[pstrings.NormalizeEmail(email)]
	return ok
}

func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.emails)
}

// RequireAdmin blocks requests whose principal lacks the admin capability.
// It must run after the auth middleware.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal, ok := requestcontext.PrincipalFrom(ctx)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"authentication required"}`))
				return
			}
			if !principal.Admin {
				logger.WarnContext(ctx, "admin route denied",
					"user_id", principal.UserID.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin capability required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
