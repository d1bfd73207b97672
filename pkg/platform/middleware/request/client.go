package request

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"deedgate/pkg/requestcontext"
)

// maxForwardedLength bounds X-Forwarded-For before it is parsed.
const maxForwardedLength = 500

// ClientMetadata stores the client IP and User-Agent in the context. Forwarding
// headers are honoured only when the direct peer is one of trusted.
func ClientMetadata(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientMetadata(r.Context(), clientIP(r, trusted), r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if peer == "" {
		return "unknown"
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		forwarded = r.Header.Get("X-Real-IP")
	}
	if forwarded == "" || len(forwarded) > maxForwardedLength {
		return peer
	}
	first, _, _ := strings.Cut(forwarded, ",")
	first = strings.TrimSpace(first)
	if _, err := netip.ParseAddr(first); err != nil {
		return peer
	}
	return first
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
