package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "deedgate/pkg/domain"
	"deedgate/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// AdminPolicy decides the admin capability from the token's email.
type AdminPolicy interface {
	IsAdmin(email string) bool
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	UserID string
	Email  string
	Wallet string
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// parsePrincipal converts the string claims to a typed principal.
// The wallet claim is optional.
func parsePrincipal(claims *JWTClaims) (requestcontext.Principal, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return requestcontext.Principal{}, fmt.Errorf("invalid sub: %w", err)
	}
	if claims.Email == "" {
		return requestcontext.Principal{}, fmt.Errorf("missing email claim")
	}

	var wallet id.WalletAddress
	if claims.Wallet != "" {
		wallet, err = id.ParseWalletAddress(claims.Wallet)
		if err != nil {
			return requestcontext.Principal{}, fmt.Errorf("invalid wallet: %w", err)
		}
	}

	return requestcontext.Principal{
		UserID: userID,
		Email:  claims.Email,
		Wallet: wallet,
	}, nil
}

// RequireAuth returns middleware that validates the bearer token and stores the
// principal in the context. The admin flag is decided here, once, from policy.
func RequireAuth(validator JWTValidator, policy AdminPolicy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			principal, err := parsePrincipal(claims)
			if err != nil {
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			if policy != nil {
				principal.Admin = policy.IsAdmin(principal.Email)
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}
