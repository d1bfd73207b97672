package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError centralizes domain error translation to HTTP responses.
// Errors without a domain code are reported as internal errors with no description.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		if dErrors.IsRetryable(domainErr) {
			w.Header().Set("Retry-After", "1")
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
			Error:            DomainCodeToHTTPCode(domainErr.Code),
			ErrorDescription: domainErr.Message,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeNotRegistered:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeRegistryInconsistent, dErrors.CodeUnpublishedRegistration, dErrors.CodeDuplicateListing:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeIdentityMismatch:
		return http.StatusForbidden
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the wire error string.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnavailable,
		dErrors.CodeNotRegistered,
		dErrors.CodeRegistryInconsistent,
		dErrors.CodeIdentityMismatch,
		dErrors.CodeUnpublishedRegistration,
		dErrors.CodeDuplicateListing:
		return string(code)
	default:
		return "internal_error"
	}
}

// RequirePrincipal extracts the authenticated principal placed by the auth middleware.
func RequirePrincipal(ctx context.Context, logger *slog.Logger) (requestcontext.Principal, error) {
	p, ok := requestcontext.PrincipalFrom(ctx)
	if !ok {
		if logger != nil {
			logger.ErrorContext(ctx, "principal missing from context despite auth middleware",
				"request_id", requestcontext.RequestID(ctx))
		}
		return requestcontext.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return p, nil
}
