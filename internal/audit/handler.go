// Package audit serves the audit trail to admins: the recent decision log and the
// full history of a single record hash.
package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	platformaudit "deedgate/pkg/platform/audit"
	"deedgate/pkg/platform/httputil"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Reader is satisfied by the memory and postgres audit stores.
type Reader interface {
	ListByRecordHash(ctx context.Context, hash string) ([]platformaudit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]platformaudit.Event, error)
}

type Handler struct {
	reader Reader
	logger *slog.Logger
}

func New(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// RegisterAdmin mounts the trail routes. The router must already require an admin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit", h.handleRecent)
	r.Get("/admin/audit/{hash}", h.handleTrail)
}

type EventResponse struct {
	Timestamp  time.Time `json:"timestamp"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	RecordHash string    `json:"record_hash,omitempty"`
	Decision   string    `json:"decision,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

type TrailResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.reader.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read audit trail", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTrailResponse(events))
}

func (h *Handler) handleTrail(w http.ResponseWriter, r *http.Request) {
	hash, err := domain.ParseRecordHash(chi.URLParam(r, "hash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.reader.ListByRecordHash(r.Context(), hash.String())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read audit trail", "record_hash", hash.Short(), "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTrailResponse(events))
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
	}
	return min(n, maxLimit), nil
}

func toTrailResponse(events []platformaudit.Event) TrailResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse(e))
	}
	return TrailResponse{Events: out, Count: len(out)}
}
