package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"deedgate/internal/documents"
	"deedgate/internal/documents/archive"
	"deedgate/pkg/domain"
	"deedgate/pkg/platform/httputil"
	"deedgate/pkg/requestcontext"
	"deedgate/pkg/validation"
)

// Service is the document capability the handler drives.
type Service interface {
	Compare(ctx context.Context, reference, candidate []byte) (*documents.Comparison, error)
	Fetch(ctx context.Context, hash domain.ContentHash) (*archive.Document, error)
}

type Handler struct {
	service        Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func New(service Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = validation.MaxDocumentBytes
	}
	return &Handler{service: service, logger: logger, maxUploadBytes: maxUploadBytes}
}

// RegisterPublic mounts the public compare route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/documents/compare", h.handleCompare)
}

// RegisterAdmin mounts the archive routes. The router must already require an admin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/documents/{contentHash}", h.handleFetch)
}

type CompareResponse struct {
	ReferenceHash string `json:"reference_hash"`
	CandidateHash string `json:"candidate_hash"`
	Match         bool   `json:"match"`
	Ledger        string `json:"ledger"`
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	// Two documents share the body.
	form, ok := httputil.ParseMultipart(w, r, h.logger, 2*h.maxUploadBytes, validation.MultipartOverhead)
	if !ok {
		return
	}
	defer form.Close()

	reference, err := form.File("reference")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	candidate, err := form.File("candidate")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Compare(r.Context(), reference.Data, candidate.Data)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CompareResponse{
		ReferenceHash: result.ReferenceHash.String(),
		CandidateHash: result.CandidateHash.String(),
		Match:         result.Match,
		Ledger:        string(result.Ledger),
	})
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash, err := domain.ParseContentHash(chi.URLParam(r, "contentHash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.Fetch(ctx, hash)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to fetch archived document",
			"request_id", requestcontext.RequestID(ctx),
			"content_hash", hash.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}
