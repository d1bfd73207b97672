package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"deedgate/internal/verification"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/httputil"
	"deedgate/pkg/requestcontext"
	"deedgate/pkg/validation"
)

// Service is the verification capability the handler drives.
type Service interface {
	Verify(ctx context.Context, sub verification.Submission) (*verification.Result, error)
}

type Handler struct {
	service        Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// New creates a verification handler. maxUploadBytes caps the deed document; zero
// means validation.MaxDocumentBytes.
func New(service Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = validation.MaxDocumentBytes
	}
	return &Handler{service: service, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Register mounts the seller routes. The router must already require a bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/listings/verify", h.handleVerify)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	principal, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	form, ok := httputil.ParseMultipart(w, r, h.logger, h.maxUploadBytes, validation.MultipartOverhead)
	if !ok {
		return
	}
	defer form.Close()

	req, ok := httputil.DecodeMultipart[VerifyRequest](w, r, h.logger, form)
	if !ok {
		return
	}

	wallet, err := req.wallet(principal.Wallet)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "a wallet address is required to list a property"))
		return
	}

	doc, err := form.File("document")
	if err != nil {
		h.logger.WarnContext(ctx, "invalid deed document",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Verify(ctx, verification.Submission{
		Document:    doc.Data,
		Declaration: req.Declaration.Model(),
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Wallet:      wallet,
		Actor:       principal.UserID.String(),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toVerifyResponse(result))
}
