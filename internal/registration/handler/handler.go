package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"deedgate/internal/documents"
	"deedgate/internal/registration"
	"deedgate/pkg/platform/httputil"
	"deedgate/pkg/requestcontext"
	"deedgate/pkg/validation"
)

// Service is the registration capability the handler drives.
type Service interface {
	Register(ctx context.Context, capability registration.Capability, cmd registration.RegisterCommand) (*registration.RegisterResult, error)
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

// Register mounts the admin routes. The router must already require an admin token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/registry", h.handleRegister)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
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

	req, ok := httputil.DecodeMultipart[RegisterRequest](w, r, h.logger, form)
	if !ok {
		return
	}

	wallet, err := req.wallet()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	price, err := req.price()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := form.File("document")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	contentType, err := documents.ValidateUpload(doc.Data, h.maxUploadBytes)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected deed upload",
			"request_id", requestID,
			"filename", doc.Filename,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Register(ctx,
		registration.Capability{Admin: principal.Admin, Actor: principal.Email},
		registration.RegisterCommand{
			Document:    doc.Data,
			ContentType: contentType,
			Declaration: req.Declaration.Model(),
			Wallet:      wallet,
			Contact:     req.Contact,
			SkipPublish: !req.publish(),
			PriceWei:    price,
		})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRegisterResponse(result))
}
