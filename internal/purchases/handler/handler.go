package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"deedgate/internal/purchases"
	"deedgate/internal/records/models"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/httputil"
)

// Service is the purchase capability the handler drives.
type Service interface {
	Record(ctx context.Context, cmd purchases.RecordCommand) (*purchases.RecordResult, error)
	ListMine(ctx context.Context, buyer domain.WalletAddress) ([]*models.Purchase, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the buyer routes. The router must already require a bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/listings/{hash}/purchases", h.handleRecord)
	r.Get("/me/purchases", h.handleListMine)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hash, err := domain.ParseRecordHash(chi.URLParam(r, "hash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger)
	if !ok {
		return
	}
	tx, err := req.txHash()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Record(ctx, purchases.RecordCommand{
		Actor:      principal.Email,
		Buyer:      principal.Wallet,
		RecordHash: hash,
		TxHash:     tx,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, toPurchaseResponse(result.Purchase))
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if principal.Wallet.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "token carries no wallet address"))
		return
	}
	ps, err := h.service.ListMine(ctx, principal.Wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(ps))
}
