package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"deedgate/internal/catalog"
	"deedgate/internal/records/dto"
	"deedgate/pkg/domain"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/platform/httputil"
)

// Service is the catalogue capability the handler drives.
type Service interface {
	List(ctx context.Context, withStatus bool) ([]catalog.Item, error)
	ListMine(ctx context.Context, wallet domain.WalletAddress) ([]catalog.Item, error)
	Get(ctx context.Context, hash domain.RecordHash, withStatus bool) (*catalog.Item, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the anonymous catalogue routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/listings", h.handleList)
	r.Get("/listings/{hash}", h.handleGet)
}

// RegisterAuthenticated mounts routes scoped to the caller. The router must already
// require a bearer token.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/me/listings", h.handleListMine)
}

// ChainStatus is the on-chain annotation. Unknown values are omitted.
type ChainStatus struct {
	HashFound *bool `json:"hash_found,omitempty"`
	Sold      *bool `json:"sold,omitempty"`
	Exists    *bool `json:"exists,omitempty"`
}

type ListingResponse struct {
	dto.Listing
	Chain *ChainStatus `json:"chain,omitempty"`
}

type ListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Count    int               `json:"count"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	withStatus, err := statusParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.List(r.Context(), withStatus)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(items))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	hash, err := domain.ParseRecordHash(chi.URLParam(r, "hash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	withStatus, err := statusParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	item, err := h.service.Get(r.Context(), hash, withStatus)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListingResponse(*item))
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
	items, err := h.service.ListMine(ctx, principal.Wallet)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(items))
}

func statusParam(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.New(dErrors.CodeBadRequest, "status must be true or false")
	}
	return v, nil
}

func toListingResponse(item catalog.Item) ListingResponse {
	resp := ListingResponse{Listing: dto.FromListing(item.Listing)}
	resp.Status = string(item.Status())
	if item.Chain != nil {
		resp.Chain = &ChainStatus{
			HashFound: item.Chain.HashFound,
			Sold:      item.Chain.Sold,
			Exists:    item.Chain.Exists,
		}
	}
	return resp
}

func toListResponse(items []catalog.Item) ListResponse {
	out := make([]ListingResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toListingResponse(item))
	}
	return ListResponse{Listings: out, Count: len(out)}
}
