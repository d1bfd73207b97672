package handler

import (
	"time"

	"deedgate/internal/records/models"
)

type PurchaseResponse struct {
	ID          string    `json:"id"`
	RecordHash  string    `json:"record_hash"`
	ContractID  string    `json:"contract_id"`
	BuyerWallet string    `json:"buyer_wallet"`
	TxHash      string    `json:"tx_hash"`
	Title       string    `json:"title"`
	City        string    `json:"city"`
	PriceUSD    float64   `json:"price_usd"`
	Beds        float64   `json:"beds"`
	Baths       float64   `json:"baths"`
	Area        float64   `json:"area"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListResponse struct {
	Purchases []PurchaseResponse `json:"purchases"`
	Count     int                `json:"count"`
}

func toPurchaseResponse(p *models.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:          p.ID.String(),
		RecordHash:  p.RecordHash.String(),
		ContractID:  p.ContractID.String(),
		BuyerWallet: p.BuyerWallet.String(),
		TxHash:      p.TxHash.String(),
		Title:       p.Title,
		City:        p.City,
		PriceUSD:    p.PriceUSD,
		Beds:        p.Beds,
		Baths:       p.Baths,
		Area:        p.Area,
		CreatedAt:   p.CreatedAt,
	}
}

func toListResponse(ps []*models.Purchase) ListResponse {
	out := make([]PurchaseResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPurchaseResponse(p))
	}
	return ListResponse{Purchases: out, Count: len(out)}
}
