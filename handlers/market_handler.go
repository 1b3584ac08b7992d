package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/models"
	"github.com/ferreirogomes/tpf/services"
)

// MarketAPI são as operações do mercado secundário expostas por HTTP.
type MarketAPI interface {
	ListOrders(ctx context.Context, filter services.OrderFilter) ([]models.Order, error)
	PrepareApproveListing(ctx context.Context, req services.ListingRequest) (*chain.UnsignedTx, error)
	PrepareCreateListing(ctx context.Context, req services.ListingRequest) (*chain.UnsignedTx, error)
	PrepareCancelListing(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error)
	PrepareApproveBuy(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error)
	PrepareBuyListing(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error)
	AdminCreateListing(ctx context.Context, req services.ListingRequest) (services.FlowResult, error)
	AdminBuyListing(ctx context.Context, listingID string) (services.FlowResult, error)
}

type MarketHandler struct {
	Service MarketAPI
}

func NewMarketHandler(s MarketAPI) *MarketHandler {
	return &MarketHandler{Service: s}
}

type fromRequest struct {
	From string `json:"from" validate:"required,eth_addr"`
}

// ListOrders devolve as ofertas abertas, filtradas por vendedor e busca.
// GET /market/listings?seller=&search=
func (h *MarketHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, err := h.Service.ListOrders(r.Context(), services.OrderFilter{
		Seller: q.Get("seller"),
		Search: q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *MarketHandler) listing(fn func(context.Context, services.ListingRequest) (*chain.UnsignedTx, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.ListingRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.From == "" {
			writeError(w, r, &services.ValidationError{Message: "from é obrigatório"})
			return
		}
		tx, err := fn(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

// POST /market/listings/approve
func (h *MarketHandler) PrepareApproveListing(w http.ResponseWriter, r *http.Request) {
	h.listing(h.Service.PrepareApproveListing)(w, r)
}

// POST /market/listings
func (h *MarketHandler) PrepareCreateListing(w http.ResponseWriter, r *http.Request) {
	h.listing(h.Service.PrepareCreateListing)(w, r)
}

func (h *MarketHandler) byListing(fn func(ctx context.Context, from, listingID string) (*chain.UnsignedTx, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fromRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		tx, err := fn(r.Context(), req.From, chi.URLParam(r, "listingID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

// POST /market/listings/{listingID}/cancel
func (h *MarketHandler) PrepareCancelListing(w http.ResponseWriter, r *http.Request) {
	h.byListing(h.Service.PrepareCancelListing)(w, r)
}

// POST /market/listings/{listingID}/approve
func (h *MarketHandler) PrepareApproveBuy(w http.ResponseWriter, r *http.Request) {
	h.byListing(h.Service.PrepareApproveBuy)(w, r)
}

// POST /market/listings/{listingID}/buy
func (h *MarketHandler) PrepareBuyListing(w http.ResponseWriter, r *http.Request) {
	h.byListing(h.Service.PrepareBuyListing)(w, r)
}

// AdminCreateListing aprova e cria a oferta com a carteira administrativa.
// POST /admin/market/listings
func (h *MarketHandler) AdminCreateListing(w http.ResponseWriter, r *http.Request) {
	var req services.ListingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Service.AdminCreateListing(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /admin/market/listings/{listingID}/buy
func (h *MarketHandler) AdminBuyListing(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.AdminBuyListing(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
