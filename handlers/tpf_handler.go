package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/display"
	"github.com/ferreirogomes/tpf/models"
	"github.com/ferreirogomes/tpf/services"
)

// TPFAPI são as operações de títulos expostas por HTTP.
type TPFAPI interface {
	Create(ctx context.Context, req services.CreateTPFRequest) (models.TPF, error)
	List(ctx context.Context) ([]models.TPF, error)
	Get(ctx context.Context, id string) (models.TPF, error)
	Price(ctx context.Context, id string) (services.TPFPrice, error)
	PriceList(ctx context.Context) ([]services.TPFPrice, error)
	Simulate(ctx context.Context, id, amount string) (services.Simulation, error)
	PrepareApprove(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error)
	PrepareInvest(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error)
	PrepareRedeem(ctx context.Context, id, from, shares string) (*chain.UnsignedTx, error)
	PrepareWithdraw(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error)
	AssetBalance(ctx context.Context, id string) (services.AssetBalance, error)
	Holders(ctx context.Context, id string) ([]services.Holder, error)
	AdminWithdraw(ctx context.Context, id, receiver, amount string) (string, error)
	Freeze(ctx context.Context, id, wallet string, frozen bool) (string, error)
	AdminInvest(ctx context.Context, id, receiver, amount string) (services.FlowResult, error)
}

type TPFHandler struct {
	Service TPFAPI
}

func NewTPFHandler(s TPFAPI) *TPFHandler {
	return &TPFHandler{Service: s}
}

type amountRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

type walletAmountRequest struct {
	From   string `json:"from" validate:"required,eth_addr"`
	Amount string `json:"amount" validate:"required,numeric"`
}

type redeemRequest struct {
	From   string `json:"from" validate:"required,eth_addr"`
	Shares string `json:"shares" validate:"required,numeric"`
}

type receiverAmountRequest struct {
	Receiver string `json:"receiver" validate:"required,eth_addr"`
	Amount   string `json:"amount" validate:"required,numeric"`
}

type freezeRequest struct {
	Wallet string `json:"wallet" validate:"required,eth_addr"`
	Frozen *bool  `json:"frozen" validate:"required"`
}

// HashResponse devolve o hash de uma transação enviada pelo administrador.
type HashResponse struct {
	Hash string `json:"hash"`
}

// Create cadastra e implanta um novo título.
// POST /tpfs
func (h *TPFHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTPFRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tpf, err := h.Service.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpf)
}

// List devolve os títulos cadastrados, paginados quando rowsPerPage é informado.
// GET /tpfs
func (h *TPFHandler) List(w http.ResponseWriter, r *http.Request) {
	page, rowsPerPage, paginate, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tpfs, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if paginate {
		tpfs = display.ApplyPagination(tpfs, page, rowsPerPage)
	}
	writeJSON(w, http.StatusOK, tpfs)
}

// GET /tpfs/{id}
func (h *TPFHandler) Get(w http.ResponseWriter, r *http.Request) {
	tpf, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpf)
}

// GET /tpfs/{id}/price
func (h *TPFHandler) Price(w http.ResponseWriter, r *http.Request) {
	price, err := h.Service.Price(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

// GET /tpfs/prices
func (h *TPFHandler) PriceList(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Service.PriceList(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

// Simulate calcula as cotas recebidas por um investimento.
// POST /tpfs/{id}/simulate
func (h *TPFHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sim, err := h.Service.Simulate(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

// GET /tpfs/{id}/holders
func (h *TPFHandler) Holders(w http.ResponseWriter, r *http.Request) {
	holders, err := h.Service.Holders(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, holders)
}

// GET /tpfs/{id}/asset-balance
func (h *TPFHandler) AssetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Service.AssetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

type prepareFunc func(ctx context.Context, id, from, amount string) (*chain.UnsignedTx, error)

// prepare decodifica {from, amount} e devolve a transação não assinada.
func (h *TPFHandler) prepare(fn prepareFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req walletAmountRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		tx, err := fn(r.Context(), chi.URLParam(r, "id"), req.From, req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

// POST /tpfs/{id}/approve
func (h *TPFHandler) PrepareApprove(w http.ResponseWriter, r *http.Request) {
	h.prepare(h.Service.PrepareApprove)(w, r)
}

// POST /tpfs/{id}/invest
func (h *TPFHandler) PrepareInvest(w http.ResponseWriter, r *http.Request) {
	h.prepare(h.Service.PrepareInvest)(w, r)
}

// POST /tpfs/{id}/withdraw
func (h *TPFHandler) PrepareWithdraw(w http.ResponseWriter, r *http.Request) {
	h.prepare(h.Service.PrepareWithdraw)(w, r)
}

// POST /tpfs/{id}/redeem
func (h *TPFHandler) PrepareRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.Service.PrepareRedeem(r.Context(), chi.URLParam(r, "id"), req.From, req.Shares)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// AdminWithdraw saca o ativo do título para o recebedor informado.
// POST /admin/tpfs/{id}/withdraw
func (h *TPFHandler) AdminWithdraw(w http.ResponseWriter, r *http.Request) {
	var req receiverAmountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	hash, err := h.Service.AdminWithdraw(r.Context(), chi.URLParam(r, "id"), req.Receiver, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HashResponse{Hash: hash})
}

// Freeze congela ou descongela uma carteira no título.
// POST /admin/tpfs/{id}/freeze
func (h *TPFHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	var req freezeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	hash, err := h.Service.Freeze(r.Context(), chi.URLParam(r, "id"), req.Wallet, *req.Frozen)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HashResponse{Hash: hash})
}

// AdminInvest aprova e deposita em nome do recebedor usando a carteira administrativa.
// POST /admin/tpfs/{id}/invest
func (h *TPFHandler) AdminInvest(w http.ResponseWriter, r *http.Request) {
	var req receiverAmountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Service.AdminInvest(r.Context(), chi.URLParam(r, "id"), req.Receiver, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
