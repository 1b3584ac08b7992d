package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/tpf/models"
	"github.com/ferreirogomes/tpf/services"
)

type TransactionAPI interface {
	Broadcast(ctx context.Context, raw, kind string) (models.Transaction, error)
	Track(ctx context.Context, req services.TrackRequest) (models.Transaction, error)
	Get(ctx context.Context, hash string) (models.Transaction, error)
	Wait(ctx context.Context, hash string) (models.Transaction, error)
}

type TransactionHandler struct {
	Service TransactionAPI
}

func NewTransactionHandler(s TransactionAPI) *TransactionHandler {
	return &TransactionHandler{Service: s}
}

type broadcastRequest struct {
	Raw  string `json:"raw" validate:"required,hexadecimal"`
	Kind string `json:"kind"`
}

// Broadcast envia uma transação já assinada pela carteira do usuário.
// POST /transactions
func (h *TransactionHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.Service.Broadcast(r.Context(), req.Raw, req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, tx)
}

// POST /transactions/track
func (h *TransactionHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req services.TrackRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.Service.Track(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, tx)
}

// GET /transactions/{hash}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Service.Get(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Wait bloqueia até o recibo da transação ou o tempo limite.
// POST /transactions/{hash}/wait
func (h *TransactionHandler) Wait(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Service.Wait(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
