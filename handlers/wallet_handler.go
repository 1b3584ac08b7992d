package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/tpf/services"
)

type WalletAPI interface {
	Balances(ctx context.Context, address string) (services.Balances, error)
	MintBRLX(ctx context.Context, to, amount string) (string, error)
}

type WalletHandler struct {
	Service WalletAPI
}

func NewWalletHandler(s WalletAPI) *WalletHandler {
	return &WalletHandler{Service: s}
}

type mintRequest struct {
	To     string `json:"to" validate:"required,eth_addr"`
	Amount string `json:"amount" validate:"omitempty,numeric"`
}

// GET /wallets/{address}/balances
func (h *WalletHandler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Service.Balances(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// MintBRLX emite BRLX de teste para a carteira informada.
// POST /admin/brlx/mint
func (h *WalletHandler) MintBRLX(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	hash, err := h.Service.MintBRLX(r.Context(), req.To, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HashResponse{Hash: hash})
}

// AdminOnly exige o cabeçalho X-Admin-Token. Sem token configurado, as rotas ficam indisponíveis.
func AdminOnly(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeProblem(w, http.StatusServiceUnavailable, "admin_disabled", "rotas administrativas desabilitadas")
				return
			}
			got := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeProblem(w, http.StatusUnauthorized, "unauthorized", "token administrativo inválido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
