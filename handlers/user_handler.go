package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/tpf/models"
	"github.com/ferreirogomes/tpf/services"
)

const defaultRowsPerPage = 10

// UserAPI são as operações de usuários expostas por HTTP.
type UserAPI interface {
	Register(ctx context.Context, req services.RegisterRequest) (models.User, error)
	Login(ctx context.Context, publicKey string) (models.User, error)
	List(ctx context.Context, search string, page, rowsPerPage int) (services.UserPage, error)
	Get(ctx context.Context, id string) (models.User, error)
}

// UserHandler lida com requisições HTTP relacionadas a usuários.
type UserHandler struct {
	Service UserAPI
}

// NewUserHandler cria uma nova instância do handler de usuários.
func NewUserHandler(s UserAPI) *UserHandler {
	return &UserHandler{Service: s}
}

type loginRequest struct {
	PublicKey string `json:"publicKey" validate:"required,eth_addr"`
}

// Register cadastra um novo usuário.
// POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login identifica o usuário pela carteira conectada.
// POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Service.Login(r.Context(), req.PublicKey)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// List busca e pagina os usuários.
// GET /users?search=&page=&rowsPerPage=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, rowsPerPage, paginate, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !paginate {
		rowsPerPage = defaultRowsPerPage
	}
	users, err := h.Service.List(r.Context(), r.URL.Query().Get("search"), page, rowsPerPage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUserByID obtém um usuário pelo ID.
// GET /users/{id}
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
