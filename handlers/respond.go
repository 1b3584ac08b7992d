package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ferreirogomes/tpf/chain"
	"github.com/ferreirogomes/tpf/services"
	"github.com/ferreirogomes/tpf/storage"
)

// statusClientClosedRequest é o 499 do nginx: o cliente desistiu antes da resposta.
const statusClientClosedRequest = 499

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse é o corpo de erro de todas as rotas.
type ErrorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	ApproveHash string `json:"approveHash,omitempty"`
}

type catalogEntry struct {
	target error
	status int
	code   string
}

// errorCatalog associa os erros conhecidos ao status HTTP. A primeira entrada que casar vence.
var errorCatalog = []catalogEntry{
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{storage.ErrNotFound, http.StatusNotFound, "not_found"},
	{storage.ErrImmutableField, http.StatusBadRequest, "invalid_request"},
	{services.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{services.ErrPartialFlow, http.StatusConflict, "partial_flow"},
	{services.ErrApproveFailed, http.StatusBadGateway, "approve_failed"},
	{services.ErrTooManyListings, http.StatusBadGateway, "too_many_listings"},
	{services.ErrAdminDisabled, http.StatusServiceUnavailable, "admin_disabled"},
	{chain.ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
	{chain.ErrInvalidTransaction, http.StatusBadRequest, "invalid_transaction"},
	{chain.ErrTransactionReverted, http.StatusBadGateway, "transaction_reverted"},
	{chain.ErrWaitTimeout, http.StatusGatewayTimeout, "wait_timeout"},
	{context.Canceled, statusClientClosedRequest, "client_closed_request"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
	{chain.ErrRPC, http.StatusBadGateway, "chain_error"},
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("falha ao escrever resposta")
	}
}

func writeProblem(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Code: code, Message: message})
}

// writeError converte err na resposta de erro segundo o catálogo.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	var verr *services.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &verr), errors.As(err, &fieldErrs):
		status, code = http.StatusBadRequest, "invalid_request"
	default:
		for _, entry := range errorCatalog {
			if errors.Is(err, entry.target) {
				status, code = entry.status, entry.code
				break
			}
		}
	}

	resp := ErrorResponse{Error: http.StatusText(status), Code: code, Message: err.Error()}
	var partial *services.PartialFlowError
	if errors.As(err, &partial) {
		resp.ApproveHash = partial.ApproveHash
	}

	entry := logrus.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path, "status": status})
	if status >= http.StatusInternalServerError {
		entry.Error("falha ao processar requisição")
	} else {
		entry.Debug("requisição rejeitada")
	}
	writeJSON(w, status, resp)
}

// decodeAndValidate lê o corpo JSON em v e aplica as regras de validação.
func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &services.ValidationError{Message: fmt.Sprintf("corpo JSON inválido: %v", err)}
	}
	if err := validate.Struct(v); err != nil {
		return err
	}
	return nil
}

// pageParams lê page e rowsPerPage da query string. Sem rowsPerPage, não há paginação.
func pageParams(r *http.Request) (page, rowsPerPage int, paginate bool, err error) {
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return 0, 0, false, &services.ValidationError{Message: fmt.Sprintf("page inválido %q", v)}
		}
	}
	if v := q.Get("rowsPerPage"); v != "" {
		if rowsPerPage, err = strconv.Atoi(v); err != nil || rowsPerPage <= 0 {
			return 0, 0, false, &services.ValidationError{Message: fmt.Sprintf("rowsPerPage inválido %q", v)}
		}
		paginate = true
	}
	return page, rowsPerPage, paginate, nil
}
