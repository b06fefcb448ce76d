package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/pacuit/conferencia/internal/auth"
	"github.com/pacuit/conferencia/internal/conference"
	"github.com/pacuit/conferencia/internal/records"
	"github.com/pacuit/conferencia/internal/storage"
)

// Códigos numéricos devolvidos em errors[].code.
const (
	CodeInternal     = 7000
	CodeValidation   = 7001
	CodeNotFound     = 7002
	CodeUnauthorized = 7003
	CodeConflict     = 7004
	CodeUpstream     = 7005
	CodeTimeout      = 7006
	CodeUnavailable  = 7007
)

// Formulários trazem anexos em base64 no corpo.
const maxBodyBytes = 25 << 20

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Result  any  `json:"result"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Errors  []ErrorBody `json:"errors"`
}

// ErrorBody descreve uma falha normalizada.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, result any) {
	writeRaw(w, status, SuccessEnvelope{Success: true, Result: result})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code int, message string) {
	writeRaw(w, status, ErrorEnvelope{Errors: []ErrorBody{{Code: code, Message: message}}})
}

func writeRaw(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError traduz erros de domínio em status HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var recordErr *records.ValidationError
	if errors.As(err, &recordErr) {
		writeRaw(w, http.StatusBadRequest, ErrorEnvelope{Errors: []ErrorBody{{
			Code: CodeValidation, Message: recordErr.Message, Field: recordErr.Field,
		}}})
		return
	}
	var formErr *conference.ValidationError
	if errors.As(err, &formErr) {
		writeRaw(w, http.StatusBadRequest, ErrorEnvelope{Errors: []ErrorBody{{
			Code: CodeValidation, Message: formErr.Message, Field: formErr.Field,
		}}})
		return
	}

	switch {
	case errors.Is(err, records.ErrValidation),
		errors.Is(err, conference.ErrValidation),
		errors.Is(err, storage.ErrInvalidTarget):
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, records.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, "registro não encontrado")
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "credenciais inválidas")
	case errors.Is(err, storage.ErrConflictExhausted):
		WriteError(w, http.StatusConflict, CodeConflict, "anexo alterado concorrentemente; tente novamente")
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, CodeTimeout, "tempo esgotado ao enviar anexos")
	case errors.Is(err, storage.ErrUploaderDisabled):
		WriteError(w, http.StatusServiceUnavailable, CodeUnavailable, "envio de anexos indisponível")
	case errors.Is(err, storage.ErrStoreRejected), errors.Is(err, storage.ErrTransport):
		logFailure(r, err)
		WriteError(w, http.StatusBadGateway, CodeUpstream, "falha ao gravar anexo")
	default:
		logFailure(r, err)
		WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal Server Error")
	}
}

func logFailure(r *http.Request, err error) {
	event := log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path)
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		event = event.Str("request_id", reqID)
	}
	event.Msg("falha ao processar requisição")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
