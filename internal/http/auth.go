package http

import (
	"net/http"
	"strings"
	"time"
)

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueToken autentica o operador e devolve um token de acesso.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil {
		WriteError(w, http.StatusNotFound, CodeNotFound, "login administrativo desabilitado")
		return
	}

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido")
		return
	}
	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		WriteError(w, http.StatusBadRequest, CodeValidation, "username e password são obrigatórios")
		return
	}

	token, expiresAt, err := h.admin.Login(strings.TrimSpace(payload.Username), payload.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}
