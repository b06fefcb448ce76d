package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Dummy devolve o slug e o corpo recebidos, sem envelope.
func (h *Handler) Dummy(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := decodeJSON(w, r, &body); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido")
		return
	}

	writeRaw(w, http.StatusOK, map[string]any{
		"slug": chi.URLParam(r, "slug"),
		"body": body,
	})
}
