package middleware

import (
	"encoding/json"
	"net/http"
)

const (
	codeInternal     = 7000
	codeUnauthorized = 7003
	codeForbidden    = 7009
	codeRateLimit    = 7010
)

func writeError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"errors": []map[string]any{{
			"code":    code,
			"message": message,
		}},
	})
}
