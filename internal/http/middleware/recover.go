package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Recover garante resposta sanitizada em caso de panic.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().Interface("panic", rec).Str("request_id", middleware.GetReqID(r.Context())).Msg("panic recuperado")
				writeError(w, http.StatusInternalServerError, codeInternal, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
