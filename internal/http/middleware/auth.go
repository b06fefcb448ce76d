package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pacuit/conferencia/internal/auth"
)

type contextKey string

const ContextKeySubject contextKey = "subject"

// RequireAdmin valida o JWT administrativo; manager nulo deixa as rotas abertas.
func RequireAdmin(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if jwtManager == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "token inválido")
				return
			}
			if claims.Role != auth.RoleAdmin {
				writeError(w, http.StatusForbidden, codeForbidden, "acesso restrito a administradores")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}
