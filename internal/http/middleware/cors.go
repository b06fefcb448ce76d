package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultAllowHeaders = "Authorization, Content-Type, X-Requested-With"
	allowMethods        = "GET,POST,PUT,DELETE,OPTIONS"
)

// CORS aplica a política de origens configurada em ALLOW_ORIGINS.
// Suporta:
// - "*" libera qualquer origem, sem credenciais
// - correspondência exata do Origin (ex.: https://pacuit.org)
// - wildcard de subdomínio quando a entrada começar com *. (ex.: *.pacuit.org)
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowExact := make(map[string]struct{}, len(allowedOrigins))
	var allowSuffix []string // apenas host suffix (sem esquema), começando com .

	for _, entry := range allowedOrigins {
		e := strings.TrimSpace(entry)
		switch {
		case e == "":
			continue
		case e == "*":
			allowAll = true
		case strings.HasPrefix(e, "*."):
			allowSuffix = append(allowSuffix, strings.ToLower(strings.TrimPrefix(e, "*")))
		default:
			allowExact[strings.TrimRight(e, "/")] = struct{}{}
		}
	}

	isAllowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		if _, ok := allowExact[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(u.Hostname())
		for _, suf := range allowSuffix {
			// exige subdomínio: host != raiz do sufixo
			if strings.HasSuffix(host, suf) && host != strings.TrimPrefix(suf, ".") {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := allowAll || isAllowed(origin)
			if allowed {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				headers := defaultAllowHeaders
				if requested := r.Header.Get("Access-Control-Request-Headers"); allowAll && requested != "" {
					headers = requested
				}
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
