package middleware

import (
	"net/http"
	"strings"
)

// The review API only serves GET and POST, so preflight responses advertise
// exactly that surface.
const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type"
	corsMaxAge       = "600"
)

type originAllowlist struct {
	any     bool
	origins map[string]struct{}
}

func newOriginAllowlist(list []string) originAllowlist {
	a := originAllowlist{origins: make(map[string]struct{}, len(list))}
	for _, origin := range list {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			a.any = true
		default:
			a.origins[origin] = struct{}{}
		}
	}
	return a
}

func (a originAllowlist) contains(origin string) bool {
	if a.any {
		return true
	}
	_, ok := a.origins[origin]
	return ok
}

// CORS restricts cross-origin browser access to the configured dashboard
// origins. "*" opens the API to any origin, intended for local development.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := newOriginAllowlist(allowedOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Responses differ by Origin; caches must key on it either way.
			w.Header().Add("Vary", "Origin")

			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" && allowed.contains(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
