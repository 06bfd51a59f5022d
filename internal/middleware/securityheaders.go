// AngelaMos | 2026
// securityheaders.go

package middleware

import "net/http"

func SecurityHeaders(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")

			if production {
				h.Set(
					"Strict-Transport-Security",
					"max-age=63072000; includeSubDomains",
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}
