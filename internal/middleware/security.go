// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects headers suited to a JSON API on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years)
//   • Content-Security-Policy   –  nothing loads, nothing frames
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  no Referer leaves the API
//   • Cache-Control             –  submissions and admin data are never cached
//
// Notes
// -----
// • Headers are set before next runs; a handler may still override any of
//   them.

package middleware

import "net/http"

var securityHeaders = [][2]string{
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
	{"Cache-Control", "no-store"},
}

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			if h.Get(kv[0]) == "" {
				h.Set(kv[0], kv[1])
			}
		}
		next.ServeHTTP(w, r)
	})
}
