// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS returns a wrapper that issues a 308 Permanent Redirect to the
// HTTPS version of any plain-HTTP request.  TLS terminated at a proxy is
// recognised through X-Forwarded-Proto.  localhost is exempt, and a
// disabled wrapper passes everything through.
func ForceHTTPS(enabled bool) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		if !enabled {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHTTPS(r) || stripPort(r.Host) == "localhost" {
				h.ServeHTTP(w, r)
				return
			}
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.LastIndexByte(h, ':'); i != -1 && !strings.HasSuffix(h, "]") {
		return h[:i]
	}
	return h
}
