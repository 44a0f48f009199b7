// internal/acl/middleware.go
//
// Chi middleware that guards the admin API.
//
// Authenticate verifies the bearer token and attaches the principal;
// RequireRole then checks the principal's roles.  Missing or invalid
// credentials are 401, a valid token without the role is 403.

package acl

import (
	"net/http"
	"strings"

	"github.com/yanizio/perks/internal/auth"
	"github.com/yanizio/perks/internal/httpx"
	"github.com/yanizio/perks/internal/logger"
)

// TokenParser turns a raw bearer token into a principal.
type TokenParser interface {
	Parse(raw string) (*auth.Principal, error)
}

// Authenticate requires a valid `Authorization: Bearer` header.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="perks-admin"`)
				httpx.Error(r.Context(), w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			p, err := tokens.Parse(raw)
			if err != nil {
				logger.FromContext(r.Context()).Infow("admin token rejected", "err", err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="perks-admin", error="invalid_token"`)
				httpx.Error(r.Context(), w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole ensures the current principal possesses ANY of the supplied
// roles.
func RequireRole(names ...string) func(http.Handler) http.Handler {
	if len(names) == 0 {
		panic("acl.RequireRole: at least one role name must be supplied")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.FromContext(r.Context())
			if p == nil {
				httpx.Error(r.Context(), w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !p.HasRole(names...) {
				logger.FromContext(r.Context()).Infow("admin role missing",
					"subject", p.Subject, "roles", p.Roles, "want", names)
				httpx.Error(r.Context(), w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
