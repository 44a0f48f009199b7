// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
Runs after the request logger so the debug line below carries the
request_id.  For every request it:

  1. Derives the client address from X-Forwarded-For / X-Real-IP.
  2. Parses the User-Agent header.
  3. Performs a GeoLite2 lookup when a database is loaded.
  4. Stores the result on the request context for the form pipeline.

Notes
-----
  • Nothing here rejects a request; bot flags are informational only.
*/
package requestinfo

import (
	"net/http"
	"time"

	"github.com/yanizio/perks/internal/logger"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := ClientAddress(r)
		info := &RequestInfo{
			Address:   addr,
			UA:        parseUA(r.UserAgent()),
			Geo:       lookupGeo(addr),
			Timestamp: time.Now().UTC(),
		}

		logger.FromContext(r.Context()).Debugw("request info",
			"client_address", info.Address,
			"country", info.Geo.CountryISO,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}
