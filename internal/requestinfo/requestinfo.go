//
//  internal/requestinfo/requestinfo.go
//
//  Per-request metadata for the form endpoints: the client address the
//  rate limiter keys on, a parsed user-agent, and optional geolocation.
//  These structs are inert and safe to log.
//
//  Dependencies
//  • github.com/avct/uasurfer           (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup)
//

package requestinfo

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UnknownAddress is the address used when no forwarding header is present.
// All such clients share a single rate-limit bucket.
const UnknownAddress = "unknown"

// UA holds the parsed user-agent properties.
type UA struct {
	Browser string // "Chrome", "Firefox", "Safari", ...
	Version string // "124.0.6367"
	OS      string // "MacOSX", "Windows", "Android", ...
	Device  string // "Computer", "Phone", "Tablet", ...
	IsBot   bool
}

// Geo holds IP-based geolocation hints.  Empty when no database is
// loaded or the address does not parse.
type Geo struct {
	CountryISO string
	City       string
}

// RequestInfo is stored on the request context by Enrich.
type RequestInfo struct {
	Address   string // canonical IP or UnknownAddress
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

//
//  -----------------------------
//  Client address
//  -----------------------------
//

// ClientAddress derives the rate-limit key from proxy headers: the first
// comma-separated entry of X-Forwarded-For, then X-Real-IP, else
// UnknownAddress.  The value is trusted as given; the site must sit behind
// a proxy that overwrites these headers.  Entries that do not parse as an
// IP address count as absent, so every key is a canonical address that
// fits the submission-log column.
func ClientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, ok := normalizeAddr(first); ok {
			return addr
		}
	}
	if addr, ok := normalizeAddr(r.Header.Get("X-Real-Ip")); ok {
		return addr
	}
	return UnknownAddress
}

// normalizeAddr parses s as an IP, optionally with a port, and returns its
// canonical form with any zone dropped and IPv4-mapped IPv6 unmapped.
func normalizeAddr(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAddrInput {
		return "", false
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		ap, perr := netip.ParseAddrPort(s)
		if perr != nil {
			return "", false
		}
		ip = ap.Addr()
	}
	return ip.WithZone("").Unmap().String(), true
}

// maxAddrInput bounds what normalizeAddr will try to parse.
const maxAddrInput = 128

//
//  -----------------------------
//  Geolocation
//  -----------------------------
//

// geoReader is the optional MaxMind handle, safe for concurrent reads.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens the GeoLite2-City database.  An empty path leaves
// geolocation disabled.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	if old := geoReader.Swap(r); old != nil {
		old.Close()
	}
	return nil
}

// CloseGeo releases the database, if any.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		r.Close()
	}
}

func lookupGeo(addr string) Geo {
	r := geoReader.Load()
	ip := net.ParseIP(addr)
	if r == nil || ip == nil {
		return Geo{}
	}
	rec, err := r.City(ip)
	if err != nil {
		return Geo{}
	}
	return Geo{CountryISO: rec.Country.IsoCode, City: rec.City.Names["en"]}
}

//
//  -----------------------------
//  User-agent
//  -----------------------------
//

func parseUA(header string) UA {
	if header == "" {
		return UA{}
	}
	u := uasurfer.Parse(header)
	return UA{
		Browser: u.Browser.Name.StringTrimPrefix(),
		Version: versionString(u.Browser.Version),
		OS:      u.OS.Name.StringTrimPrefix(),
		Device:  u.DeviceType.StringTrimPrefix(),
		IsBot:   u.IsBot(),
	}
}

// versionString renders "major.minor.patch" without trailing zero parts.
func versionString(v uasurfer.Version) string {
	parts := []string{strconv.Itoa(v.Major), strconv.Itoa(v.Minor), strconv.Itoa(v.Patch)}
	for len(parts) > 1 && parts[len(parts)-1] == "0" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

//
//  -----------------------------
//  Context plumbing
//  -----------------------------
//

type ctxKey struct{}

// WithInfo returns a child context carrying info.
func WithInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the value stored by Enrich, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// AddressFrom returns the enriched client address, recomputing it from r
// when Enrich has not run.
func AddressFrom(r *http.Request) string {
	if info := FromContext(r.Context()); info != nil {
		return info.Address
	}
	return ClientAddress(r)
}
