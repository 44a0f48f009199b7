// internal/auth/context.go
//
// Authenticated admin principal carried on the request context.
//
// Usage
// -----
//     ctx = auth.WithPrincipal(ctx, &auth.Principal{Subject: "sam", Roles: []string{"admin"}})
//     p := auth.FromContext(ctx)        // nil when unauthenticated
//     p.HasRole("admin")                // true
//
// Notes
// -----
// • Principals come only from a verified bearer token; see token.go.

package auth

import "context"

// Principal is the caller behind a verified admin token.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether p carries any of names.  A nil principal has no
// roles.
func (p *Principal) HasRole(names ...string) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Roles {
		for _, want := range names {
			if have == want {
				return true
			}
		}
	}
	return false
}

// principalKey is unexported to avoid context-key collisions.
type principalKey struct{}

// WithPrincipal returns a new context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by the acl middleware, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
