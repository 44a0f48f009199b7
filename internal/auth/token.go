// internal/auth/token.go
//
// HS256 bearer tokens for the admin API.
//
// Context
// -------
// Admin tokens are minted out of band (cmd/admintoken) with the shared
// secret from `admin.jwt_secret`.  Roles may arrive as a single `role`
// string or a `roles` array; both are merged.
//
// Notes
// -----
// • Only HS256 is accepted, which rules out `alg: none` and key confusion.
// • Expiry is required.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the admin token payload.
type Claims struct {
	jwt.RegisteredClaims
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// ErrNoSubject is returned for a valid token without `sub`.
var ErrNoSubject = errors.New("auth: token has no subject")

// Tokens signs and verifies admin tokens.
type Tokens struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokens builds a Tokens for secret.  An empty issuer disables the
// issuer check.
func NewTokens(secret, issuer string) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Parse verifies raw and returns its principal.
func (t *Tokens) Parse(raw string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var c Claims
	if _, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if c.Subject == "" {
		return nil, ErrNoSubject
	}

	roles := append([]string(nil), c.Roles...)
	if c.Role != "" {
		roles = append(roles, c.Role)
	}
	return &Principal{Subject: c.Subject, Roles: roles}, nil
}

// Issue signs a token for subject with roles, valid for ttl.
func (t *Tokens) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	now := t.now()
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}
