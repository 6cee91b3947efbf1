// Package session resolves the authentication state of an inbound request
// from its cookies. Two paths exist: a primary session managed by an
// external framework (opaque to this service) and a fallback signed token
// issued by this service. The resolver is pure: it reads cookies, performs
// no I/O, and returns identical results for identical requests.
package session

import (
	"context"
	"net/http"

	"pulseboard.org/internal/auth"
)

// Cookie names at the server boundary.
const (
	PrimaryCookie       = "next-auth.session-token"
	PrimarySecureCookie = "__Secure-next-auth.session-token"
	FallbackCookie      = "auth-token"
)

// Source tags where a resolution came from. Primary always wins over
// Fallback when both cookies are present; the two are never merged.
type Source int

const (
	SourceNone Source = iota
	SourcePrimary
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceFallback:
		return "fallback"
	}
	return "none"
}

// Resolution is the terminal outcome for one request.
type Resolution struct {
	Source  Source
	Session auth.Session
}

// Authenticated reports whether the request carries a valid session.
func (r Resolution) Authenticated() bool {
	return r.Source != SourceNone
}

// PrimaryVerifier validates an opaque primary session cookie against the
// external session store. Implementations are injected by the deployment;
// when none is configured, primary cookies cannot resolve to a user here
// and only the route guard's presence short-circuit applies to them.
type PrimaryVerifier interface {
	Verify(ctx context.Context, cookieValue string) (*auth.Session, error)
}

// Resolver determines the session state of a request.
type Resolver struct {
	codec   *auth.Codec
	primary PrimaryVerifier
}

// NewResolver builds a resolver around the fallback token codec. primary
// may be nil.
func NewResolver(codec *auth.Codec, primary PrimaryVerifier) *Resolver {
	return &Resolver{codec: codec, primary: primary}
}

// PrimaryCookiePresent reports whether the request carries either variant
// of the primary session cookie. The guard layer uses presence alone and
// defers validation downstream.
func PrimaryCookiePresent(r *http.Request) bool {
	if c, err := r.Cookie(PrimaryCookie); err == nil && c.Value != "" {
		return true
	}
	if c, err := r.Cookie(PrimarySecureCookie); err == nil && c.Value != "" {
		return true
	}
	return false
}

// Resolve walks the two authentication paths in precedence order. It never
// returns an error: every failure mode collapses to an unauthenticated
// resolution so callers have a single branch.
func (rs *Resolver) Resolve(r *http.Request) Resolution {
	if rs.primary != nil {
		if value := primaryCookieValue(r); value != "" {
			if sess, err := rs.primary.Verify(r.Context(), value); err == nil && sess != nil {
				return Resolution{Source: SourcePrimary, Session: *sess}
			}
		}
	}
	return rs.resolveFallback(r)
}

// ResolveFallback skips the primary path entirely. The route guard uses it
// after the presence short-circuit has already handled primary cookies.
func (rs *Resolver) ResolveFallback(r *http.Request) Resolution {
	return rs.resolveFallback(r)
}

func (rs *Resolver) resolveFallback(r *http.Request) Resolution {
	c, err := r.Cookie(FallbackCookie)
	if err != nil || c.Value == "" {
		return Resolution{}
	}
	claims := rs.codec.Verify(c.Value)
	if claims == nil {
		return Resolution{}
	}
	return Resolution{Source: SourceFallback, Session: claims.Session()}
}

func primaryCookieValue(r *http.Request) string {
	if c, err := r.Cookie(PrimaryCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if c, err := r.Cookie(PrimarySecureCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
