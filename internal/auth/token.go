package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "pulseboard"

// DefaultTokenTTL is the fallback session token lifetime.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the payload carried by the fallback session token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the fallback session tokens (HS256).
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec builds a token codec. An empty secret is refused so the service
// fails closed instead of signing with a guessable default.
func NewCodec(secret string) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: token secret is not configured")
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// WithClock overrides the codec time source. Test use only.
func (c *Codec) WithClock(fn func() time.Time) *Codec {
	if fn != nil {
		c.now = fn
	}
	return c
}

// Sign issues a token for the user with the given lifetime.
func (c *Codec) Sign(user User, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := c.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates the token and returns its claims, or nil on any failure:
// malformed input, wrong algorithm, bad signature, or expiry. Callers fall
// through to "unauthenticated" without branching on the cause.
func (c *Codec) Verify(token string) *Claims {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil
	}
	if err := c.validateClaims(claims); err != nil {
		return nil
	}
	return claims
}

// Session reconstructs the session descriptor carried by valid claims.
func (cl *Claims) Session() Session {
	var expires time.Time
	if cl.ExpiresAt != nil {
		expires = cl.ExpiresAt.Time
	}
	return Session{
		User: User{
			ID:    cl.Subject,
			Email: cl.Email,
			Name:  cl.Name,
			Role:  cl.Role,
		},
		ExpiresAt: expires,
	}
}

func (c *Codec) validateClaims(claims *Claims) error {
	if claims.Issuer != issuer {
		return ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return ErrInvalidToken
	}
	now := c.now().UTC()
	if now.After(claims.ExpiresAt.Time) {
		return ErrInvalidToken
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return ErrInvalidToken
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return ErrInvalidToken
	}
	return nil
}
