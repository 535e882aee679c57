package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
)

// ErrInvalidToken covers every verification failure. Expired, malformed
// and forged tokens are deliberately indistinguishable to callers so no
// rejection reason leaks to the client.
var ErrInvalidToken = errors.New("token: invalid")

// TTL is the fixed credential lifetime. Tokens are immutable once
// signed; a claim change means issuing a new token. There is no
// server-side revocation before natural expiry.
const TTL = 30 * 24 * time.Hour

type claims struct {
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
	Role  string  `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed session credentials. The signing
// secret is explicit construction-time configuration, loaded once at
// startup.
type Codec struct {
	secret  []byte
	nowFunc func() time.Time // overridable in tests
}

func NewCodec(secret string) *Codec {
	return &Codec{
		secret:  []byte(secret),
		nowFunc: time.Now,
	}
}

// Issue signs a credential for the identity with a 30-day expiry and an
// issued-at timestamp. Pure computation, no side effects.
func (c *Codec) Issue(id auth.Identity) (string, error) {
	now := c.nowFunc()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: id.Email,
		Name:  id.Name,
		Role:  string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry and returns the embedded
// identity. Every failure path returns ErrInvalidToken and nothing else.
func (c *Codec) Verify(raw string) (*auth.Identity, error) {
	var cl claims

	_, err := jwt.ParseWithClaims(
		raw,
		&cl,
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &auth.Identity{
		ID:    cl.Subject,
		Email: cl.Email,
		Name:  cl.Name,
		Role:  auth.Role(cl.Role),
	}, nil
}
