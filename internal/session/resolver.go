package session

import (
	"net/http"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/token"
)

// Resolver turns an inbound request into an authenticated identity, or
// nil for anonymous. It is the ONLY place the session cookie is read.
type Resolver struct {
	codec *token.Codec
}

func NewResolver(codec *token.Codec) *Resolver {
	return &Resolver{codec: codec}
}

// CurrentUser resolves the identity for a single inbound request.
// Missing cookie, malformed token, bad signature and expiry all degrade
// to nil so downstream code treats unauthenticated uniformly. It never
// errors.
func (r *Resolver) CurrentUser(req *http.Request) *auth.Identity {
	cookie, err := req.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	identity, err := r.codec.Verify(cookie.Value)
	if err != nil {
		return nil
	}

	return identity
}
