package middleware

import (
	"context"
	"net/http"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/session"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the authenticated identity placed by the
// guard middleware. Nil when the request is anonymous.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Gate enforces authentication and role preconditions. It resolves the
// session itself and surfaces distinguishable failure kinds; mapping
// them to HTTP status codes is the caller's job.
type Gate struct {
	resolver *session.Resolver
}

func NewGate(resolver *session.Resolver) *Gate {
	return &Gate{resolver: resolver}
}

// RequireUser returns the authenticated identity, or
// auth.ErrUnauthorized when the request carries no valid session.
func (g *Gate) RequireUser(r *http.Request) (*auth.Identity, error) {
	identity := g.resolver.CurrentUser(r)
	if identity == nil {
		return nil, auth.ErrUnauthorized
	}
	return identity, nil
}

// RequireAdmin returns the authenticated identity when it holds the
// admin role. No session at all is auth.ErrUnauthorized; a valid
// session with an insufficient role is auth.ErrForbidden.
func (g *Gate) RequireAdmin(r *http.Request) (*auth.Identity, error) {
	identity, err := g.RequireUser(r)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	return identity, nil
}
