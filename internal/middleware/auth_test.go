package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/session"
	"github.com/kaeldominion/the-dominus-code-sub001/internal/token"
)

func newTestGate(t *testing.T) (*Gate, *token.Codec) {
	t.Helper()
	codec := token.NewCodec("test-secret")
	return NewGate(session.NewResolver(codec)), codec
}

func requestAs(t *testing.T, codec *token.Codec, role auth.Role, target string) *http.Request {
	t.Helper()
	raw, err := codec.Issue(auth.Identity{ID: "u-1", Email: "a@b.c", Role: role})
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: raw})
	return req
}

func TestRequireUserNoSession(t *testing.T) {
	gate, _ := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := gate.RequireUser(req)
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRequireUserValidSession(t *testing.T) {
	gate, codec := newTestGate(t)

	identity, err := gate.RequireUser(requestAs(t, codec, auth.RoleUser, "/"))
	if err != nil {
		t.Fatalf("RequireUser() error: %v", err)
	}
	if identity.ID != "u-1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestRequireAdminDistinguishesFailureKinds(t *testing.T) {
	gate, codec := newTestGate(t)

	// No session at all: Unauthorized.
	_, err := gate.RequireAdmin(httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("no session: expected ErrUnauthorized, got %v", err)
	}

	// Valid session, insufficient role: Forbidden, not Unauthorized.
	_, err = gate.RequireAdmin(requestAs(t, codec, auth.RoleUser, "/"))
	if !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("non-admin: expected ErrForbidden, got %v", err)
	}
	if errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("ErrForbidden must not match ErrUnauthorized")
	}

	// Admin passes.
	identity, err := gate.RequireAdmin(requestAs(t, codec, auth.RoleAdmin, "/"))
	if err != nil {
		t.Fatalf("admin: RequireAdmin() error: %v", err)
	}
	if !identity.IsAdmin() {
		t.Fatalf("expected admin identity, got %+v", identity)
	}
}

func adminRules() []GuardRule {
	return []GuardRule{{PathPrefix: "/admin", Role: auth.RoleAdmin}}
}

func TestGuardRedirectsAnonymousWithCallback(t *testing.T) {
	gate, _ := newTestGate(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not run for guarded anonymous request")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/applications?page=2", nil)

	gate.Guard(adminRules())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusFound)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	if loc.Path != LoginPath {
		t.Fatalf("redirect path: got %q, want %q", loc.Path, LoginPath)
	}
	if got := loc.Query().Get("callbackUrl"); got != "/admin/applications?page=2" {
		t.Fatalf("callbackUrl: got %q", got)
	}
}

func TestGuardRedirectsNonAdmin(t *testing.T) {
	gate, codec := newTestGate(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler must not run for non-admin request")
	})

	rec := httptest.NewRecorder()
	gate.Guard(adminRules())(next).ServeHTTP(rec, requestAs(t, codec, auth.RoleUser, "/admin"))

	if rec.Code != http.StatusFound {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusFound)
	}
}

func TestGuardPassesAdminAndAttachesIdentity(t *testing.T) {
	gate, codec := newTestGate(t)

	var seen *auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	gate.Guard(adminRules())(next).ServeHTTP(rec, requestAs(t, codec, auth.RoleAdmin, "/admin/dashboard"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if seen == nil || !seen.IsAdmin() {
		t.Fatalf("expected admin identity in context, got %+v", seen)
	}
}

func TestGuardIgnoresUnguardedPaths(t *testing.T) {
	gate, _ := newTestGate(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/manifesto", nil)
	gate.Guard(adminRules())(next).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("unguarded path must pass through anonymously")
	}
}
