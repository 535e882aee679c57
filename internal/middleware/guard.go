package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/kaeldominion/the-dominus-code-sub001/internal/auth"
)

// GuardRule declares the role required under a path prefix. Rules are
// evaluated in order; the first matching prefix decides.
type GuardRule struct {
	PathPrefix string
	Role       auth.Role
}

// LoginPath is where guarded browser requests are redirected. The
// original target is preserved in the callbackUrl query parameter so
// the user lands back where they were headed after authenticating.
const LoginPath = "/login"

// Guard applies the rule list to every request. An unauthenticated or
// under-privileged hit on a guarded prefix is redirected to the login
// page; everything else passes through with the identity (when any)
// attached to the request context.
func (g *Gate) Guard(rules []GuardRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, guarded := match(rules, r.URL.Path)

			identity := g.resolver.CurrentUser(r)
			if identity != nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			}

			if !guarded {
				next.ServeHTTP(w, r)
				return
			}

			if identity == nil || !allows(rule.Role, identity.Role) {
				redirectToLogin(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func match(rules []GuardRule, path string) (GuardRule, bool) {
	for _, rule := range rules {
		if strings.HasPrefix(path, rule.PathPrefix) {
			return rule, true
		}
	}
	return GuardRule{}, false
}

func allows(required, held auth.Role) bool {
	if required == auth.RoleAdmin {
		return held == auth.RoleAdmin
	}
	return true // any authenticated identity satisfies RoleUser
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}
