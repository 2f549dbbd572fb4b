package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ocemtechies/memberhub/internal/identity"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/pkg/cookie"
)

// SessionCookie is the name of the signed cookie carrying the access
// token.
const SessionCookie = "mh_session"

// publicRoutes are reachable without a session. "/" matches exactly; the
// rest match themselves and their subpaths.
var publicRoutes = []string{
	"/",
	"/about",
	"/contact",
	"/auth/login",
	"/auth/register",
	"/auth/otp-login",
	"/auth/callback",
	"/resources",
	"/events",
}

// authPages redirect to the dashboard when a session already exists.
// The callback is deliberately absent: it must run its code exchange even
// for signed-in users.
var authPages = []string{
	"/auth/login",
	"/auth/register",
	"/auth/otp-login",
	"/auth/reset-password",
}

func isPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if route == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

func isAuthPage(path string) bool {
	for _, route := range authPages {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

type claimsContextKey struct{}

// ClaimsFromContext returns the token claims the access middleware stored
// for the request, if any.
func ClaimsFromContext(ctx context.Context) (*identity.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*identity.Claims)
	return claims, ok
}

// AccessGuard enforces the route policy on page routes: public routes
// pass, auth pages bounce signed-in users to the dashboard, everything
// else requires a session, and the admin area requires the admin role.
// Token checks here are stateless; a revoked-but-unexpired token passes
// until any full session check catches it.
type AccessGuard struct {
	cookies  *cookie.Manager
	provider identity.Provider
}

func NewAccessGuard(cookies *cookie.Manager, provider identity.Provider) *AccessGuard {
	return &AccessGuard{cookies: cookies, provider: provider}
}

// claims resolves the request's session claims, or nil when the cookie is
// absent, unsigned, or carries a dead token.
func (g *AccessGuard) claims(r *http.Request) *identity.Claims {
	token, err := g.cookies.GetSigned(r, SessionCookie)
	if err != nil {
		return nil
	}
	claims, err := g.provider.Authenticate(token)
	if err != nil {
		return nil
	}
	return claims
}

// Handler is the page-route middleware.
func (g *AccessGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		claims := g.claims(r)

		if isPublicRoute(path) {
			if claims != nil && isAuthPage(path) {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
			return
		}

		if claims == nil {
			loginURL := "/auth/login?redirectTo=" + url.QueryEscape(path)
			http.Redirect(w, r, loginURL, http.StatusFound)
			return
		}

		if strings.HasPrefix(path, "/admin") && claims.Role != string(profile.RoleAdmin) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// RequireUser is the API-route middleware: a missing or invalid session
// yields 401 instead of a redirect.
func (g *AccessGuard) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := g.claims(r)
		if claims == nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func withClaims(ctx context.Context, claims *identity.Claims) context.Context {
	if claims == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsContextKey{}, claims)
}
