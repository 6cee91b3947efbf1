package httpapi

import (
	"net/http"
	"strings"

	"pulseboard.org/internal/auth"
	"pulseboard.org/internal/session"
)

// Route classes for the guard. Prefix matching is deliberate: /dashboard
// covers every page under it.
var protectedPrefixes = []string{
	"/dashboard",
	"/analytics",
	"/commerce",
	"/crm",
	"/admin",
}

func isProtectedPath(path string) bool {
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isAuthPath(path string) bool {
	return path == "/login" || path == "/register"
}

// Guard classifies page routes and redirects before the mux sees them.
//
// A present primary session cookie short-circuits protected routes without
// validation: the primary session layer downstream owns that check, and
// rejecting here on a cookie this service cannot read would lock those
// users out. Everything else rides on the fallback token. API routes pass
// through untouched; their handlers answer 401 instead of redirecting.
func (a *API) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		protected := isProtectedPath(path)
		authPage := isAuthPath(path)
		if !protected && !authPage {
			next.ServeHTTP(w, r)
			return
		}

		primary := session.PrimaryCookiePresent(r)
		if primary && protected {
			next.ServeHTTP(w, r)
			return
		}

		res := a.sessions.ResolveFallback(r)

		if protected && !res.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
			return
		}

		if strings.HasPrefix(path, "/admin") {
			if !res.Authenticated() || res.Session.User.Role != auth.RoleAdmin {
				http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
				return
			}
		}

		if authPage && (res.Authenticated() || primary) {
			http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}
