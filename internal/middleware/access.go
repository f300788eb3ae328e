package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/training-portal/internal/model"
)

// Page paths the guard routes around.
const (
	LoginPath         = "/login"
	ResetPasswordPath = "/reset-password"
	SetPasswordPath   = "/set-password"
	AdminHomePath     = "/admin/dashboard"
	EmployeeHomePath  = "/courses"
	AdminPrefix       = "/admin"
)

// publicPaths are reachable without a session.
var publicPaths = []string{LoginPath, ResetPasswordPath, SetPasswordPath}

// AccessController classifies every page request before any handler runs and
// decides pass-through or redirect from the path and the session alone. The
// checks run in a fixed order: authentication first, then role, then root.
// Keeping the guard at this boundary means a mis-rendered link can never
// expose an admin page to an employee session.
type AccessController struct {
	auth *AuthMiddleware
}

func NewAccessController(auth *AuthMiddleware) *AccessController {
	return &AccessController{auth: auth}
}

// Guard wraps the whole page surface. API and asset paths pass through
// untouched; API routes carry their own Authenticate middleware.
func (a *AccessController) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// 1. Static assets, API routes and anything with a file extension
		// are not pages; no classification applies.
		if isInternalPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		// Verification failures look exactly like a missing cookie here, so
		// the response never reveals why a session was rejected.
		claims := a.auth.SessionFromRequest(r)

		// 2. No session on a private page: to login, keeping the requested
		// path so the client can come back after authenticating.
		if claims == nil {
			if !isPublicPath(path) {
				redirect(w, r, LoginPath+"?callbackUrl="+url.QueryEscape(path))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		// 3. Authenticated users have no business on the public pages.
		if isPublicPath(path) {
			redirect(w, r, RoleHome(claims.Role))
			return
		}

		// 4. Admin pages require the admin role.
		if strings.HasPrefix(path, AdminPrefix) && claims.Role != model.RoleAdmin {
			redirect(w, r, EmployeeHomePath)
			return
		}

		// 5. Root lands on the role home.
		if path == "/" {
			redirect(w, r, RoleHome(claims.Role))
			return
		}

		// 6. Pass through with the verified identity attached.
		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleHome is the landing page for a role.
func RoleHome(role model.Role) string {
	if role == model.RoleAdmin {
		return AdminHomePath
	}
	return EmployeeHomePath
}

func isInternalPath(path string) bool {
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/uploads/") ||
		strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/swagger/") ||
		strings.Contains(path, ".")
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
