package auth

import (
	"log/slog"
	"net/http"

	"github.com/serfi-platform/user-management/internal/transport"
	"github.com/serfi-platform/user-management/internal/user"
	"github.com/serfi-platform/user-management/pkg/logger"
)

// PermissionChecker guards routes behind a projected permission. It reads the
// authorization view placed in the context by AuthMiddleware, so it must be
// mounted inside that middleware.
type PermissionChecker struct {
	base *transport.BaseHandler
}

func NewPermissionChecker() *PermissionChecker {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &PermissionChecker{base: transport.NewBaseHandler(lg)}
}

// Require returns a middleware that rejects callers lacking the permission.
func (p *PermissionChecker) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view, ok := UserFromContext(r.Context())
			if !ok {
				p.base.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !view.HasPermission(permission) {
				p.base.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (p *PermissionChecker) RequireCreateUser() func(http.Handler) http.Handler {
	return p.Require(user.PermCreateUser)
}

func (p *PermissionChecker) RequireEditUser() func(http.Handler) http.Handler {
	return p.Require(user.PermEditUser)
}

func (p *PermissionChecker) RequireDeleteUser() func(http.Handler) http.Handler {
	return p.Require(user.PermDeleteUser)
}

func (p *PermissionChecker) RequireReadUsers() func(http.Handler) http.Handler {
	return p.Require(user.PermReadUsers)
}

func (p *PermissionChecker) RequireReadOwnData() func(http.Handler) http.Handler {
	return p.Require(user.PermReadOwnData)
}
