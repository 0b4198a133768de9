package auth

import (
	"context"

	"github.com/serfi-platform/user-management/internal/user"
)

type ctxKey string

const contextUserKey ctxKey = "authUser"

// ContextWithUser stores the authenticated user's authorization view in the
// request context.
func ContextWithUser(ctx context.Context, view *user.AuthorizationView) context.Context {
	return context.WithValue(ctx, contextUserKey, view)
}

// UserFromContext returns the authenticated user's authorization view, if any.
func UserFromContext(ctx context.Context) (*user.AuthorizationView, bool) {
	view, ok := ctx.Value(contextUserKey).(*user.AuthorizationView)
	return view, ok
}
