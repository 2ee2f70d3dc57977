package middleware

import (
	"context"

	"github.com/angelmondragon/packfinderz-carts/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxEmail  contextKey = "user_email"
	ctxRole   contextKey = "user_role"
)

// User is the authenticated requester.
type User struct {
	ID    string
	Email string
	Role  enums.UserRole
}

// IsPremium reports whether the requester holds the premium role.
func (u User) IsPremium() bool {
	return u.Role == enums.UserRolePremium
}

// WithUser injects the authenticated requester into the context.
func WithUser(ctx context.Context, user User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, user.ID)
	ctx = context.WithValue(ctx, ctxEmail, user.Email)
	return context.WithValue(ctx, ctxRole, user.Role)
}

// UserFromContext returns the requester stored by Auth.
func UserFromContext(ctx context.Context) (User, bool) {
	if ctx == nil {
		return User{}, false
	}
	id, ok := ctx.Value(ctxUserID).(string)
	if !ok || id == "" {
		return User{}, false
	}
	email, _ := ctx.Value(ctxEmail).(string)
	role, _ := ctx.Value(ctxRole).(enums.UserRole)
	return User{ID: id, Email: email, Role: role}, true
}
