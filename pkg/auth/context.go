package auth

import (
	"context"

	apperrors "todobackend/pkg/errors"
)

// UserContext carries the authenticated caller's identity through a request.
type UserContext struct {
	UserID string
	Email  string
}

// contextKey is a private type to avoid context key collisions
type contextKey string

const userContextKey contextKey = "user_context"

// SetUserInContext adds the user context to a request context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the user context from a request context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil || user.UserID == "" {
		return nil, apperrors.NewUnauthorizedError("no authenticated user in request context")
	}
	return user, nil
}
