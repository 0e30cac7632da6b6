package middleware

import (
	"context"

	"github.com/barribox/barribox-backend/pkg/models"
)

type contextKey string

const (
	ctxUser      contextKey = "user"
	ctxSessionID contextKey = "session_id"
)

// UserFromContext returns the authenticated user seeded by Auth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	if ctx == nil {
		return models.User{}, false
	}
	u, ok := ctx.Value(ctxUser).(models.User)
	return u, ok
}

func UserIDFromContext(ctx context.Context) string {
	u, _ := UserFromContext(ctx)
	return u.ID
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithUser injects the user into the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUser, user)
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}
