package middleware

import (
	"net/http"
	"strings"

	"github.com/barribox/barribox-backend/api/responses"
	pkgAuth "github.com/barribox/barribox-backend/pkg/auth"
	"github.com/barribox/barribox-backend/pkg/auth/session"
	"github.com/barribox/barribox-backend/pkg/config"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

// UserLookup returns the current user record so role switches made in
// another session are visible immediately.
type UserLookup interface {
	User(id string) (models.User, bool)
}

// Auth validates a bearer token, resolves its session and seeds the request
// context with the user.
func Auth(cfg config.JWTConfig, resolver session.Resolver, lookup UserLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			user, err := resolver.Resolve(r.Context(), claims.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}
			if user == nil || user.ID != claims.UserID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
				return
			}
			current := *user
			if lookup != nil {
				if fresh, ok := lookup.User(user.ID); ok {
					current = fresh
				}
			}

			ctx := WithUser(r.Context(), current)
			ctx = WithSessionID(ctx, claims.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, current.ID)
				if role := current.RoleOrEmpty(); role != "" {
					ctx = logg.WithActorRole(ctx, string(role))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
