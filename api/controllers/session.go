package controllers

import (
	"context"
	"net/http"

	"github.com/barribox/barribox-backend/api/middleware"
	"github.com/barribox/barribox-backend/api/responses"
	"github.com/barribox/barribox-backend/api/validators"
	"github.com/barribox/barribox-backend/internal/users"
	"github.com/barribox/barribox-backend/pkg/auth/session"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

// SessionManager starts, refreshes and revokes login sessions.
type SessionManager interface {
	Start(ctx context.Context, user models.User) (*session.Started, error)
	Refresh(ctx context.Context, sessionID string, user models.User) error
	Revoke(ctx context.Context, sessionID string) error
}

type registerRequest struct {
	Name         string `json:"name" validate:"required,max=60,personname"`
	Phone        string `json:"phone" validate:"required,phone9"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=sender courier"`
	DeviceID     string `json:"deviceId" validate:"omitempty,max=128"`
}

type loginRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type sessionResponse struct {
	User    *models.User     `json:"user"`
	Session *session.Started `json:"session"`
}

// SessionRegister creates the user and logs them in.
func SessionRegister(svc users.Service, sessions SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseUserRole(req.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		user, err := svc.Register(r.Context(), users.RegisterInput{
			Name:         validators.SanitizeString(req.Name, 60),
			Phone:        req.Phone,
			Neighborhood: req.Neighborhood,
			Role:         role,
			DeviceID:     req.DeviceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		started, err := sessions.Start(r.Context(), *user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{User: user, Session: started})
	}
}

// SessionUsers lists registered users for the login picker.
func SessionUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := validators.ParseQueryEnum(r, "role", enums.ParseUserRole)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.ListByRole(role))
	}
}

func SessionLogin(svc users.Service, sessions SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Get(req.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		started, err := sessions.Start(r.Context(), *user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session"))
			return
		}
		if logg != nil {
			logg.Info(logg.WithUserID(r.Context(), user.ID), "session.started")
		}
		responses.WriteSuccess(w, sessionResponse{User: user, Session: started})
	}
}

// SessionLogout clears the session key so the token stops resolving.
func SessionLogout(sessions SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		if err := sessions.Revoke(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"loggedOut": true})
	}
}
