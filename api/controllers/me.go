package controllers

import (
	"net/http"

	"github.com/barribox/barribox-backend/api/middleware"
	"github.com/barribox/barribox-backend/api/responses"
	"github.com/barribox/barribox-backend/api/validators"
	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/internal/users"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/barribox/barribox-backend/pkg/pagination"
)

type profileRequest struct {
	Neighborhood  *string             `json:"neighborhood" validate:"omitempty,min=1"`
	PaymentMethod *string             `json:"paymentMethod" validate:"omitempty,max=40"`
	Preferences   *models.Preferences `json:"preferences"`
}

func MeGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func MeUpdate(svc users.Service, sessions SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req profileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateProfile(r.Context(), user.ID, users.ProfileUpdate{
			Neighborhood:  req.Neighborhood,
			PaymentMethod: req.PaymentMethod,
			Preferences:   req.Preferences,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		refreshSession(r, sessions, *updated, logg)
		responses.WriteSuccess(w, updated)
	}
}

// MeSwitchRole flips between sender and courier.
func MeSwitchRole(svc users.Service, sessions SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.SwitchRole(r.Context(), user.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		refreshSession(r, sessions, *updated, logg)
		responses.WriteSuccess(w, updated)
	}
}

func MeHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		history := svc.History(actor)
		paged, err := pagination.Paginate(history.Orders, page, orderCursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		history.Orders = paged.Items
		responses.WriteSuccessWithMeta(w, history, pagination.Meta{NextCursor: paged.NextCursor, Count: len(paged.Items)})
	}
}

func orderCursor(o models.Order) pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
}

func refreshSession(r *http.Request, sessions SessionManager, user models.User, logg *logger.Logger) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" || sessions == nil {
		return
	}
	if err := sessions.Refresh(r.Context(), sessionID, user); err != nil && logg != nil {
		logg.Error(r.Context(), "session.refresh_failed", err)
	}
}
