package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/barribox/barribox-backend/api/middleware"
	"github.com/barribox/barribox-backend/internal/orders"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/models"
)

func currentUser(r *http.Request) (models.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok || user.ID == "" {
		return models.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return user, nil
}

func currentActor(r *http.Request) (orders.Actor, error) {
	user, err := currentUser(r)
	if err != nil {
		return nil, err
	}
	return orders.ActorFor(user)
}

func orderIDParam(r *http.Request) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "orderId")))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return id, nil
}
