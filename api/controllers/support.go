package controllers

import (
	"net/http"

	"github.com/barribox/barribox-backend/api/responses"
	"github.com/barribox/barribox-backend/api/validators"
	"github.com/barribox/barribox-backend/internal/support"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/barribox/barribox-backend/pkg/pagination"
)

type ticketRequest struct {
	OrderID     string `json:"orderId" validate:"omitempty,max=16"`
	Reason      string `json:"reason" validate:"required,max=80"`
	Description string `json:"description" validate:"required,max=1000"`
}

func SupportTickets(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paged, err := pagination.Paginate(svc.List(user.ID), page, func(t models.SupportTicket) pagination.Cursor {
			return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		responses.WriteSuccessWithMeta(w, paged.Items, pagination.Meta{NextCursor: paged.NextCursor, Count: len(paged.Items)})
	}
}

func SupportOpen(svc support.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req ticketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.Open(r.Context(), support.OpenInput{
			UserID:      user.ID,
			OrderID:     req.OrderID,
			Reason:      validators.SanitizeString(req.Reason, 80),
			Description: validators.SanitizeString(req.Description, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}
