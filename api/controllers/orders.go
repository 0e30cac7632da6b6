package controllers

import (
	"net/http"

	"github.com/barribox/barribox-backend/api/responses"
	"github.com/barribox/barribox-backend/api/validators"
	"github.com/barribox/barribox-backend/internal/assistant"
	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

type createOrderRequest struct {
	ItemName      string `json:"itemName" validate:"required,max=80"`
	PickupPointID string `json:"pickupPointId" validate:"required"`
	Destination   string `json:"destination" validate:"required,max=160"`
	Size          string `json:"size" validate:"required,oneof=S M L"`
	Instructions  string `json:"instructions" validate:"max=280"`
}

type statusRequest struct {
	Status   string `json:"status" validate:"omitempty"`
	Evidence string `json:"evidence" validate:"max=512"`
	Rating   *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

type purchaseRequest struct {
	ItemName      string `json:"itemName" validate:"required,max=80"`
	PartnerID     string `json:"partnerId" validate:"required"`
	PickupPointID string `json:"pickupPointId"`
}

type chatRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// OrderList returns the caller's orders, optionally filtered by status.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseOrderStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list := svc.MyOrders(actor)
		if status != nil {
			filtered := make([]models.Order, 0, len(list))
			for _, o := range list {
				if o.Status == *status {
					filtered = append(filtered, o)
				}
			}
			list = filtered
		}
		responses.WriteSuccess(w, list)
	}
}

func OrderActive(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.ActiveOrder(actor))
	}
}

func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size, err := enums.ParsePackageSize(req.Size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size"))
			return
		}
		order, err := svc.CreateRequest(r.Context(), actor, orders.RequestInput{
			ItemName:      validators.SanitizeString(req.ItemName, 80),
			PickupPointID: req.PickupPointID,
			Destination:   validators.SanitizeString(req.Destination, 160),
			Size:          size,
			Instructions:  validators.SanitizeString(req.Instructions, 280),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderTransition moves the order in the URL to a fixed status. Evidence and
// rating are read from an optional body.
func OrderTransition(svc orders.Service, status enums.OrderStatus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeStatusRequest(w, r, logg)
		if !ok {
			return
		}
		applyStatus(w, r, svc, status, req, logg)
	}
}

// OrderStatus applies the status named in the body.
func OrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeStatusRequest(w, r, logg)
		if !ok {
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		applyStatus(w, r, svc, status, req, logg)
	}
}

func decodeStatusRequest(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (statusRequest, bool) {
	var req statusRequest
	if r.ContentLength == 0 {
		return req, true
	}
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return req, false
	}
	return req, true
}

func applyStatus(w http.ResponseWriter, r *http.Request, svc orders.Service, status enums.OrderStatus, req statusRequest, logg *logger.Logger) {
	actor, err := currentActor(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	order, err := svc.UpdateStatus(r.Context(), actor, orders.StatusInput{
		OrderID:  orderID,
		Status:   status,
		Evidence: req.Evidence,
		Rating:   req.Rating,
	})
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	if order == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", orderID))
		return
	}
	responses.WriteSuccess(w, order)
}

func Market(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Market())
	}
}

func OrderChatList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order.Chat)
	}
}

// OrderChatSend appends the message; questions also get an assistant reply.
func OrderChatSend(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req chatRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Chat(r.Context(), user, orderID, validators.SanitizeString(req.Text, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order.Chat)
	}
}

func Purchase(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req purchaseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Purchase(r.Context(), user, orders.PurchaseInput{
			ItemName:      validators.SanitizeString(req.ItemName, 80),
			PartnerID:     req.PartnerID,
			PickupPointID: req.PickupPointID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
