package orders

import (
	"strings"

	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/models"
)

// Actor is the capability set of the user acting on orders. It replaces
// scattered role checks with one value per role.
type Actor interface {
	UserID() string
	DisplayName() string
	Role() enums.UserRole
	// Owns reports whether the order belongs to the actor's side of the
	// delivery.
	Owns(order models.Order) bool
	// Lists reports whether the order shows in the actor's own list.
	Lists(order models.Order) bool
	// CanSet returns a typed error when the actor may not move the order to
	// status. Lifecycle edges are checked separately.
	CanSet(order models.Order, status enums.OrderStatus) error
	// Stamp records the actor on an order it just transitioned.
	Stamp(order *models.Order)
}

// ActorFor builds the actor matching the user's current role.
func ActorFor(user models.User) (Actor, error) {
	if strings.TrimSpace(user.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	switch user.RoleOrEmpty() {
	case enums.UserRoleSender:
		return Sender{User: user}, nil
	case enums.UserRoleCourier:
		return Courier{User: user}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "user has no role yet")
}

// Sender creates orders, drops them off and confirms or disputes delivery.
type Sender struct {
	User models.User
}

func (s Sender) UserID() string       { return s.User.ID }
func (s Sender) DisplayName() string  { return s.User.Name }
func (s Sender) Role() enums.UserRole { return enums.UserRoleSender }

func (s Sender) Owns(order models.Order) bool {
	return order.SenderID == s.User.ID
}

func (s Sender) Lists(order models.Order) bool {
	return s.Owns(order)
}

func (s Sender) CanSet(order models.Order, status enums.OrderStatus) error {
	if !s.Owns(order) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another sender")
	}
	switch status {
	case enums.OrderStatusAtPickupPoint, enums.OrderStatusFinalized, enums.OrderStatusDisputed:
		return nil
	}
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "senders cannot set status %s", status)
}

func (s Sender) Stamp(*models.Order) {}

// Courier takes orders from the market and carries them to the destination.
type Courier struct {
	User models.User
}

func (c Courier) UserID() string       { return c.User.ID }
func (c Courier) DisplayName() string  { return c.User.Name }
func (c Courier) Role() enums.UserRole { return enums.UserRoleCourier }

func (c Courier) Owns(order models.Order) bool {
	return order.CourierID == c.User.ID
}

func (c Courier) Lists(order models.Order) bool {
	return c.Owns(order) && !order.Status.IsFinalized()
}

func (c Courier) CanSet(order models.Order, status enums.OrderStatus) error {
	switch status {
	case enums.OrderStatusAssigned:
		if order.HasCourier() && !c.Owns(order) {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already has a courier")
		}
		return nil
	case enums.OrderStatusPickedUp, enums.OrderStatusInTransit, enums.OrderStatusDelivered:
		if !c.Owns(order) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another courier")
		}
		return nil
	}
	return pkgerrors.Newf(pkgerrors.CodeForbidden, "couriers cannot set status %s", status)
}

func (c Courier) Stamp(order *models.Order) {
	order.CourierID = c.User.ID
	order.CourierName = c.User.Name
}
