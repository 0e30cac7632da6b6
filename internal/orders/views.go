package orders

import (
	"context"
	"slices"

	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/shopspring/decimal"
)

// Get returns an order the actor may see: its own, or a market listing for
// couriers.
func (s *service) Get(_ context.Context, actor Actor, orderID string) (*models.Order, error) {
	order, ok := s.state.Order(orderID)
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", orderID)
	}
	if !visibleTo(actor, order) {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", orderID)
	}
	return &order, nil
}

// visibleTo reports whether the actor takes part in the order or is a
// courier browsing it in the market.
func visibleTo(actor Actor, order models.Order) bool {
	if actor == nil {
		return false
	}
	if order.SenderID == actor.UserID() || order.CourierID == actor.UserID() {
		return true
	}
	return actor.Role() == enums.UserRoleCourier && inMarket(order)
}

func (s *service) MyOrders(actor Actor) []models.Order {
	if actor == nil {
		return []models.Order{}
	}
	return filter(s.state.Orders(), actor.Lists)
}

// Market lists orders nobody has taken yet.
func (s *service) Market() []models.Order {
	return filter(s.state.Orders(), inMarket)
}

// ActiveOrder returns the first of the actor's orders that is not finalized.
func (s *service) ActiveOrder(actor Actor) *models.Order {
	for _, order := range s.MyOrders(actor) {
		if !order.Status.IsFinalized() {
			return &order
		}
	}
	return nil
}

func (s *service) History(actor Actor) History {
	if actor == nil {
		return History{Orders: []models.Order{}}
	}
	orders := filter(s.state.Orders(), actor.Owns)
	slices.SortStableFunc(orders, func(a, b models.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	history := History{Orders: orders, Completed: countCompleted(orders)}
	if actor.Role() == enums.UserRoleCourier {
		earnings := reference.Earnings(history.Completed)
		history.Earnings = &earnings
	}
	return history
}

// Earnings is zero for senders.
func (s *service) Earnings(actor Actor) decimal.Decimal {
	if actor == nil || actor.Role() != enums.UserRoleCourier {
		return decimal.Zero
	}
	return reference.Earnings(countCompleted(filter(s.state.Orders(), actor.Owns)))
}

func (s *service) List(f ListFilter) []models.Order {
	return filter(s.state.Orders(), func(o models.Order) bool {
		return f.Status == nil || o.Status == *f.Status
	})
}

func inMarket(order models.Order) bool {
	if order.HasCourier() {
		return false
	}
	return order.Status == enums.OrderStatusCreated || order.Status == enums.OrderStatusAtPickupPoint
}

func countCompleted(orders []models.Order) int {
	n := 0
	for _, o := range orders {
		if o.Status.IsCompleted() {
			n++
		}
	}
	return n
}

func filter(orders []models.Order, keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
