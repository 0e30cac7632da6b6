package orders

import (
	"testing"

	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/models"
)

func TestActorFor(t *testing.T) {
	if _, err := ActorFor(models.User{ID: "u-1"}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden without role, got %v", err)
	}
	if _, err := ActorFor(models.User{}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized without id, got %v", err)
	}

	role := enums.UserRoleCourier
	actor, err := ActorFor(models.User{ID: "u-1", Name: "Jordi", Role: &role})
	if err != nil {
		t.Fatalf("actor: %v", err)
	}
	if _, ok := actor.(Courier); !ok {
		t.Fatalf("expected courier actor, got %T", actor)
	}
}

func TestCourierStampAndLists(t *testing.T) {
	c := Courier{User: models.User{ID: "u-c", Name: "Jordi"}}
	order := models.Order{ID: "BBX-1", Status: enums.OrderStatusAssigned}
	c.Stamp(&order)
	if order.CourierID != "u-c" || order.CourierName != "Jordi" {
		t.Fatalf("unexpected stamp %+v", order)
	}
	if !c.Lists(order) {
		t.Fatal("expected assigned order listed")
	}
	order.Status = enums.OrderStatusFinalized
	if c.Lists(order) {
		t.Fatal("finalized orders are not listed for couriers")
	}
}

func TestSenderCapabilities(t *testing.T) {
	s := Sender{User: models.User{ID: "u-s"}}
	own := models.Order{SenderID: "u-s"}
	foreign := models.Order{SenderID: "u-x"}

	for _, status := range []enums.OrderStatus{enums.OrderStatusAtPickupPoint, enums.OrderStatusFinalized, enums.OrderStatusDisputed} {
		if err := s.CanSet(own, status); err != nil {
			t.Fatalf("sender should set %s: %v", status, err)
		}
	}
	if err := s.CanSet(own, enums.OrderStatusDelivered); err == nil {
		t.Fatal("sender cannot deliver")
	}
	if err := s.CanSet(foreign, enums.OrderStatusFinalized); err == nil {
		t.Fatal("sender cannot confirm a foreign order")
	}

	s.Stamp(&own)
	if own.HasCourier() {
		t.Fatal("sender stamp must not set a courier")
	}
}
