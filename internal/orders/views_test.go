package orders

import (
	"context"
	"testing"

	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)


func TestMarketExcludesTakenOrders(t *testing.T) {
	f := newFixture(t)
	open := f.request(t, enums.PackageSizeSmall)
	dropped := f.request(t, enums.PackageSizeSmall)
	taken := f.request(t, enums.PackageSizeSmall)
	f.move(t, f.sender, dropped.ID, enums.OrderStatusAtPickupPoint)
	f.move(t, f.courier, taken.ID, enums.OrderStatusAssigned)

	var got []string
	for _, o := range f.svc.Market() {
		got = append(got, o.ID)
		if o.HasCourier() {
			t.Fatalf("market order %s has a courier", o.ID)
		}
	}
	want := []string{open.ID, dropped.ID}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("market mismatch (-want +got):\n%s", diff)
	}
}

func TestActiveOrderAndHistory(t *testing.T) {
	f := newFixture(t)
	first := f.request(t, enums.PackageSizeSmall)
	second := f.request(t, enums.PackageSizeMedium)

	for _, id := range []string{first.ID, second.ID} {
		f.move(t, f.courier, id, enums.OrderStatusAssigned)
		f.move(t, f.courier, id, enums.OrderStatusPickedUp)
		f.move(t, f.courier, id, enums.OrderStatusInTransit)
		f.move(t, f.courier, id, enums.OrderStatusDelivered)
	}
	if _, err := f.svc.Confirm(context.Background(), f.sender, first.ID, nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	active := f.svc.ActiveOrder(f.sender)
	if active == nil || active.ID != second.ID {
		t.Fatalf("expected second order active, got %+v", active)
	}

	courierHistory := f.svc.History(f.courier)
	if courierHistory.Completed != 2 || len(courierHistory.Orders) != 2 {
		t.Fatalf("unexpected courier history %+v", courierHistory)
	}
	if courierHistory.Earnings == nil || !courierHistory.Earnings.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("expected earnings 9.00, got %v", courierHistory.Earnings)
	}
	if courierHistory.Orders[0].ID != second.ID {
		t.Fatal("expected history newest first")
	}

	senderHistory := f.svc.History(f.sender)
	if senderHistory.Earnings != nil || senderHistory.Completed != 2 {
		t.Fatalf("unexpected sender history %+v", senderHistory)
	}
	if !f.svc.Earnings(f.sender).IsZero() {
		t.Fatal("senders earn nothing")
	}
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.request(t, enums.PackageSizeSmall)

	if _, err := f.svc.Get(ctx, f.sender, order.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.other, order.ID); err != nil {
		t.Fatalf("courier should see market order: %v", err)
	}
	f.move(t, f.courier, order.ID, enums.OrderStatusAssigned)
	if _, err := f.svc.Get(ctx, f.other, order.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for foreign courier, got %v", err)
	}
}

func TestListFilter(t *testing.T) {
	f := newFixture(t)
	a := f.request(t, enums.PackageSizeSmall)
	f.request(t, enums.PackageSizeSmall)
	f.move(t, f.sender, a.ID, enums.OrderStatusAtPickupPoint)

	status := enums.OrderStatusAtPickupPoint
	got := f.svc.List(ListFilter{Status: &status})
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("unexpected filtered list %+v", got)
	}
	if all := f.svc.List(ListFilter{}); len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(enums.OrderStatusDelivered, enums.OrderStatusDelivered) {
		t.Fatal("re-application must be allowed")
	}
	if CanTransition(enums.OrderStatusFinalized, enums.OrderStatusDisputed) {
		t.Fatal("finalized orders cannot be disputed")
	}
	if !CanTransition(enums.OrderStatusCreated, enums.OrderStatusAssigned) {
		t.Fatal("market orders can be taken before drop-off")
	}
}
