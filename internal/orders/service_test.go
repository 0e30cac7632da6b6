package orders

import (
	"context"
	"testing"
	"time"

	"github.com/barribox/barribox-backend/internal/persistence"
	"github.com/barribox/barribox-backend/internal/state"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/kv"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/shopspring/decimal"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type countingRecorder struct {
	created, transitions, rejected int
}

func (r *countingRecorder) IncCreated(string)    { r.created++ }
func (r *countingRecorder) IncTransition(string) { r.transitions++ }
func (r *countingRecorder) IncRejected(string)   { r.rejected++ }

type fixture struct {
	svc      Service
	state    *state.Store
	clock    *clock
	recorder *countingRecorder
	sender   Actor
	courier  Actor
	other    Actor
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	adapter, err := persistence.New(kv.NewMemory(), "barribox_v6", nil, persistence.WithoutDemoSeed())
	if err != nil {
		t.Fatalf("persistence: %v", err)
	}
	st, err := state.Open(ctx, adapter, nil)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	c := &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	rec := &countingRecorder{}
	opts = append([]Option{WithClock(c.Now), WithRecorder(rec)}, opts...)
	svc, err := NewService(st, nil, opts...)
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	senderRole := enums.UserRoleSender
	courierRole := enums.UserRoleCourier
	sender, _ := ActorFor(models.User{ID: "u-sender", Name: "Marta", Neighborhood: "Centre", Role: &senderRole})
	courier, _ := ActorFor(models.User{ID: "u-courier", Name: "Jordi", Role: &courierRole})
	other, _ := ActorFor(models.User{ID: "u-other", Name: "Laia", Role: &courierRole})
	return &fixture{svc: svc, state: st, clock: c, recorder: rec, sender: sender, courier: courier, other: other}
}

func (f *fixture) request(t *testing.T, size enums.PackageSize) *models.Order {
	t.Helper()
	f.clock.Advance(time.Second)
	order, err := f.svc.CreateRequest(context.Background(), f.sender, RequestInput{
		ItemName:      "Lámpara",
		PickupPointID: "p-n5-1",
		Destination:   "Carrer Nou, 3",
		Size:          size,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return order
}

func (f *fixture) move(t *testing.T, actor Actor, id string, status enums.OrderStatus) *models.Order {
	t.Helper()
	f.clock.Advance(time.Minute)
	order, err := f.svc.UpdateStatus(context.Background(), actor, StatusInput{OrderID: id, Status: status})
	if err != nil {
		t.Fatalf("move to %s: %v", status, err)
	}
	if order == nil {
		t.Fatalf("move to %s: order missing", status)
	}
	return order
}

func TestCreateRequestDefaults(t *testing.T) {
	f := newFixture(t)
	order := f.request(t, enums.PackageSizeMedium)

	if order.Status != enums.OrderStatusCreated {
		t.Fatalf("expected created status, got %s", order.Status)
	}
	if order.Origin != "Kiosco Centre" {
		t.Fatalf("unexpected origin %q", order.Origin)
	}
	if !order.EstimatedPrice.Equal(decimal.RequireFromString("5.50")) {
		t.Fatalf("expected 5.50, got %s", order.EstimatedPrice)
	}
	if order.SenderConfirmed || len(order.Chat) != 0 || order.HasCourier() {
		t.Fatalf("unexpected initial fields %+v", order)
	}
	if len(order.ConfirmationCode) != 4 {
		t.Fatalf("expected 4 digit code, got %q", order.ConfirmationCode)
	}
	if !order.CreatedAt.Equal(order.UpdatedAt) {
		t.Fatal("expected createdAt == updatedAt on creation")
	}

	large := f.request(t, enums.PackageSizeLarge)
	if !large.EstimatedPrice.Equal(decimal.RequireFromString("8.50")) {
		t.Fatalf("expected 8.50, got %s", large.EstimatedPrice)
	}

	mine := f.svc.MyOrders(f.sender)
	count := 0
	for _, o := range mine {
		if o.ID == order.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected order exactly once in my orders, got %d", count)
	}
	if f.recorder.created != 2 {
		t.Fatalf("expected 2 created, got %d", f.recorder.created)
	}
}

func TestCreateRequestUnknownPoint(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateRequest(context.Background(), f.sender, RequestInput{
		ItemName:      "Caja",
		PickupPointID: "p-zz-9",
		Size:          enums.PackageSizeSmall,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Origin != "Punto Desconocido" {
		t.Fatalf("unexpected origin %q", order.Origin)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRequest(ctx, f.courier, RequestInput{ItemName: "x", Size: enums.PackageSizeSmall})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for courier, got %v", err)
	}
	_, err = f.svc.CreateRequest(ctx, f.sender, RequestInput{ItemName: "  ", Size: enums.PackageSizeSmall})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = f.svc.CreateRequest(ctx, f.sender, RequestInput{ItemName: "x", Size: "XL"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for size, got %v", err)
	}
}

func TestCreateRetriesIDCollision(t *testing.T) {
	ids := []string{"BBX-AAAA", "BBX-AAAA", "BBX-BBBB"}
	next := 0
	f := newFixture(t, WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))
	first := f.request(t, enums.PackageSizeSmall)
	second := f.request(t, enums.PackageSizeSmall)
	if first.ID != "BBX-AAAA" || second.ID != "BBX-BBBB" {
		t.Fatalf("unexpected ids %s %s", first.ID, second.ID)
	}
}

func TestPurchase(t *testing.T) {
	f := newFixture(t)
	buyer := models.User{ID: "u-buyer", Name: "Pau", Neighborhood: "Can Roca"}

	order, err := f.svc.Purchase(context.Background(), buyer, PurchaseInput{
		ItemName:      "Auriculares Pro",
		PartnerID:     "p1",
		PickupPointID: "p-n11-2",
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if order.Status != enums.OrderStatusAtPickupPoint || order.Size != enums.PackageSizeMedium {
		t.Fatalf("unexpected purchase order %+v", order)
	}
	if order.Destination != "Mi domicilio en Can Roca" {
		t.Fatalf("unexpected destination %q", order.Destination)
	}
	if order.Instructions != "Comprado en Amazon. Por favor recoger y entregar en casa." {
		t.Fatalf("unexpected instructions %q", order.Instructions)
	}
	if order.Origin != "Farmacia Can Roca" {
		t.Fatalf("unexpected origin %q", order.Origin)
	}

	fallback, err := f.svc.Purchase(context.Background(), buyer, PurchaseInput{ItemName: "Radio", PartnerID: "p4", PickupPointID: "nope"})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if fallback.Origin != "Punto Colaborador" {
		t.Fatalf("unexpected fallback origin %q", fallback.Origin)
	}

	if _, err := f.svc.Purchase(context.Background(), buyer, PurchaseInput{ItemName: "Radio", PartnerID: "p9"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for partner, got %v", err)
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	order := f.request(t, enums.PackageSizeSmall)
	code := order.ConfirmationCode

	order = f.move(t, f.sender, order.ID, enums.OrderStatusAtPickupPoint)
	order = f.move(t, f.courier, order.ID, enums.OrderStatusAssigned)
	if order.CourierID != "u-courier" || order.CourierName != "Jordi" {
		t.Fatalf("expected courier stamped, got %+v", order)
	}
	order = f.move(t, f.courier, order.ID, enums.OrderStatusPickedUp)
	order = f.move(t, f.courier, order.ID, enums.OrderStatusInTransit)
	order = f.move(t, f.courier, order.ID, enums.OrderStatusDelivered)
	if !order.NeedsConfirmation() {
		t.Fatal("expected delivered order to need confirmation")
	}

	f.clock.Advance(time.Minute)
	rating := 9
	order, err := f.svc.Confirm(context.Background(), f.sender, order.ID, &rating)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if order.Status != enums.OrderStatusFinalized || !order.SenderConfirmed {
		t.Fatalf("unexpected confirmed order %+v", order)
	}
	if order.CourierRating == nil || *order.CourierRating != 5 {
		t.Fatalf("expected rating clamped to 5, got %v", order.CourierRating)
	}
	if order.ConfirmationCode != code {
		t.Fatal("confirmation code changed")
	}
	if order.UpdatedAt.Before(order.CreatedAt) {
		t.Fatal("updatedAt before createdAt")
	}
	if order.CourierID != "u-courier" {
		t.Fatal("sender confirmation must not overwrite the courier")
	}

	before := order.UpdatedAt
	again := f.move(t, f.sender, order.ID, enums.OrderStatusFinalized)
	if again.Status != enums.OrderStatusFinalized || !again.UpdatedAt.After(before) {
		t.Fatalf("expected idempotent re-application to refresh updatedAt, got %+v", again)
	}

	if mine := f.svc.MyOrders(f.courier); len(mine) != 0 {
		t.Fatalf("finalized orders must leave the courier list, got %d", len(mine))
	}
	if got := f.svc.Earnings(f.courier); !got.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("expected earnings 4.50, got %s", got)
	}
	if f.recorder.transitions != 7 {
		t.Fatalf("expected 7 transitions, got %d", f.recorder.transitions)
	}
}

func TestConfirmDefaultsRating(t *testing.T) {
	f := newFixture(t)
	order := f.request(t, enums.PackageSizeSmall)
	f.move(t, f.courier, order.ID, enums.OrderStatusAssigned)
	f.move(t, f.courier, order.ID, enums.OrderStatusPickedUp)
	f.move(t, f.courier, order.ID, enums.OrderStatusInTransit)
	f.move(t, f.courier, order.ID, enums.OrderStatusDelivered)

	confirmed, err := f.svc.Confirm(context.Background(), f.sender, order.ID, nil)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if *confirmed.CourierRating != 5 {
		t.Fatalf("expected default rating 5, got %d", *confirmed.CourierRating)
	}

	f.clock.Advance(time.Minute)
	low := 1
	again, err := f.svc.Confirm(context.Background(), f.sender, order.ID, &low)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if *again.CourierRating != 5 || !again.SenderConfirmed {
		t.Fatalf("expected re-confirmation to keep rating 5, got %d", *again.CourierRating)
	}
	if !again.UpdatedAt.After(confirmed.UpdatedAt) {
		t.Fatal("expected re-confirmation to refresh updatedAt")
	}

	second := f.request(t, enums.PackageSizeSmall)
	f.move(t, f.courier, second.ID, enums.OrderStatusAssigned)
	f.move(t, f.courier, second.ID, enums.OrderStatusPickedUp)
	f.move(t, f.courier, second.ID, enums.OrderStatusInTransit)
	f.move(t, f.courier, second.ID, enums.OrderStatusDelivered)
	zero := 0
	clamped, err := f.svc.Confirm(context.Background(), f.sender, second.ID, &zero)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if *clamped.CourierRating != 1 {
		t.Fatalf("expected rating clamped to 1, got %d", *clamped.CourierRating)
	}
}

func TestDeclineFromDelivered(t *testing.T) {
	f := newFixture(t)
	order := f.request(t, enums.PackageSizeSmall)
	f.move(t, f.courier, order.ID, enums.OrderStatusAssigned)
	f.move(t, f.courier, order.ID, enums.OrderStatusPickedUp)
	f.move(t, f.courier, order.ID, enums.OrderStatusInTransit)
	f.move(t, f.courier, order.ID, enums.OrderStatusDelivered)

	declined, err := f.svc.Decline(context.Background(), f.sender, order.ID)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != enums.OrderStatusDisputed || declined.SenderConfirmed {
		t.Fatalf("unexpected declined order %+v", declined)
	}
}

func TestUpdateStatusRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.request(t, enums.PackageSizeSmall)

	cases := []struct {
		name  string
		actor Actor
		to    enums.OrderStatus
		code  pkgerrors.Code
	}{
		{name: "skip ahead", actor: f.courier, to: enums.OrderStatusPickedUp, code: pkgerrors.CodeForbidden},
		{name: "sender assigns", actor: f.sender, to: enums.OrderStatusAssigned, code: pkgerrors.CodeForbidden},
		{name: "confirm before delivery", actor: f.sender, to: enums.OrderStatusFinalized, code: pkgerrors.CodeStateConflict},
		{name: "unwired status", actor: f.sender, to: enums.OrderStatusRefunded, code: pkgerrors.CodeForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.UpdateStatus(ctx, tc.actor, StatusInput{OrderID: order.ID, Status: tc.to})
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}

	f.move(t, f.courier, order.ID, enums.OrderStatusAssigned)
	_, err := f.svc.UpdateStatus(ctx, f.other, StatusInput{OrderID: order.ID, Status: enums.OrderStatusAssigned})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict when another courier assigns, got %v", err)
	}
	_, err = f.svc.UpdateStatus(ctx, f.other, StatusInput{OrderID: order.ID, Status: enums.OrderStatusPickedUp})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for foreign courier, got %v", err)
	}
	_, err = f.svc.UpdateStatus(ctx, f.courier, StatusInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	stored, _ := f.state.Order(order.ID)
	if stored.Status != enums.OrderStatusAssigned {
		t.Fatalf("rejected transitions must not mutate, got %s", stored.Status)
	}
	if f.recorder.rejected == 0 {
		t.Fatal("expected rejected transitions to be counted")
	}
}

func TestUpdateStatusMissingOrderIsNoop(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.UpdateStatus(context.Background(), f.courier, StatusInput{OrderID: "BBX-NONE", Status: enums.OrderStatusAssigned})
	if err != nil || order != nil {
		t.Fatalf("expected silent no-op, got %+v err=%v", order, err)
	}
}

func TestDeliveryEvidence(t *testing.T) {
	f := newFixture(t)
	order := f.request(t, enums.PackageSizeSmall)
	f.move(t, f.courier, order.ID, enums.OrderStatusAssigned)
	f.move(t, f.courier, order.ID, enums.OrderStatusPickedUp)
	f.move(t, f.courier, order.ID, enums.OrderStatusInTransit)

	delivered, err := f.svc.UpdateStatus(context.Background(), f.courier, StatusInput{
		OrderID:  order.ID,
		Status:   enums.OrderStatusDelivered,
		Evidence: "photo-123.jpg",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.EvidencePhoto != "photo-123.jpg" {
		t.Fatalf("expected evidence stored, got %q", delivered.EvidencePhoto)
	}

	f.clock.Advance(time.Minute)
	again, err := f.svc.UpdateStatus(context.Background(), f.courier, StatusInput{
		OrderID:  order.ID,
		Status:   enums.OrderStatusDelivered,
		Evidence: "photo-456.jpg",
	})
	if err != nil {
		t.Fatalf("re-deliver: %v", err)
	}
	if again.EvidencePhoto != "photo-123.jpg" {
		t.Fatalf("re-applying delivered must keep the first evidence, got %q", again.EvidencePhoto)
	}
	if !again.UpdatedAt.After(delivered.UpdatedAt) {
		t.Fatal("expected re-application to refresh updatedAt")
	}
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.request(t, enums.PackageSizeSmall)

	updated, err := f.svc.SendMessage(ctx, f.sender, MessageInput{OrderID: order.ID, Text: "¿Dónde está?"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(updated.Chat) != 1 || updated.Chat[0].SenderID != "u-sender" || updated.Chat[0].IsAI {
		t.Fatalf("unexpected chat %+v", updated.Chat)
	}

	f.clock.Advance(-time.Hour)
	updated, err = f.svc.SendMessage(ctx, nil, MessageInput{OrderID: order.ID, Text: "Llega en 10 minutos.", FromAssistant: true})
	if err != nil {
		t.Fatalf("send assistant: %v", err)
	}
	if len(updated.Chat) != 2 {
		t.Fatalf("expected chat to grow, got %d", len(updated.Chat))
	}
	ai := updated.Chat[1]
	if ai.SenderID != models.AssistantSenderID || ai.SenderName != "Barri Assistant" || !ai.IsAI {
		t.Fatalf("unexpected assistant message %+v", ai)
	}
	if ai.Timestamp.Before(updated.Chat[0].Timestamp) {
		t.Fatal("chat timestamps must not decrease")
	}

	if _, err := f.svc.SendMessage(ctx, f.sender, MessageInput{OrderID: "BBX-NONE", Text: "hola"}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.svc.SendMessage(ctx, f.sender, MessageInput{OrderID: order.ID, Text: " "}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendMessageRejectsForeignOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.request(t, enums.PackageSizeSmall)
	f.move(t, f.courier, order.ID, enums.OrderStatusAssigned)

	senderRole := enums.UserRoleSender
	stranger, _ := ActorFor(models.User{ID: "u-stranger", Name: "Pol", Role: &senderRole})
	for _, actor := range []Actor{stranger, f.other} {
		if _, err := f.svc.SendMessage(ctx, actor, MessageInput{OrderID: order.ID, Text: "hola intruso"}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("expected not found for %s, got %v", actor.UserID(), err)
		}
	}
	stored, _ := f.state.Order(order.ID)
	if len(stored.Chat) != 0 {
		t.Fatalf("foreign messages must not be appended, got %+v", stored.Chat)
	}

	if _, err := f.svc.SendMessage(ctx, f.courier, MessageInput{OrderID: order.ID, Text: "Voy de camino"}); err != nil {
		t.Fatalf("assigned courier send: %v", err)
	}
}
