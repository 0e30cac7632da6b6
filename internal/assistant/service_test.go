package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/internal/persistence"
	"github.com/barribox/barribox-backend/internal/state"
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/kv"
	"github.com/barribox/barribox-backend/pkg/llm"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	mu       sync.Mutex
	out      string
	err      error
	requests []llm.Request
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.out, g.err
}

func (g *scriptedGenerator) last() llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

type tally struct {
	outcomes map[string]int
	actions  map[string]int
}

func newTally() *tally {
	return &tally{outcomes: map[string]int{}, actions: map[string]int{}}
}

func (t *tally) Observe(surface, outcome string, _ time.Duration) {
	t.outcomes[surface+":"+outcome]++
}

func (t *tally) IncAction(kind string) { t.actions[kind]++ }

type fixture struct {
	svc     Service
	orders  orders.Service
	gen     *scriptedGenerator
	tally   *tally
	sender  models.User
	courier models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	adapter, err := persistence.New(kv.NewMemory(), "barribox_v6", nil, persistence.WithoutDemoSeed())
	require.NoError(t, err)
	st, err := state.Open(ctx, adapter, nil)
	require.NoError(t, err)
	orderSvc, err := orders.NewService(st, nil)
	require.NoError(t, err)

	gen := &scriptedGenerator{}
	tl := newTally()
	svc, err := NewService(orderSvc, gen, nil, WithRecorder(tl))
	require.NoError(t, err)

	senderRole := enums.UserRoleSender
	courierRole := enums.UserRoleCourier
	return &fixture{
		svc:     svc,
		orders:  orderSvc,
		gen:     gen,
		tally:   tl,
		sender:  models.User{ID: "u-sender", Name: "Marta", Neighborhood: "Centre", Role: &senderRole},
		courier: models.User{ID: "u-courier", Name: "Jordi", Neighborhood: "Centre", Role: &courierRole},
	}
}

func (f *fixture) createOrder(t *testing.T) *models.Order {
	t.Helper()
	actor, err := orders.ActorFor(f.sender)
	require.NoError(t, err)
	order, err := f.orders.CreateRequest(context.Background(), actor, orders.RequestInput{
		ItemName:      "Lámpara",
		PickupPointID: "p-n5-1",
		Destination:   "Carrer Nou, 3",
		Size:          enums.PackageSizeSmall,
	})
	require.NoError(t, err)
	return order
}

func TestVoiceAssignsThroughLegacyTokens(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	f.gen.out = "Listo. [ASSIGN:" + order.ID + "] Hecho."

	reply, err := f.svc.Voice(context.Background(), f.courier, "asígname la lámpara")
	require.NoError(t, err)

	assert.Equal(t, "Listo.  Hecho.", reply.Text)
	require.Len(t, reply.Directives, 1)
	assert.Equal(t, Directive{Type: ActionNavigate, Tab: enums.TabHome}, reply.Directives[0])

	courierActor, _ := orders.ActorFor(f.courier)
	got, err := f.orders.Get(context.Background(), courierActor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAssigned, got.Status)
	assert.Equal(t, "u-courier", got.CourierID)
	assert.Equal(t, 1, f.tally.actions["assign"])
	assert.Equal(t, 1, f.tally.outcomes["voice:ok"])
}

func TestVoicePromptCarriesMarketAndOwnOrders(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	f.gen.out = `{"version":1,"reply":"Tienes un paquete.","actions":[]}`

	reply, err := f.svc.Voice(context.Background(), f.courier, "¿qué hago?")
	require.NoError(t, err)
	assert.Equal(t, "Tienes un paquete.", reply.Text)
	assert.Empty(t, reply.Directives)

	req := f.gen.last()
	assert.NotNil(t, req.Schema)
	assert.NotEmpty(t, req.System)
	assert.Contains(t, req.Prompt, "[ID:"+order.ID+", Item:Lámpara, Origen:"+order.Origin+"]")
	assert.Contains(t, req.Prompt, "USUARIO: Jordi (Repartidor)")
	assert.Contains(t, req.Prompt, `ENTRADA: "¿qué hago?"`)
}

func TestVoiceFallbacks(t *testing.T) {
	f := newFixture(t)

	f.gen.err = errors.New("boom")
	reply, err := f.svc.Voice(context.Background(), f.courier, "hola")
	require.NoError(t, err)
	assert.Equal(t, "Lo siento Jordi, perdí la conexión.", reply.Text)

	f.gen.err = nil
	f.gen.out = "   "
	reply, err = f.svc.Voice(context.Background(), f.courier, "hola")
	require.NoError(t, err)
	assert.Equal(t, "Lo siento Jordi, no te oí bien.", reply.Text)

	f.gen.out = "[NAVIGATE:puntos]"
	reply, err = f.svc.Voice(context.Background(), f.courier, "llévame a los puntos")
	require.NoError(t, err)
	assert.Equal(t, "Hecho, Jordi.", reply.Text)
	assert.Equal(t, []Directive{{Type: ActionNavigate, Tab: enums.TabPoints}}, reply.Directives)

	assert.Equal(t, 1, f.tally.outcomes["voice:error"])
	assert.Equal(t, 1, f.tally.outcomes["voice:empty"])
}

func TestVoiceSkipsFailedActions(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	f.gen.out = "Vale. [ASSIGN:" + order.ID + "] [OPEN_CHAT:" + order.ID + "] [SEND_MESSAGE:" + order.ID + ":Ya voy]"

	// senders cannot assign, the remaining actions still run
	reply, err := f.svc.Voice(context.Background(), f.sender, "hazlo")
	require.NoError(t, err)
	assert.Equal(t, []Directive{
		{Type: ActionNavigate, Tab: enums.TabHome},
		{Type: ActionOpenChat, Tab: enums.TabHome, OrderID: order.ID},
	}, reply.Directives)
	assert.Zero(t, f.tally.actions["assign"])

	senderActor, _ := orders.ActorFor(f.sender)
	got, err := f.orders.Get(context.Background(), senderActor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCreated, got.Status)
	require.Len(t, got.Chat, 1)
	assert.Equal(t, "Ya voy", got.Chat[0].Text)
	assert.False(t, got.Chat[0].IsAI)
	assert.Equal(t, "u-sender", got.Chat[0].SenderID)
}

func TestVoiceCannotWriteIntoForeignChats(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	senderRole := enums.UserRoleSender
	stranger := models.User{ID: "u-stranger", Name: "Pol", Neighborhood: "Centre", Role: &senderRole}
	f.gen.out = "Hecho. [SEND_MESSAGE:" + order.ID + ":hola intruso]"

	reply, err := f.svc.Voice(context.Background(), stranger, "escribe en ese pedido")
	require.NoError(t, err)
	assert.Equal(t, "Hecho.", reply.Text)
	assert.Zero(t, f.tally.actions["send_message"])

	senderActor, _ := orders.ActorFor(f.sender)
	got, err := f.orders.Get(context.Background(), senderActor, order.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Chat)
}

func TestVoiceRequiresInputAndRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Voice(context.Background(), f.courier, "  ")
	assert.Error(t, err)

	_, err = f.svc.Voice(context.Background(), models.User{ID: "u-new", Name: "Nadie"}, "hola")
	assert.Error(t, err)
	assert.Empty(t, f.gen.requests)
}

func TestShouldAnswer(t *testing.T) {
	assert.True(t, ShouldAnswer("¿Cuándo llegas?"))
	assert.True(t, ShouldAnswer("DONDE estás"))
	assert.True(t, ShouldAnswer("cuanto falta"))
	assert.False(t, ShouldAnswer("Gracias"))
}

func TestChatAnswersQuestions(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	f.gen.out = "Llega en 10 minutos, Marta."

	got, err := f.svc.Chat(context.Background(), f.sender, order.ID, "¿Dónde está?")
	require.NoError(t, err)
	require.Len(t, got.Chat, 2)
	assert.Equal(t, "u-sender", got.Chat[0].SenderID)
	assert.True(t, got.Chat[1].IsAI)
	assert.Equal(t, models.AssistantSenderID, got.Chat[1].SenderID)
	assert.Equal(t, "Llega en 10 minutos, Marta.", got.Chat[1].Text)
	assert.False(t, got.Chat[1].Timestamp.Before(got.Chat[0].Timestamp))
	assert.Contains(t, f.gen.last().Prompt, "el punto de recogida")
	assert.Nil(t, f.gen.last().Schema)
}

func TestChatSkipsStatementsAndFallsBack(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)

	got, err := f.svc.Chat(context.Background(), f.sender, order.ID, "Gracias")
	require.NoError(t, err)
	assert.Len(t, got.Chat, 1)
	assert.Empty(t, f.gen.requests)

	f.gen.err = errors.New("timeout")
	got, err = f.svc.Chat(context.Background(), f.sender, order.ID, "cuanto tarda")
	require.NoError(t, err)
	require.Len(t, got.Chat, 3)
	assert.Equal(t, ChatFallback, got.Chat[2].Text)
}

func TestChatHidesForeignOrders(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)
	role := enums.UserRoleSender
	stranger := models.User{ID: "u-x", Name: "Pau", Role: &role}

	_, err := f.svc.Chat(context.Background(), stranger, order.ID, "hola?")
	assert.Error(t, err)
}

func TestFAQAndSupport(t *testing.T) {
	f := newFixture(t)
	f.gen.out = "Desde Mis Rutas."

	out, err := f.svc.FAQ(context.Background(), f.courier, "¿cómo escaneo?")
	require.NoError(t, err)
	assert.Equal(t, "Desde Mis Rutas.", out)
	prompt := f.gen.last().Prompt
	assert.Contains(t, prompt, "4.50€")
	assert.Contains(t, prompt, "La Maurina")

	f.gen.out = ""
	out, err = f.svc.FAQ(context.Background(), f.courier, "???")
	require.NoError(t, err)
	assert.Equal(t, FAQFallback, out)

	f.gen.err = errors.New("down")
	out, err = f.svc.Support(context.Background(), f.sender, "no llega mi paquete")
	require.NoError(t, err)
	assert.Equal(t, SupportFallback, out)
	assert.True(t, strings.Contains(f.gen.last().Prompt, "Lucía"))

	_, err = f.svc.Support(context.Background(), f.sender, "")
	assert.Error(t, err)
}
