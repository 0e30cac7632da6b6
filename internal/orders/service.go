package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/shopspring/decimal"
)

var errOrderMissing = errors.New("order missing")

type stateStore interface {
	Orders() []models.Order
	Order(id string) (models.Order, bool)
	MutateOrders(ctx context.Context, fn func(orders []models.Order) ([]models.Order, error)) error
}

// Recorder receives lifecycle counters.
type Recorder interface {
	IncCreated(kind string)
	IncTransition(status string)
	IncRejected(status string)
}

// Service is the sole authority over order creation, status and chat.
type Service interface {
	CreateRequest(ctx context.Context, actor Actor, input RequestInput) (*models.Order, error)
	Purchase(ctx context.Context, buyer models.User, input PurchaseInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, input StatusInput) (*models.Order, error)
	Confirm(ctx context.Context, actor Actor, orderID string, rating *int) (*models.Order, error)
	Decline(ctx context.Context, actor Actor, orderID string) (*models.Order, error)
	SendMessage(ctx context.Context, actor Actor, input MessageInput) (*models.Order, error)

	Get(ctx context.Context, actor Actor, orderID string) (*models.Order, error)
	MyOrders(actor Actor) []models.Order
	Market() []models.Order
	ActiveOrder(actor Actor) *models.Order
	History(actor Actor) History
	Earnings(actor Actor) decimal.Decimal
	List(filter ListFilter) []models.Order
}

type service struct {
	state    stateStore
	logg     *logger.Logger
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *service) { s.recorder = r }
}

// WithIDGenerator swaps the order id source. Tests use it to force
// collisions.
func WithIDGenerator(fn func() string) Option {
	return func(s *service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService builds the order service over the shared state.
func NewService(state stateStore, logg *logger.Logger, opts ...Option) (Service, error) {
	if state == nil {
		return nil, fmt.Errorf("state store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &service{
		state: state,
		logg:  logg,
		now:   time.Now,
		newID: reference.NewOrderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) CreateRequest(ctx context.Context, actor Actor, input RequestInput) (*models.Order, error) {
	if actor == nil || actor.Role() != enums.UserRoleSender {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only senders can request deliveries")
	}
	itemName := strings.TrimSpace(input.ItemName)
	if itemName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if !input.Size.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid package size %q", input.Size)
	}

	origin := unknownPointOrigin
	if point, ok := reference.FindPickupPoint(input.PickupPointID); ok {
		origin = point.Name
	}

	draft := models.Order{
		ItemName:       itemName,
		SenderID:       actor.UserID(),
		SenderName:     actor.DisplayName(),
		PickupPointID:  input.PickupPointID,
		Origin:         origin,
		Destination:    strings.TrimSpace(input.Destination),
		Size:           input.Size,
		Instructions:   strings.TrimSpace(input.Instructions),
		EstimatedPrice: reference.PriceFor(input.Size),
		Status:         enums.OrderStatusCreated,
	}
	return s.create(ctx, draft, "request")
}

func (s *service) Purchase(ctx context.Context, buyer models.User, input PurchaseInput) (*models.Order, error) {
	if strings.TrimSpace(buyer.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	itemName := strings.TrimSpace(input.ItemName)
	if itemName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	partner, ok := reference.FindPartner(input.PartnerID)
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown partner %q", input.PartnerID)
	}

	pointID := input.PickupPointID
	if pointID == "" {
		pointID = reference.PickupPoints()[0].ID
	}
	origin := partnerPointOrigin
	if point, ok := reference.FindPickupPoint(pointID); ok {
		origin = point.Name
	}

	draft := models.Order{
		ItemName:       itemName,
		SenderID:       buyer.ID,
		SenderName:     buyer.Name,
		PickupPointID:  pointID,
		Origin:         origin,
		Destination:    "Mi domicilio en " + buyer.Neighborhood,
		Size:           enums.PackageSizeMedium,
		Instructions:   fmt.Sprintf("Comprado en %s. Por favor recoger y entregar en casa.", partner.Name),
		EstimatedPrice: reference.PriceFor(enums.PackageSizeMedium),
		Status:         enums.OrderStatusAtPickupPoint,
	}
	return s.create(ctx, draft, "purchase")
}

func (s *service) create(ctx context.Context, draft models.Order, kind string) (*models.Order, error) {
	var created models.Order
	err := s.state.MutateOrders(ctx, func(orders []models.Order) ([]models.Order, error) {
		now := s.now()
		order := draft
		order.ID = s.uniqueID(orders)
		order.CreatedAt = now
		order.UpdatedAt = now
		order.SenderConfirmed = false
		order.ConfirmationCode = reference.NewConfirmationCode()
		order.Chat = []models.ChatMessage{}
		created = order
		return append(orders, order), nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics().IncCreated(kind)
	logCtx := s.logg.WithOrderID(ctx, created.ID)
	s.logg.Info(s.logg.WithField(logCtx, "kind", kind), "order.created")
	return &created, nil
}

func (s *service) uniqueID(orders []models.Order) string {
	for {
		id := s.newID()
		if indexOf(orders, id) < 0 {
			return id
		}
	}
}

// UpdateStatus returns (nil, nil) when the order does not exist.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, input StatusInput) (*models.Order, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor required")
	}
	var (
		updated *models.Order
		from    enums.OrderStatus
	)
	err := s.state.MutateOrders(ctx, func(orders []models.Order) ([]models.Order, error) {
		idx := indexOf(orders, input.OrderID)
		if idx < 0 {
			return nil, errOrderMissing
		}
		order := orders[idx]
		from = order.Status
		if err := actor.CanSet(order, input.Status); err != nil {
			return nil, err
		}
		if err := checkTransition(order.Status, input.Status); err != nil {
			return nil, err
		}

		order.UpdatedAt = s.now()
		if order.UpdatedAt.Before(order.CreatedAt) {
			order.UpdatedAt = order.CreatedAt
		}
		if order.Status == input.Status {
			// re-applying the current status only refreshes updatedAt
			orders[idx] = order
			result := order.Clone()
			updated = &result
			return orders, nil
		}
		order.Status = input.Status
		actor.Stamp(&order)
		if input.Evidence != "" {
			order.EvidencePhoto = input.Evidence
		}
		if input.Status == enums.OrderStatusFinalized {
			rating := clampRating(input.Rating)
			order.SenderConfirmed = true
			order.CourierRating = &rating
		}
		orders[idx] = order
		result := order.Clone()
		updated = &result
		return orders, nil
	})
	if errors.Is(err, errOrderMissing) {
		s.logg.Debug(s.logg.WithOrderID(ctx, input.OrderID), "order.status_missing")
		return nil, nil
	}
	if err != nil {
		s.metrics().IncRejected(input.Status.String())
		logCtx := s.logg.WithOrderID(ctx, input.OrderID)
		s.logg.Warn(s.logg.WithFields(logCtx, map[string]any{
			"from":  from,
			"to":    input.Status,
			"error": err.Error(),
		}), "order.status_rejected")
		return nil, err
	}
	s.metrics().IncTransition(input.Status.String())
	logCtx := s.logg.WithOrderID(ctx, updated.ID)
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"from":     from,
		"to":       updated.Status,
		"actor_id": actor.UserID(),
	}), "order.status_updated")
	return updated, nil
}

func (s *service) Confirm(ctx context.Context, actor Actor, orderID string, rating *int) (*models.Order, error) {
	return s.UpdateStatus(ctx, actor, StatusInput{
		OrderID: orderID,
		Status:  enums.OrderStatusFinalized,
		Rating:  rating,
	})
}

func (s *service) Decline(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	return s.UpdateStatus(ctx, actor, StatusInput{
		OrderID: orderID,
		Status:  enums.OrderStatusDisputed,
	})
}

// SendMessage appends to the order chat of an order the actor may see.
// Assistant messages carry the reserved assistant identity regardless of
// the actor; a nil actor is only accepted for them.
func (s *service) SendMessage(ctx context.Context, actor Actor, input MessageInput) (*models.Order, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text required")
	}
	if actor == nil && !input.FromAssistant {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor required")
	}

	var updated *models.Order
	err := s.state.MutateOrders(ctx, func(orders []models.Order) ([]models.Order, error) {
		idx := indexOf(orders, input.OrderID)
		if idx < 0 {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", input.OrderID)
		}
		order := orders[idx]
		if actor != nil && !visibleTo(actor, order) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", input.OrderID)
		}

		msg := models.ChatMessage{
			ID:        reference.NewMessageID(),
			Text:      text,
			Timestamp: s.now(),
			IsAI:      input.FromAssistant,
		}
		if input.FromAssistant {
			msg.SenderID = models.AssistantSenderID
			msg.SenderName = models.AssistantSenderName
		} else {
			msg.SenderID = actor.UserID()
			msg.SenderName = actor.DisplayName()
		}
		if n := len(order.Chat); n > 0 && msg.Timestamp.Before(order.Chat[n-1].Timestamp) {
			msg.Timestamp = order.Chat[n-1].Timestamp
		}

		order.Chat = append(order.Chat, msg)
		orders[idx] = order
		result := order.Clone()
		updated = &result
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Debug(s.logg.WithOrderID(ctx, updated.ID), "order.message_appended")
	return updated, nil
}

func (s *service) metrics() Recorder {
	if s.recorder == nil {
		return noopRecorder{}
	}
	return s.recorder
}

type noopRecorder struct{}

func (noopRecorder) IncCreated(string)    {}
func (noopRecorder) IncTransition(string) {}
func (noopRecorder) IncRejected(string)   {}

func clampRating(rating *int) int {
	if rating == nil {
		return defaultRating
	}
	switch {
	case *rating < 1:
		return 1
	case *rating > 5:
		return 5
	}
	return *rating
}

func indexOf(orders []models.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
