package support

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

type stateStore interface {
	Tickets() []models.SupportTicket
	Order(id string) (models.Order, bool)
	MutateTickets(ctx context.Context, fn func(tickets []models.SupportTicket) ([]models.SupportTicket, error)) error
}

// OpenInput describes a new support ticket.
type OpenInput struct {
	UserID      string
	OrderID     string
	Reason      string
	Description string
}

type Service interface {
	Open(ctx context.Context, input OpenInput) (*models.SupportTicket, error)
	List(userID string) []models.SupportTicket
}

type service struct {
	state stateStore
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(state stateStore, logg *logger.Logger) (Service, error) {
	if state == nil {
		return nil, fmt.Errorf("state store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{state: state, logg: logg, now: time.Now}, nil
}

func (s *service) Open(ctx context.Context, input OpenInput) (*models.SupportTicket, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if input.OrderID != "" {
		order, ok := s.state.Order(input.OrderID)
		if !ok || (order.SenderID != input.UserID && order.CourierID != input.UserID) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", input.OrderID)
		}
	}

	ticket := models.SupportTicket{
		ID:          reference.NewTicketID(),
		UserID:      input.UserID,
		OrderID:     input.OrderID,
		Reason:      reason,
		Description: strings.TrimSpace(input.Description),
		Status:      enums.TicketStatusOpen,
		CreatedAt:   s.now(),
	}
	err := s.state.MutateTickets(ctx, func(tickets []models.SupportTicket) ([]models.SupportTicket, error) {
		return append(tickets, ticket), nil
	})
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithUserID(ctx, ticket.UserID)
	s.logg.Info(s.logg.WithField(logCtx, "ticket_id", ticket.ID), "support.ticket_opened")
	return &ticket, nil
}

// List returns the user's tickets, newest first.
func (s *service) List(userID string) []models.SupportTicket {
	var out []models.SupportTicket
	for _, t := range s.state.Tickets() {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b models.SupportTicket) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if out == nil {
		return []models.SupportTicket{}
	}
	return out
}
