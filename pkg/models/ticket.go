package models

import (
	"time"

	"github.com/barribox/barribox-backend/pkg/enums"
)

type SupportTicket struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	OrderID     string             `json:"orderId,omitempty"`
	Reason      string             `json:"reason"`
	Description string             `json:"description"`
	Status      enums.TicketStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}
