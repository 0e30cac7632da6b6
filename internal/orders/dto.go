package orders

import (
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	unknownPointOrigin = "Punto Desconocido"
	partnerPointOrigin = "Punto Colaborador"
	defaultRating      = 5
)

// RequestInput is a sender-authored delivery request.
type RequestInput struct {
	ItemName      string
	PickupPointID string
	Destination   string
	Size          enums.PackageSize
	Instructions  string
}

// PurchaseInput is a marketplace purchase delivered to the buyer's home.
type PurchaseInput struct {
	ItemName      string
	PartnerID     string
	PickupPointID string
}

// StatusInput moves an order to a new status.
type StatusInput struct {
	OrderID string
	Status  enums.OrderStatus
	// Evidence is an optional photo reference stored on delivery.
	Evidence string
	// Rating applies when the target is FINALIZED. Nil means the default.
	Rating *int
}

// MessageInput appends a chat message.
type MessageInput struct {
	OrderID       string
	Text          string
	FromAssistant bool
}

// History summarises the actor's orders.
type History struct {
	Orders    []models.Order   `json:"orders"`
	Completed int              `json:"completed"`
	Earnings  *decimal.Decimal `json:"earnings,omitempty"`
}

// ListFilter narrows the unscoped order listing used by operators.
type ListFilter struct {
	Status *enums.OrderStatus
}
