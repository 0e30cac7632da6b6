package models

import (
	"time"

	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// AssistantSenderID marks chat messages written by the assistant.
const (
	AssistantSenderID   = "ai-system"
	AssistantSenderName = "Barri Assistant"
)

// Order is one parcel delivery request.
type Order struct {
	ID               string            `json:"id"`
	ItemName         string            `json:"itemName"`
	SenderID         string            `json:"senderId"`
	SenderName       string            `json:"senderName"`
	CourierID        string            `json:"courierId,omitempty"`
	CourierName      string            `json:"courierName,omitempty"`
	PickupPointID    string            `json:"pickupPointId"`
	Origin           string            `json:"origin"`
	Destination      string            `json:"destination"`
	Size             enums.PackageSize `json:"size"`
	Instructions     string            `json:"instructions"`
	EstimatedPrice   decimal.Decimal   `json:"estimatedPrice"`
	Status           enums.OrderStatus `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	SenderConfirmed  bool              `json:"senderConfirmed"`
	CourierRating    *int              `json:"courierRating,omitempty"`
	ConfirmationCode string            `json:"confirmationCode"`
	EvidencePhoto    string            `json:"evidencePhoto,omitempty"`
	Chat             []ChatMessage     `json:"chat"`
}

// HasCourier reports whether a courier has been stamped onto the order.
func (o Order) HasCourier() bool {
	return o.CourierID != ""
}

// NeedsConfirmation reports whether the sender still has to accept or
// decline the delivery.
func (o Order) NeedsConfirmation() bool {
	return o.Status == enums.OrderStatusDelivered && !o.SenderConfirmed
}

// Clone returns a deep copy so callers never share the chat slice.
func (o Order) Clone() Order {
	out := o
	if o.Chat != nil {
		out.Chat = make([]ChatMessage, len(o.Chat))
		copy(out.Chat, o.Chat)
	}
	if o.CourierRating != nil {
		rating := *o.CourierRating
		out.CourierRating = &rating
	}
	return out
}

// ChatMessage is one exchange turn attached to an order.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	IsAI       bool      `json:"isAI"`
}
