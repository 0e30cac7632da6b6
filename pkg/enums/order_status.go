package enums

import "fmt"

// OrderStatus tracks the lifecycle of a parcel delivery.
type OrderStatus string

const (
	OrderStatusCreated       OrderStatus = "created"
	OrderStatusAtPickupPoint OrderStatus = "at_pickup_point"
	OrderStatusAssigned      OrderStatus = "assigned"
	OrderStatusPickedUp      OrderStatus = "picked_up"
	OrderStatusInTransit     OrderStatus = "in_transit"
	OrderStatusDelivered     OrderStatus = "delivered"
	OrderStatusFinalized     OrderStatus = "finalized"
	OrderStatusDisputed      OrderStatus = "disputed"
	OrderStatusUnderReview   OrderStatus = "under_review"
	OrderStatusResolved      OrderStatus = "resolved"
	OrderStatusRefunded      OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusAtPickupPoint,
	OrderStatusAssigned,
	OrderStatusPickedUp,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusFinalized,
	OrderStatusDisputed,
	OrderStatusUnderReview,
	OrderStatusResolved,
	OrderStatusRefunded,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusCreated:       "Creado",
	OrderStatusAtPickupPoint: "En Punto de Recogida",
	OrderStatusAssigned:      "Asignado",
	OrderStatusPickedUp:      "Recogido",
	OrderStatusInTransit:     "En ruta",
	OrderStatusDelivered:     "Entregado",
	OrderStatusFinalized:     "Finalizado",
	OrderStatusDisputed:      "Incidencia",
	OrderStatusUnderReview:   "En revisión",
	OrderStatusResolved:      "Resuelto",
	OrderStatusRefunded:      "Reembolsado (Demo)",
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// Label returns the customer-facing Spanish name.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsFinalized reports whether the sender has closed the order.
func (s OrderStatus) IsFinalized() bool {
	return s == OrderStatusFinalized
}

// IsCompleted reports whether the parcel reached the recipient.
func (s OrderStatus) IsCompleted() bool {
	return s == OrderStatusDelivered || s == OrderStatusFinalized
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
