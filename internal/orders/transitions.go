package orders

import (
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
)

var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusCreated:       {enums.OrderStatusAtPickupPoint, enums.OrderStatusAssigned},
	enums.OrderStatusAtPickupPoint: {enums.OrderStatusAssigned},
	enums.OrderStatusAssigned:      {enums.OrderStatusPickedUp},
	enums.OrderStatusPickedUp:      {enums.OrderStatusInTransit},
	enums.OrderStatusInTransit:     {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:     {enums.OrderStatusFinalized, enums.OrderStatusDisputed},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another. Re-applying the current status is always allowed.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", to)
	}
	if !CanTransition(from, to) {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", from, to).
			WithDetails(map[string]any{"from": from, "to": to})
	}
	return nil
}
