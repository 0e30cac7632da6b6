package assistant

import (
	"context"

	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/logger"
)

// Directive tells the client where to go after a reply.
type Directive struct {
	Type    ActionType `json:"type"`
	Tab     enums.Tab  `json:"tab"`
	OrderID string     `json:"orderId,omitempty"`
}

type dispatcher struct {
	orders   orders.Service
	logg     *logger.Logger
	recorder Recorder
}

// dispatch executes each action as actor. Failed actions are logged and
// skipped so the remaining ones still run.
func (d dispatcher) dispatch(ctx context.Context, actor orders.Actor, actions []Action) []Directive {
	var directives []Directive
	for _, action := range actions {
		actx := d.logg.WithFields(ctx, map[string]any{
			"action":   string(action.Type),
			"order_id": action.OrderID,
		})
		switch action.Type {
		case ActionNavigate:
			directives = append(directives, Directive{Type: ActionNavigate, Tab: action.Tab})
		case ActionOpenChat:
			directives = append(directives, Directive{Type: ActionOpenChat, Tab: enums.TabHome, OrderID: action.OrderID})
		case ActionAssign:
			// the client returns home after an assign attempt, even a failed one
			directives = append(directives, Directive{Type: ActionNavigate, Tab: enums.TabHome})
			updated, err := d.orders.UpdateStatus(ctx, actor, orders.StatusInput{
				OrderID: action.OrderID,
				Status:  enums.OrderStatusAssigned,
			})
			if err != nil {
				d.logg.Error(actx, "assistant.action_failed", err)
				continue
			}
			if updated == nil {
				d.logg.Warn(actx, "assistant.action_order_missing")
				continue
			}
		case ActionSendMessage:
			if _, err := d.orders.SendMessage(ctx, actor, orders.MessageInput{
				OrderID: action.OrderID,
				Text:    action.Text,
			}); err != nil {
				d.logg.Error(actx, "assistant.action_failed", err)
				continue
			}
		default:
			continue
		}
		d.recorder.IncAction(string(action.Type))
		d.logg.Info(actx, "assistant.action_dispatched")
	}
	return directives
}
