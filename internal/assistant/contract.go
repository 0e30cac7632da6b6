package assistant

import (
	"encoding/json"
	"strings"

	"github.com/barribox/barribox-backend/pkg/enums"
	"google.golang.org/genai"
)

const contractVersion = 1

// ActionType names an operation the assistant may request.
type ActionType string

const (
	ActionNavigate    ActionType = "navigate"
	ActionAssign      ActionType = "assign"
	ActionSendMessage ActionType = "send_message"
	ActionOpenChat    ActionType = "open_chat"
)

// Action is one validated request from the model.
type Action struct {
	Type    ActionType `json:"type"`
	Tab     enums.Tab  `json:"tab,omitempty"`
	OrderID string     `json:"orderId,omitempty"`
	Text    string     `json:"text,omitempty"`
}

// Reply is the parsed model output.
type Reply struct {
	Text    string
	Actions []Action
	// Structured is false when the legacy bracket format was used.
	Structured bool
	// Rejected counts actions dropped during validation.
	Rejected int
}

type envelope struct {
	Version *int              `json:"version"`
	Reply   *string           `json:"reply"`
	Actions []json.RawMessage `json:"actions"`
}

type rawAction struct {
	Type    string `json:"type"`
	Tab     string `json:"tab"`
	OrderID string `json:"orderId"`
	Text    string `json:"text"`
}

// EnvelopeSchema constrains the voice surface output.
func EnvelopeSchema() *genai.Schema {
	tabs := make([]string, 0, len(enums.Tabs()))
	for _, t := range enums.Tabs() {
		tabs = append(tabs, t.String())
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"version": {Type: genai.TypeInteger},
			"reply":   {Type: genai.TypeString},
			"actions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type": {
							Type: genai.TypeString,
							Enum: []string{string(ActionNavigate), string(ActionAssign), string(ActionSendMessage), string(ActionOpenChat)},
						},
						"tab":     {Type: genai.TypeString, Enum: tabs},
						"orderId": {Type: genai.TypeString},
						"text":    {Type: genai.TypeString},
					},
					Required: []string{"type"},
				},
			},
		},
		Required: []string{"version", "reply", "actions"},
	}
}

// ParseReply reads the versioned JSON envelope and falls back to the bracket
// format when the output is not a valid envelope.
func ParseReply(raw string) Reply {
	if reply, ok := parseEnvelope(raw); ok {
		return reply
	}
	return parseLegacy(raw)
}

func parseEnvelope(raw string) (Reply, bool) {
	body := stripCodeFence(strings.TrimSpace(raw))
	if !strings.HasPrefix(body, "{") {
		return Reply{}, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return Reply{}, false
	}
	if env.Version == nil || *env.Version != contractVersion || env.Reply == nil {
		return Reply{}, false
	}

	reply := Reply{Text: strings.TrimSpace(*env.Reply), Structured: true}
	for _, rawAct := range env.Actions {
		var ra rawAction
		if err := json.Unmarshal(rawAct, &ra); err != nil {
			reply.Rejected++
			continue
		}
		action, ok := validateAction(ra)
		if !ok {
			reply.Rejected++
			continue
		}
		reply.Actions = append(reply.Actions, action)
	}
	return reply, true
}

func validateAction(ra rawAction) (Action, bool) {
	orderID := strings.TrimSpace(ra.OrderID)
	switch ActionType(ra.Type) {
	case ActionNavigate:
		tab, err := enums.ParseTab(ra.Tab)
		if err != nil {
			return Action{}, false
		}
		return Action{Type: ActionNavigate, Tab: tab}, true
	case ActionAssign, ActionOpenChat:
		if orderID == "" {
			return Action{}, false
		}
		return Action{Type: ActionType(ra.Type), OrderID: orderID}, true
	case ActionSendMessage:
		text := strings.TrimSpace(ra.Text)
		if orderID == "" || text == "" {
			return Action{}, false
		}
		return Action{Type: ActionSendMessage, OrderID: orderID, Text: text}, true
	}
	return Action{}, false
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
