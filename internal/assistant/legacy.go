package assistant

import (
	"regexp"
	"strings"

	"github.com/barribox/barribox-backend/pkg/enums"
)

var (
	navigatePattern    = regexp.MustCompile(`\[NAVIGATE:(.*?)\]`)
	assignPattern      = regexp.MustCompile(`\[ASSIGN:(.*?)\]`)
	sendMessagePattern = regexp.MustCompile(`\[SEND_MESSAGE:(.*?):(.*?)\]`)
	openChatPattern    = regexp.MustCompile(`\[OPEN_CHAT:(.*?)\]`)
	bracketPattern     = regexp.MustCompile(`\[.*?\]`)
)

// parseLegacy extracts every bracket command, then strips all bracketed
// text from the reply.
func parseLegacy(raw string) Reply {
	reply := Reply{Text: CleanText(raw)}

	for _, m := range navigatePattern.FindAllStringSubmatch(raw, -1) {
		tab, err := enums.ParseTab(m[1])
		if err != nil {
			reply.Rejected++
			continue
		}
		reply.Actions = append(reply.Actions, Action{Type: ActionNavigate, Tab: tab})
	}
	for _, m := range assignPattern.FindAllStringSubmatch(raw, -1) {
		appendIDAction(&reply, ActionAssign, m[1])
	}
	for _, m := range sendMessagePattern.FindAllStringSubmatch(raw, -1) {
		orderID, text := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if orderID == "" || text == "" {
			reply.Rejected++
			continue
		}
		reply.Actions = append(reply.Actions, Action{Type: ActionSendMessage, OrderID: orderID, Text: text})
	}
	for _, m := range openChatPattern.FindAllStringSubmatch(raw, -1) {
		appendIDAction(&reply, ActionOpenChat, m[1])
	}
	return reply
}

func appendIDAction(reply *Reply, kind ActionType, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		reply.Rejected++
		return
	}
	reply.Actions = append(reply.Actions, Action{Type: kind, OrderID: id})
}

// CleanText removes every [..] segment and trims the result.
func CleanText(raw string) string {
	return strings.TrimSpace(bracketPattern.ReplaceAllString(raw, ""))
}
