package reference

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	orderIDPrefix = "BBX-"
	orderIDLength = 4
	base36Digits  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewOrderID returns BBX- followed by four uppercase base-36 characters.
// Collisions are possible; callers that keep a collection retry.
func NewOrderID() string {
	var b strings.Builder
	b.Grow(len(orderIDPrefix) + orderIDLength)
	b.WriteString(orderIDPrefix)
	for i := 0; i < orderIDLength; i++ {
		b.WriteByte(base36Digits[rand.IntN(len(base36Digits))])
	}
	return b.String()
}

// NewConfirmationCode returns a four digit code in 1000..9999.
func NewConfirmationCode() string {
	return strconv.Itoa(1000 + rand.IntN(9000))
}

func NewUserID() string {
	return "u-" + shortUUID()
}

func NewMessageID() string {
	return "m-" + shortUUID()
}

func NewTicketID() string {
	return "t-" + shortUUID()
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
