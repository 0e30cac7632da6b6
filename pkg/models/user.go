package models

import (
	"time"

	"github.com/barribox/barribox-backend/pkg/enums"
)

// Preferences holds per-user accessibility toggles.
type Preferences struct {
	LargeText      bool `json:"largeText"`
	HighContrast   bool `json:"highContrast"`
	VoiceAssistant bool `json:"voiceAssistant"`
}

// DefaultPreferences is applied at registration.
func DefaultPreferences() Preferences {
	return Preferences{VoiceAssistant: true}
}

// User is a registered participant.
type User struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	Neighborhood    string          `json:"neighborhood"`
	Role            *enums.UserRole `json:"role"`
	Verified        bool            `json:"verified"`
	DeviceID        string          `json:"deviceId,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	Rating          *float64        `json:"rating,omitempty"`
	TotalDeliveries int             `json:"totalDeliveries,omitempty"`
	Preferences     Preferences     `json:"preferences"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	out := u
	if u.Role != nil {
		role := *u.Role
		out.Role = &role
	}
	if u.Rating != nil {
		rating := *u.Rating
		out.Rating = &rating
	}
	return out
}

// RoleOrEmpty returns the role, or "" before onboarding.
func (u User) RoleOrEmpty() enums.UserRole {
	if u.Role == nil {
		return ""
	}
	return *u.Role
}

// IsCourier reports whether the user currently operates as a courier.
func (u User) IsCourier() bool {
	return u.RoleOrEmpty() == enums.UserRoleCourier
}
