package users

import (
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/models"
)

// RegisterInput carries the onboarding form.
type RegisterInput struct {
	Name         string
	Phone        string
	Neighborhood string
	Role         enums.UserRole
	DeviceID     string
}

// ProfileUpdate applies the non-nil fields to the user.
type ProfileUpdate struct {
	Neighborhood  *string
	PaymentMethod *string
	Preferences   *models.Preferences
}
