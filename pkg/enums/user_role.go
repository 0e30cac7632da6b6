package enums

import (
	"fmt"
	"strings"
)

// UserRole is the operating role a participant acts under.
type UserRole string

const (
	UserRoleSender  UserRole = "sender"
	UserRoleCourier UserRole = "courier"
)

var validUserRoles = []UserRole{
	UserRoleSender,
	UserRoleCourier,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Opposite returns the role a switch moves to.
func (r UserRole) Opposite() UserRole {
	if r == UserRoleCourier {
		return UserRoleSender
	}
	return UserRoleCourier
}

// Label returns the Spanish display name.
func (r UserRole) Label() string {
	switch r {
	case UserRoleSender:
		return "Cliente"
	case UserRoleCourier:
		return "Repartidor"
	}
	return string(r)
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	normalized := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
