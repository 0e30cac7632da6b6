package users

import (
	"regexp"
	"strings"

	"github.com/barribox/barribox-backend/internal/reference"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
)

const (
	MsgInvalidName  = "El nombre solo puede contener letras."
	MsgInvalidPhone = "El teléfono debe tener exactamente 9 dígitos."
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{9}$`)
)

// ValidName reports whether name has only letters, accented vowels, ñ and
// whitespace.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ValidPhone reports whether phone is exactly nine digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func validateRegistration(input RegisterInput) error {
	if strings.TrimSpace(input.Name) == "" || !ValidName(input.Name) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgInvalidName).
			WithDetails(map[string]string{"field": "name"})
	}
	if !ValidPhone(input.Phone) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgInvalidPhone).
			WithDetails(map[string]string{"field": "phone"})
	}
	if _, ok := reference.FindNeighborhood(input.Neighborhood); !ok {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown neighborhood %q", input.Neighborhood).
			WithDetails(map[string]string{"field": "neighborhood"})
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "role required").
			WithDetails(map[string]string{"field": "role"})
	}
	return nil
}
