package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/enums"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

type stateStore interface {
	Users() []models.User
	User(id string) (models.User, bool)
	MutateUsers(ctx context.Context, fn func(users []models.User) ([]models.User, error)) error
}

// Service manages registration and profile state.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	ListByRole(role *enums.UserRole) []models.User
	Get(id string) (*models.User, error)
	SwitchRole(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error)
}

type service struct {
	state stateStore
	logg  *logger.Logger
	now   func() time.Time
}

func NewService(state stateStore, logg *logger.Logger) (Service, error) {
	if state == nil {
		return nil, fmt.Errorf("state store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{state: state, logg: logg, now: time.Now}, nil
}

// Register validates before touching state, so a rejected form never
// mutates anything.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := validateRegistration(input); err != nil {
		return nil, err
	}
	neighborhood, _ := reference.FindNeighborhood(input.Neighborhood)
	role := input.Role
	user := models.User{
		ID:           reference.NewUserID(),
		Name:         strings.TrimSpace(input.Name),
		Phone:        input.Phone,
		Neighborhood: neighborhood.Name,
		Role:         &role,
		Verified:     true,
		DeviceID:     strings.TrimSpace(input.DeviceID),
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    s.now(),
	}
	err := s.state.MutateUsers(ctx, func(users []models.User) ([]models.User, error) {
		return append(users, user.Clone()), nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user.registered")
	return &user, nil
}

// ListByRole backs the login picker. A nil role lists everyone.
func (s *service) ListByRole(role *enums.UserRole) []models.User {
	all := s.state.Users()
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if role == nil || u.RoleOrEmpty() == *role {
			out = append(out, u)
		}
	}
	return out
}

func (s *service) Get(id string) (*models.User, error) {
	user, ok := s.state.User(id)
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "user %s not found", id)
	}
	return &user, nil
}

// SwitchRole flips between sender and courier. Users without a role are
// rejected since the role is never cleared or guessed.
func (s *service) SwitchRole(ctx context.Context, id string) (*models.User, error) {
	updated, err := s.mutate(ctx, id, func(u *models.User) error {
		if u.Role == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "user has no role to switch")
		}
		next := u.Role.Opposite()
		u.Role = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithActorRole(s.logg.WithUserID(ctx, id), updated.RoleOrEmpty().String()), "user.role_switched")
	return updated, nil
}

func (s *service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	return s.mutate(ctx, id, func(u *models.User) error {
		if update.Neighborhood != nil {
			n, ok := reference.FindNeighborhood(*update.Neighborhood)
			if !ok {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown neighborhood %q", *update.Neighborhood)
			}
			u.Neighborhood = n.Name
		}
		if update.PaymentMethod != nil {
			u.PaymentMethod = strings.TrimSpace(*update.PaymentMethod)
		}
		if update.Preferences != nil {
			u.Preferences = *update.Preferences
		}
		return nil
	})
}

func (s *service) mutate(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	var updated models.User
	err := s.state.MutateUsers(ctx, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID != id {
				continue
			}
			if err := fn(&users[i]); err != nil {
				return nil, err
			}
			updated = users[i].Clone()
			return users, nil
		}
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "user %s not found", id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
