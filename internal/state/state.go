// Package state holds the in-memory application state and writes every
// committed mutation through to persistence.
package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/barribox/barribox-backend/internal/persistence"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

// Persister is the subset of the persistence adapter the state needs.
type Persister interface {
	Load(ctx context.Context) (*persistence.Snapshot, error)
	SaveUsers(ctx context.Context, users []models.User) error
	SaveOrders(ctx context.Context, orders []models.Order) error
	SaveTickets(ctx context.Context, tickets []models.SupportTicket) error
}

// Store serialises mutations behind a mutex. Readers always get copies.
type Store struct {
	mu      sync.RWMutex
	persist Persister
	logg    *logger.Logger

	users   []models.User
	orders  []models.Order
	tickets []models.SupportTicket
}

// Open loads the persisted snapshot.
func Open(ctx context.Context, persist Persister, logg *logger.Logger) (*Store, error) {
	if persist == nil {
		return nil, fmt.Errorf("persister required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{persist: persist, logg: logg}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory state with what persistence holds.
func (s *Store) Reload(ctx context.Context) error {
	snap, err := s.persist.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.Users
	s.orders = snap.Orders
	s.tickets = snap.Tickets
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"users":   len(s.users),
		"orders":  len(s.orders),
		"tickets": len(s.tickets),
	}), "state.loaded")
	return nil
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUsers(s.users)
}

func (s *Store) User(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u.Clone(), true
		}
	}
	return models.User{}, false
}

func (s *Store) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

func (s *Store) Order(id string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return models.Order{}, false
}

func (s *Store) Tickets() []models.SupportTicket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SupportTicket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// MutateOrders hands fn a working copy of the orders. The copy is saved and
// then committed only when fn succeeds and the save succeeds.
func (s *Store) MutateOrders(ctx context.Context, fn func(orders []models.Order) ([]models.Order, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(cloneOrders(s.orders))
	if err != nil {
		return err
	}
	if err := s.persist.SaveOrders(ctx, next); err != nil {
		return err
	}
	s.orders = next
	return nil
}

// MutateUsers follows the MutateOrders contract for users.
func (s *Store) MutateUsers(ctx context.Context, fn func(users []models.User) ([]models.User, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(cloneUsers(s.users))
	if err != nil {
		return err
	}
	if err := s.persist.SaveUsers(ctx, next); err != nil {
		return err
	}
	s.users = next
	return nil
}

// MutateTickets follows the MutateOrders contract for tickets.
func (s *Store) MutateTickets(ctx context.Context, fn func(tickets []models.SupportTicket) ([]models.SupportTicket, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	working := make([]models.SupportTicket, len(s.tickets))
	copy(working, s.tickets)
	next, err := fn(working)
	if err != nil {
		return err
	}
	if err := s.persist.SaveTickets(ctx, next); err != nil {
		return err
	}
	s.tickets = next
	return nil
}

func cloneOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}

func cloneUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}
