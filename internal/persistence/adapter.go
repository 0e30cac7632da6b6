// Package persistence stores the application collections as JSON blobs in a
// key-value backend, one key per collection and one per session.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/kv"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
	"go.uber.org/multierr"
)

// Keys names the storage keys. The version lives in the prefix.
type Keys struct {
	Users         string
	Orders        string
	Tickets       string
	SessionPrefix string
}

// KeysFor derives the keys from a prefix such as "barribox_v6".
func KeysFor(prefix string) Keys {
	prefix = strings.TrimSpace(prefix)
	return Keys{
		Users:         prefix + "_users",
		Orders:        prefix + "_orders",
		Tickets:       prefix + "_tickets",
		SessionPrefix: prefix + "_session",
	}
}

// Session returns the key of one session.
func (k Keys) Session(id string) string {
	return k.SessionPrefix + ":" + id
}

// Snapshot is the full persisted state.
type Snapshot struct {
	Users   []models.User
	Orders  []models.Order
	Tickets []models.SupportTicket
	// Seeded is set when Load had to create the demo catalog.
	Seeded bool
}

// Adapter reads and writes collections wholesale.
type Adapter struct {
	store    kv.Store
	keys     Keys
	logg     *logger.Logger
	now      func() time.Time
	seedDemo bool
}

type Option func(*Adapter)

// WithClock overrides the time source used for demo seeding.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// WithoutDemoSeed leaves the order collection empty on first load.
func WithoutDemoSeed() Option {
	return func(a *Adapter) { a.seedDemo = false }
}

func New(store kv.Store, keyPrefix string, logg *logger.Logger, opts ...Option) (*Adapter, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if strings.TrimSpace(keyPrefix) == "" {
		return nil, fmt.Errorf("key prefix required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	a := &Adapter{
		store:    store,
		keys:     KeysFor(keyPrefix),
		logg:     logg,
		now:      time.Now,
		seedDemo: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) Keys() Keys {
	return a.keys
}

// Ping checks the backing store.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// Load reads every collection. A missing orders key seeds and persists the
// demo catalog.
func (a *Adapter) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	users, _, err := readJSON[[]models.User](ctx, a.store, a.keys.Users)
	if err != nil {
		return nil, err
	}
	snap.Users = nonNil(users)

	orders, found, err := readJSON[[]models.Order](ctx, a.store, a.keys.Orders)
	if err != nil {
		return nil, err
	}
	if !found && a.seedDemo {
		orders = DemoOrders(a.now())
		if err := a.SaveOrders(ctx, orders); err != nil {
			return nil, err
		}
		snap.Seeded = true
		a.logg.Info(a.logg.WithField(ctx, "orders", len(orders)), "persistence.demo_seeded")
	}
	snap.Orders = nonNil(orders)

	tickets, _, err := readJSON[[]models.SupportTicket](ctx, a.store, a.keys.Tickets)
	if err != nil {
		return nil, err
	}
	snap.Tickets = nonNil(tickets)

	return snap, nil
}

// Save writes every collection, reporting all failures together.
func (a *Adapter) Save(ctx context.Context, snap Snapshot) error {
	var err error
	err = multierr.Append(err, a.SaveUsers(ctx, snap.Users))
	err = multierr.Append(err, a.SaveOrders(ctx, snap.Orders))
	err = multierr.Append(err, a.SaveTickets(ctx, snap.Tickets))
	return err
}

func (a *Adapter) SaveUsers(ctx context.Context, users []models.User) error {
	return writeJSON(ctx, a.store, a.keys.Users, nonNil(users), 0)
}

func (a *Adapter) SaveOrders(ctx context.Context, orders []models.Order) error {
	return writeJSON(ctx, a.store, a.keys.Orders, nonNil(orders), 0)
}

func (a *Adapter) SaveTickets(ctx context.Context, tickets []models.SupportTicket) error {
	return writeJSON(ctx, a.store, a.keys.Tickets, nonNil(tickets), 0)
}

// Reseed replaces the order collection with a fresh demo catalog.
func (a *Adapter) Reseed(ctx context.Context) ([]models.Order, error) {
	orders := DemoOrders(a.now())
	if err := a.SaveOrders(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (a *Adapter) SaveSession(ctx context.Context, id string, user models.User, ttl time.Duration) error {
	return writeJSON(ctx, a.store, a.keys.Session(id), user, ttl)
}

// LoadSession returns nil when the session key is absent.
func (a *Adapter) LoadSession(ctx context.Context, id string) (*models.User, error) {
	user, found, err := readJSON[models.User](ctx, a.store, a.keys.Session(id))
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// ClearSession deletes the key rather than writing an empty value.
func (a *Adapter) ClearSession(ctx context.Context, id string) error {
	if err := a.store.Del(ctx, a.keys.Session(id)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session")
	}
	return nil
}

func readJSON[T any](ctx context.Context, store kv.Store, key string) (T, bool, error) {
	var out T
	raw, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+key)
	}
	if strings.TrimSpace(raw) == "" || raw == "null" {
		return out, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode "+key)
	}
	return out, true, nil
}

func writeJSON(ctx context.Context, store kv.Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+key)
	}
	if err := store.Set(ctx, key, string(raw), ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write "+key)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
