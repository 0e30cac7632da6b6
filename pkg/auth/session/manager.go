package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barribox/barribox-backend/pkg/auth"
	"github.com/barribox/barribox-backend/pkg/config"
	"github.com/barribox/barribox-backend/pkg/models"
	"github.com/google/uuid"
)

// Store persists the user snapshot behind a session id. LoadSession returns
// nil without error when the session is absent.
type Store interface {
	SaveSession(ctx context.Context, id string, user models.User, ttl time.Duration) error
	LoadSession(ctx context.Context, id string) (*models.User, error)
	ClearSession(ctx context.Context, id string) error
}

// Started is returned to the client after login.
type Started struct {
	ID          string    `json:"sessionId"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Manager mints access tokens and keeps the session key in step with them.
type Manager struct {
	store Store
	cfg   config.JWTConfig
	now   func() time.Time
}

// Resolver exposes the read-only surface needed by middleware.
type Resolver interface {
	Resolve(ctx context.Context, sessionID string) (*models.User, error)
}

// NewManager constructs a session manager over the given store.
func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.SessionTTL() <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: store, cfg: cfg, now: time.Now}, nil
}

// Start persists the session snapshot and returns a token whose jti is the
// session id.
func (m *Manager) Start(ctx context.Context, user models.User) (*Started, error) {
	if strings.TrimSpace(user.ID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	id := NewSessionID()
	now := m.now()
	token, err := auth.MintAccessToken(m.cfg, now, auth.AccessTokenPayload{UserID: user.ID, SessionID: id})
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveSession(ctx, id, user, m.cfg.SessionTTL()); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return &Started{ID: id, AccessToken: token, ExpiresAt: now.Add(m.cfg.SessionTTL())}, nil
}

// Resolve returns the session user, or nil when the session was cleared or
// expired.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (*models.User, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return m.store.LoadSession(ctx, sessionID)
}

// Refresh rewrites the snapshot after the user changed role or profile.
func (m *Manager) Refresh(ctx context.Context, sessionID string, user models.User) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.SaveSession(ctx, sessionID, user, m.cfg.SessionTTL())
}

// Revoke deletes the session key.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.ClearSession(ctx, sessionID)
}

// NewSessionID produces the identifier used as the JWT jti and session key
// suffix.
func NewSessionID() string {
	return uuid.NewString()
}
