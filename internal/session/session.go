// Package session tracks who is signed in. Each login gets its own slot in
// the persistence medium, named after the token's jti, holding a snapshot of
// the user; logging out clears the slot and the token stops validating even
// before it expires.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon-api/internal/auth"
	"salon-api/internal/kv"
	"salon-api/internal/model"
	"salon-api/internal/store"
)

const (
	DefaultSlotKey = "currentUser"
	slotPrefix     = "session:"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLockedOut          = errors.New("too many failed logins")
	ErrSessionClosed      = errors.New("session closed")
)

// Slot is one medium key holding at most one user snapshot.
type Slot struct {
	medium kv.Medium
	key    string
	ttl    time.Duration
}

func NewSlot(m kv.Medium, key string) *Slot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &Slot{medium: m, key: key}
}

// Expiring makes every later Set keep the snapshot for ttl only.
func (s *Slot) Expiring(ttl time.Duration) *Slot {
	s.ttl = ttl
	return s
}

// Get returns ok=false when nobody is signed in on this slot.
func (s *Slot) Get(ctx context.Context) (model.User, bool, error) {
	raw, err := s.medium.Load(ctx, s.key)
	if errors.Is(err, kv.ErrNoValue) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return model.User{}, false, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return u, true, nil
}

func (s *Slot) Set(ctx context.Context, u model.User) error {
	raw, err := json.Marshal(u.Public())
	if err != nil {
		return err
	}
	return s.medium.SaveTTL(ctx, s.key, raw, s.ttl)
}

func (s *Slot) Clear(ctx context.Context) error {
	return s.medium.Delete(ctx, s.key)
}

type UserFinder interface {
	UserByEmail(email string) (model.User, error)
}

type Config struct {
	Secret      string
	TTL         time.Duration
	MaxAttempts int
	Lockout     time.Duration
}

type Manager struct {
	users  UserFinder
	medium kv.Medium
	secret string
	ttl    time.Duration
	lock   *Lockout
}

func NewManager(users UserFinder, m kv.Medium, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Manager{
		users:  users,
		medium: m,
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		lock:   NewLockout(cfg.MaxAttempts, cfg.Lockout, cfg.Lockout),
	}
}

func (m *Manager) Lockout() *Lockout { return m.lock }

func (m *Manager) slot(id string) *Slot {
	return NewSlot(m.medium, slotPrefix+id)
}

// Login checks the password against the stored bcrypt hash and opens a
// session. Emails are matched lower-cased. Unknown emails and wrong
// passwords fail the same way and both count toward the lockout.
func (m *Manager) Login(ctx context.Context, email, password string) (string, model.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if locked, left := m.lock.Locked(key); locked {
		return "", model.User{}, fmt.Errorf("%w: retry in %s", ErrLockedOut, left.Round(time.Second))
	}

	u, err := m.users.UserByEmail(key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", model.User{}, err
	}
	if err != nil || u.PasswordHash == "" || !auth.CheckPassword(u.PasswordHash, password) {
		if m.lock.Fail(key) {
			return "", model.User{}, fmt.Errorf("%w: retry in %s", ErrLockedOut, m.lock.lockFor)
		}
		return "", model.User{}, ErrInvalidCredentials
	}
	m.lock.Reset(key)

	tok, err := m.Open(ctx, u)
	if err != nil {
		return "", model.User{}, err
	}
	return tok, u.Public(), nil
}

// Open starts a session for u without checking credentials; callers have
// already established who u is. The slot expires with the token.
func (m *Manager) Open(ctx context.Context, u model.User) (string, error) {
	tok, claims, err := auth.MakeToken(u, m.secret, m.ttl)
	if err != nil {
		return "", err
	}
	if err := m.slot(claims.SessionID()).Expiring(m.ttl).Set(ctx, u); err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	return tok, nil
}

// Validate returns the claims and the session's user snapshot.
func (m *Manager) Validate(ctx context.Context, raw string) (*auth.Claims, model.User, error) {
	claims, err := auth.ParseToken(raw, m.secret)
	if err != nil {
		return nil, model.User{}, err
	}
	u, ok, err := m.slot(claims.SessionID()).Get(ctx)
	if err != nil {
		return nil, model.User{}, err
	}
	if !ok {
		return nil, model.User{}, ErrSessionClosed
	}
	return claims, u, nil
}

func (m *Manager) Logout(ctx context.Context, raw string) error {
	claims, err := auth.ParseToken(raw, m.secret)
	if err != nil {
		return err
	}
	return m.slot(claims.SessionID()).Clear(ctx)
}

// Refresh rewrites the snapshot after the user's record changed. The slot
// keeps the token's remaining lifetime.
func (m *Manager) Refresh(ctx context.Context, claims *auth.Claims, u model.User) error {
	ttl := m.ttl
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
		if ttl <= 0 {
			return ErrSessionClosed
		}
	}
	return m.slot(claims.SessionID()).Expiring(ttl).Set(ctx, u)
}
