package store

import (
	"context"
	"slices"
	"time"

	"salon-api/internal/model"
)

// userRecord is the persisted shape of a user. It has no points field: the
// loyalty map is the only place points live.
type userRecord struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"passwordHash"`
	Role         model.Role `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	Visits       int        `json:"visits"`
}

type NewUser struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         model.Role
}

// UserPatch is a shallow merge: nil fields are left alone.
type UserPatch struct {
	Name         *string
	Email        *string
	Phone        *string
	PasswordHash *string
	Role         *model.Role
}

func (s *Store) toUser(r userRecord) model.User {
	return model.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
		Points:       s.points[r.ID],
		Visits:       r.Visits,
	}
}

// AddUser does not check email uniqueness; callers look the email up first.
func (s *Store) AddUser(ctx context.Context, in NewUser) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := in.Role
	if role == "" {
		role = model.RoleClient
	}
	rec := userRecord{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: in.PasswordHash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	next := append(slices.Clip(s.users), rec)
	if err := s.persist(ctx, KeyUsers, next); err != nil {
		return model.User{}, err
	}
	s.users = next
	return s.toUser(rec), nil
}

// UserByEmail is an exact, case-sensitive match; the first match wins.
func (s *Store) UserByEmail(email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.users {
		if r.Email == email {
			return s.toUser(r), nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *Store) UserByID(id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.userIndex(id); i >= 0 {
		return s.toUser(s.users[i]), nil
	}
	return model.User{}, ErrNotFound
}

// Users returns every user in insertion order.
func (s *Store) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.users))
	for i, r := range s.users {
		out[i] = s.toUser(r)
	}
	return out
}

func (s *Store) UpdateUser(ctx context.Context, id string, p UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return model.User{}, ErrNotFound
	}
	rec := s.users[i]
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.Email != nil {
		rec.Email = *p.Email
	}
	if p.Phone != nil {
		rec.Phone = *p.Phone
	}
	if p.PasswordHash != nil {
		rec.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		rec.Role = *p.Role
	}

	next := slices.Clone(s.users)
	next[i] = rec
	if err := s.persist(ctx, KeyUsers, next); err != nil {
		return model.User{}, err
	}
	s.users = next
	return s.toUser(rec), nil
}

// userIndex must be called with s.mu held.
func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(r userRecord) bool { return r.ID == id })
}
