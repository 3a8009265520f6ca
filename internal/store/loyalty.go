package store

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"salon-api/internal/model"
)

const DefaultTopClients = 3

// AddPoints adds delta (which may be negative; there is no floor) to the
// user's total and persists the points map. If the user exists its visit
// counter is bumped by one and users are persisted too. The returned total is
// valid even when the users write fails, because the points write already
// happened.
func (s *Store) AddPoints(ctx context.Context, userID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := maps.Clone(s.points)
	points[userID] += delta
	if err := s.persist(ctx, KeyLoyaltyPoints, points); err != nil {
		return s.points[userID], err
	}
	s.points = points
	total := points[userID]

	i := s.userIndex(userID)
	if i < 0 {
		return total, nil
	}
	users := slices.Clone(s.users)
	users[i].Visits++
	if err := s.persist(ctx, KeyUsers, users); err != nil {
		return total, err
	}
	s.users = users
	return total, nil
}

func (s *Store) Points(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[userID]
}

// Ranking orders every user by points, highest first. Ties keep insertion
// order.
func (s *Store) Ranking() []model.User {
	users := s.Users()
	slices.SortStableFunc(users, func(a, b model.User) int {
		return cmp.Compare(b.Points, a.Points)
	})
	return users
}

// TopClients returns at most limit users from Ranking. limit <= 0 yields an
// empty list; callers that have no limit pass DefaultTopClients.
func (s *Store) TopClients(limit int) []model.User {
	if limit <= 0 {
		return []model.User{}
	}
	r := s.Ranking()
	if len(r) > limit {
		r = r[:limit]
	}
	return r
}
