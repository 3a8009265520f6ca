package store

import (
	"context"
	"slices"
)

// Subscribe appends email to the newsletter list unless it is already there.
// added is false for a repeat; nothing is written in that case.
func (s *Store) Subscribe(ctx context.Context, email string) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.subscribers, email) {
		return false, nil
	}
	next := append(slices.Clip(s.subscribers), email)
	if err := s.persist(ctx, KeySubscribers, next); err != nil {
		return false, err
	}
	s.subscribers = next
	return true, nil
}

// Subscribers returns the list in signup order.
func (s *Store) Subscribers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.subscribers)
}
