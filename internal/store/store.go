// Package store mirrors the salon's collections in memory and writes a
// collection back to the medium, whole, after every mutation that touches it.
//
// Mutations build the next version of a collection, persist it, and only then
// swap it in, so a failed write leaves memory matching the medium.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"salon-api/internal/kv"
	"salon-api/internal/model"
)

// Slot names in the medium.
const (
	KeyUsers         = "users"
	KeyAppointments  = "appointments"
	KeyTestimonials  = "testimonials"
	KeyLoyaltyPoints = "loyaltyPoints"
	KeySubscribers   = "newsletterSubscribers"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	mu     sync.RWMutex
	medium kv.Medium
	now    func() time.Time
	newID  func() string

	users        []userRecord
	appointments []model.Appointment
	testimonials []model.Testimonial
	points       map[string]int
	subscribers  []string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New loads every collection from m. A slot that was never written starts
// empty; a slot that cannot be decoded is an error.
func New(ctx context.Context, m kv.Medium, opts ...Option) (*Store, error) {
	s := &Store{
		medium: m,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := load(ctx, m, KeyUsers, &s.users); err != nil {
		return nil, err
	}
	if err := load(ctx, m, KeyAppointments, &s.appointments); err != nil {
		return nil, err
	}
	if err := load(ctx, m, KeyTestimonials, &s.testimonials); err != nil {
		return nil, err
	}
	if err := load(ctx, m, KeyLoyaltyPoints, &s.points); err != nil {
		return nil, err
	}
	if err := load(ctx, m, KeySubscribers, &s.subscribers); err != nil {
		return nil, err
	}
	if s.points == nil {
		s.points = make(map[string]int)
	}
	return s, nil
}

func load(ctx context.Context, m kv.Medium, key string, dst any) error {
	b, err := m.Load(ctx, key)
	if errors.Is(err, kv.ErrNoValue) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: load %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.medium.Save(ctx, key, b); err != nil {
		return fmt.Errorf("store: persist %s: %w", key, err)
	}
	return nil
}
