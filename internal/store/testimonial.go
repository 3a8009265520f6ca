package store

import (
	"context"
	"slices"

	"salon-api/internal/model"
)

type NewTestimonial struct {
	UserID     string
	AuthorName string
	Service    string
	Rating     int
	Text       string
}

// AddTestimonial records the testimonial unapproved.
func (s *Store) AddTestimonial(ctx context.Context, in NewTestimonial) (model.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Testimonial{
		ID:         s.newID(),
		UserID:     in.UserID,
		AuthorName: in.AuthorName,
		Service:    in.Service,
		Rating:     in.Rating,
		Text:       in.Text,
		CreatedAt:  s.now().UTC(),
	}
	next := append(slices.Clip(s.testimonials), t)
	if err := s.persist(ctx, KeyTestimonials, next); err != nil {
		return model.Testimonial{}, err
	}
	s.testimonials = next
	return t, nil
}

func (s *Store) Testimonials() []model.Testimonial {
	return s.filterTestimonials(func(model.Testimonial) bool { return true })
}

func (s *Store) ApprovedTestimonials() []model.Testimonial {
	return s.filterTestimonials(func(t model.Testimonial) bool { return t.Approved })
}

func (s *Store) PendingTestimonials() []model.Testimonial {
	return s.filterTestimonials(func(t model.Testimonial) bool { return !t.Approved })
}

func (s *Store) TestimonialsByUser(userID string) []model.Testimonial {
	return s.filterTestimonials(func(t model.Testimonial) bool { return t.UserID == userID })
}

func (s *Store) filterTestimonials(keep func(model.Testimonial) bool) []model.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Testimonial, 0)
	for _, t := range s.testimonials {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// ApproveTestimonial is idempotent. Approving an approved testimonial skips
// the write.
func (s *Store) ApproveTestimonial(ctx context.Context, id string) (model.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.testimonials, func(t model.Testimonial) bool { return t.ID == id })
	if i < 0 {
		return model.Testimonial{}, ErrNotFound
	}
	if s.testimonials[i].Approved {
		return s.testimonials[i], nil
	}
	next := slices.Clone(s.testimonials)
	next[i].Approved = true
	if err := s.persist(ctx, KeyTestimonials, next); err != nil {
		return model.Testimonial{}, err
	}
	s.testimonials = next
	return next[i], nil
}
