package store

import (
	"context"
	"slices"

	"salon-api/internal/model"
)

type NewAppointment struct {
	UserID  string
	Service string
	Date    string
	Time    string
	Note    string
	Name    string
	Phone   string
	Email   string
}

// AddAppointment always records the booking as pending. Date validity and
// double booking are the caller's concern.
func (s *Store) AddAppointment(ctx context.Context, in NewAppointment) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := model.Appointment{
		ID:        s.newID(),
		UserID:    in.UserID,
		Service:   in.Service,
		Date:      in.Date,
		Time:      in.Time,
		Note:      in.Note,
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    model.StatusPending,
		CreatedAt: s.now().UTC(),
	}
	next := append(slices.Clip(s.appointments), a)
	if err := s.persist(ctx, KeyAppointments, next); err != nil {
		return model.Appointment{}, err
	}
	s.appointments = next
	return a, nil
}

// AppointmentsByUser keeps insertion order.
func (s *Store) AppointmentsByUser(userID string) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Appointment, 0)
	for _, a := range s.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Appointments() []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.appointments)
}

func (s *Store) AppointmentByID(id string) (model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.appointmentIndex(id); i >= 0 {
		return s.appointments[i], nil
	}
	return model.Appointment{}, ErrNotFound
}

// UpdateAppointmentStatus overwrites the status without checking it is one of
// the known values.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, status model.Status) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.appointmentIndex(id)
	if i < 0 {
		return model.Appointment{}, ErrNotFound
	}
	next := slices.Clone(s.appointments)
	next[i].Status = status
	if err := s.persist(ctx, KeyAppointments, next); err != nil {
		return model.Appointment{}, err
	}
	s.appointments = next
	return next[i], nil
}

func (s *Store) appointmentIndex(id string) int {
	return slices.IndexFunc(s.appointments, func(a model.Appointment) bool { return a.ID == id })
}
