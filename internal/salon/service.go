// Package salon holds the use cases behind every transport: input rules,
// loyalty awards and notifications live here so the store can stay a plain
// record keeper.
package salon

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"salon-api/internal/auth"
	"salon-api/internal/dashboard"
	"salon-api/internal/events"
	"salon-api/internal/model"
	"salon-api/internal/store"
)

type Service struct {
	store  *store.Store
	events events.Publisher
	now    func() time.Time

	// serializes the email check and the insert in Register
	regMu sync.Mutex
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st *store.Store, pub events.Publisher, opts ...Option) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	s := &Service{store: st, events: pub, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		log.Printf("publish %s: %v", subject, err)
	}
}

type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Confirm     string `json:"confirmPassword"`
	AcceptTerms bool   `json:"acceptTerms"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)

	if err := checkName(name); err != nil {
		return model.User{}, err
	}
	if err := checkEmail(email); err != nil {
		return model.User{}, err
	}
	if err := checkPhone(phone); err != nil {
		return model.User{}, err
	}
	if len(in.Password) < minPasswordLen {
		return model.User{}, invalid("password must be at least %d characters", minPasswordLen)
	}
	if in.Password != in.Confirm {
		return model.User{}, invalid("passwords do not match")
	}
	if !in.AcceptTerms {
		return model.User{}, invalid("terms must be accepted")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	s.regMu.Lock()
	defer s.regMu.Unlock()
	if _, err := s.store.UserByEmail(email); err == nil {
		return model.User{}, ErrEmailTaken
	}
	u, err := s.store.AddUser(ctx, store.NewUser{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         model.RoleClient,
	})
	if err != nil {
		return model.User{}, err
	}
	return u.Public(), nil
}

// EnsureAdmin creates the admin account on first start, or promotes an
// existing account with that email.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.User{}, invalid("admin email and password required")
	}

	s.regMu.Lock()
	defer s.regMu.Unlock()

	u, err := s.store.UserByEmail(email)
	if err == nil {
		if u.IsAdmin() {
			return u.Public(), nil
		}
		role := model.RoleAdmin
		u, err = s.store.UpdateUser(ctx, u.ID, store.UserPatch{Role: &role})
		return u.Public(), err
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}
	u, err = s.store.AddUser(ctx, store.NewUser{Name: name, Email: email, PasswordHash: hash, Role: model.RoleAdmin})
	if err != nil {
		return model.User{}, err
	}
	log.Printf("created admin account %s", email)
	return u.Public(), nil
}

type BookInput struct {
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Note    string `json:"note"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Book creates a pending appointment. An empty userID is a guest booking and
// must carry a name and phone; signed-in clients earn BookingPoints.
func (s *Service) Book(ctx context.Context, userID string, in BookInput) (model.Appointment, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Note = strings.TrimSpace(in.Note)

	if err := checkService(in.Service); err != nil {
		return model.Appointment{}, err
	}
	if err := checkDate(in.Date, s.now()); err != nil {
		return model.Appointment{}, err
	}
	if err := checkTime(in.Time); err != nil {
		return model.Appointment{}, err
	}

	if userID != "" {
		u, err := s.store.UserByID(userID)
		if err != nil {
			return model.Appointment{}, err
		}
		in.Name = cmp.Or(in.Name, u.Name)
		in.Phone = cmp.Or(in.Phone, u.Phone)
		in.Email = cmp.Or(in.Email, u.Email)
	} else {
		if err := checkName(in.Name); err != nil {
			return model.Appointment{}, err
		}
		if err := checkPhone(in.Phone); err != nil {
			return model.Appointment{}, err
		}
	}
	if in.Email != "" {
		if err := checkEmail(in.Email); err != nil {
			return model.Appointment{}, err
		}
	}

	a, err := s.store.AddAppointment(ctx, store.NewAppointment{
		UserID:  userID,
		Service: in.Service,
		Date:    in.Date,
		Time:    in.Time,
		Note:    in.Note,
		Name:    in.Name,
		Phone:   in.Phone,
		Email:   in.Email,
	})
	if err != nil {
		return model.Appointment{}, err
	}
	s.publish(ctx, events.SubjectAppointmentBooked, a)

	if userID != "" {
		if _, err := s.store.AddPoints(ctx, userID, BookingPoints); err != nil {
			return a, fmt.Errorf("award booking points: %w", err)
		}
	}
	return a, nil
}

type TestimonialInput struct {
	Service string `json:"service"`
	Rating  int    `json:"rating"`
	Text    string `json:"text"`
}

// SubmitTestimonial queues a review for moderation and awards
// TestimonialPoints right away.
func (s *Service) SubmitTestimonial(ctx context.Context, userID string, in TestimonialInput) (model.Testimonial, error) {
	u, err := s.store.UserByID(userID)
	if err != nil {
		return model.Testimonial{}, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Testimonial{}, invalid("rating must be between 1 and 5")
	}
	text := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(text) < minTestimonialLen {
		return model.Testimonial{}, invalid("text must be at least %d characters", minTestimonialLen)
	}
	if in.Service != "" {
		if err := checkService(in.Service); err != nil {
			return model.Testimonial{}, err
		}
	}

	t, err := s.store.AddTestimonial(ctx, store.NewTestimonial{
		UserID:     u.ID,
		AuthorName: u.Name,
		Service:    in.Service,
		Rating:     in.Rating,
		Text:       text,
	})
	if err != nil {
		return model.Testimonial{}, err
	}
	s.publish(ctx, events.SubjectTestimonialSubmitted, t)

	if _, err := s.store.AddPoints(ctx, u.ID, TestimonialPoints); err != nil {
		return t, fmt.Errorf("award testimonial points: %w", err)
	}
	return t, nil
}

// CancelAppointment lets a client cancel one of their pending appointments.
// Someone else's appointment reads as not found.
func (s *Service) CancelAppointment(ctx context.Context, userID, id string) (model.Appointment, error) {
	a, err := s.store.AppointmentByID(id)
	if err != nil {
		return model.Appointment{}, err
	}
	if a.UserID == "" || a.UserID != userID {
		return model.Appointment{}, store.ErrNotFound
	}
	switch a.Status {
	case model.StatusCancelled:
		return a, nil
	case model.StatusPending:
	default:
		return model.Appointment{}, fmt.Errorf("%w: only pending appointments can be cancelled", ErrForbidden)
	}
	a, err = s.store.UpdateAppointmentStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return model.Appointment{}, err
	}
	s.publish(ctx, events.SubjectAppointmentStatus, a)
	return a, nil
}

func (s *Service) SetAppointmentStatus(ctx context.Context, id string, st model.Status) (model.Appointment, error) {
	if !st.Valid() {
		return model.Appointment{}, invalid("unknown status %q", st)
	}
	a, err := s.store.UpdateAppointmentStatus(ctx, id, st)
	if err != nil {
		return model.Appointment{}, err
	}
	s.publish(ctx, events.SubjectAppointmentStatus, a)
	return a, nil
}

func (s *Service) ApproveTestimonial(ctx context.Context, id string) (model.Testimonial, error) {
	return s.store.ApproveTestimonial(ctx, id)
}

func (s *Service) PendingTestimonials() []model.Testimonial {
	return s.store.PendingTestimonials()
}

func (s *Service) ApprovedTestimonials() []model.Testimonial {
	return s.store.ApprovedTestimonials()
}

// AllAppointments is the admin listing, most recent date first.
func (s *Service) AllAppointments() []model.Appointment {
	all := s.store.Appointments()
	slices.SortStableFunc(all, func(a, b model.Appointment) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.Time, a.Time)
	})
	return all
}

func (s *Service) Dashboard(_ context.Context, userID string) (dashboard.Summary, error) {
	u, err := s.store.UserByID(userID)
	if err != nil {
		return dashboard.Summary{}, err
	}
	return dashboard.Build(dashboard.Input{
		UserID:       u.ID,
		Points:       u.Points,
		Appointments: s.store.AppointmentsByUser(u.ID),
		Testimonials: s.store.TestimonialsByUser(u.ID),
		Ranking:      s.store.Ranking(),
		Today:        s.now(),
	}), nil
}

func (s *Service) History(userID string, f dashboard.HistoryFilter) []model.Appointment {
	_, hist := dashboard.Partition(s.store.AppointmentsByUser(userID), s.now())
	return dashboard.FilterHistory(hist, f)
}

// TopClients ranks at most limit clients; 0 gives none.
func (s *Service) TopClients(limit int) []dashboard.Standing {
	return dashboard.Standings(s.store.TopClients(limit))
}

func (s *Service) Profile(userID string) (model.User, error) {
	u, err := s.store.UserByID(userID)
	if err != nil {
		return model.User{}, err
	}
	return u.Public(), nil
}

type ProfileInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// UpdateProfile changes name and phone only. Email and role are fixed.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (model.User, error) {
	var p store.UserPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := checkName(name); err != nil {
			return model.User{}, err
		}
		p.Name = &name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if err := checkPhone(phone); err != nil {
			return model.User{}, err
		}
		p.Phone = &phone
	}
	u, err := s.store.UpdateUser(ctx, userID, p)
	if err != nil {
		return model.User{}, err
	}
	return u.Public(), nil
}

// Subscribe adds email to the newsletter list. Emails are lower-cased and a
// repeat signup succeeds without being stored twice.
func (s *Service) Subscribe(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := checkEmail(email); err != nil {
		return false, err
	}
	added, err := s.store.Subscribe(ctx, email)
	if err != nil {
		return false, err
	}
	if added {
		s.publish(ctx, events.SubjectNewsletterSubscribed, map[string]string{"email": email})
	}
	return added, nil
}

func (s *Service) Subscribers() []string {
	return s.store.Subscribers()
}

type Catalog struct {
	Services []model.Service `json:"services"`
	Rewards  []model.Reward  `json:"rewards"`
}

func (s *Service) Catalog() Catalog {
	return Catalog{Services: model.Services, Rewards: model.Rewards}
}

func (s *Service) Rewards() []model.Reward {
	return model.Rewards
}
