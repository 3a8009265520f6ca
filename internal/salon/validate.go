package salon

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"salon-api/internal/dashboard"
	"salon-api/internal/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmailTaken   = errors.New("email already registered")
	ErrForbidden    = errors.New("forbidden")
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9\s\-()]{8,}$`)
	timeRe  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

const (
	minNameLen        = 2
	minPasswordLen    = 6
	minTestimonialLen = 10

	BookingPoints     = 10
	TestimonialPoints = 5
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func checkName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minNameLen {
		return invalid("name must be at least %d characters", minNameLen)
	}
	return nil
}

func checkEmail(email string) error {
	if !emailRe.MatchString(email) {
		return invalid("email address is not valid")
	}
	return nil
}

func checkPhone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return invalid("phone number is not valid")
	}
	return nil
}

func checkService(code string) error {
	if _, ok := model.ServiceByCode(code); !ok {
		return invalid("unknown service %q", code)
	}
	return nil
}

// checkDate requires a YYYY-MM-DD date no earlier than today's.
func checkDate(date string, today time.Time) error {
	if date == "" {
		return invalid("date required")
	}
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return invalid("date must be YYYY-MM-DD")
	}
	if d.Before(dashboard.Day(today)) {
		return invalid("date is in the past")
	}
	return nil
}

// checkTime requires zero-padded 24h HH:MM so stored times sort lexically.
func checkTime(t string) error {
	if t == "" {
		return nil
	}
	if !timeRe.MatchString(t) {
		return invalid("time must be HH:MM")
	}
	return nil
}
