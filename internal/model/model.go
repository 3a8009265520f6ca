package model

import "time"

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// User is a salon client or staff account. Points is never stored on the
// record; the store fills it from the loyalty map on every read.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	Points       int       `json:"points"`
	Visits       int       `json:"visits"`
}

// Public strips the password hash before a record leaves the process.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DateLayout is the calendar-date format used for Appointment.Date.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format used for Appointment.Time.
const ClockLayout = "15:04"

// Appointment is a booking. UserID is empty for guest bookings, which carry
// their own contact fields instead.
type Appointment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	Note      string    `json:"note,omitempty"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type Testimonial struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Service    string    `json:"service"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

type Reward struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

type Service struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}
