package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

const (
	SubjectAppointmentBooked    = "salon.appointment.booked"
	SubjectAppointmentStatus    = "salon.appointment.status"
	SubjectTestimonialSubmitted = "salon.testimonial.submitted"
	SubjectNewsletterSubscribed = "salon.newsletter.subscribed"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Nop drops every event. Used when NATS_URL is not set.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close()                                     {}

type NATS struct {
	nc *nats.Conn
}

func Connect(url string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("salon-api"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Printf("connected to NATS at %s", nc.ConnectedUrl())
	return &NATS{nc: nc}, nil
}

func (n *NATS) Publish(_ context.Context, subject string, payload any) error {
	if n.nc == nil || !n.nc.IsConnected() {
		return nats.ErrConnectionClosed
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	return n.nc.Publish(subject, b)
}

// Close flushes pending messages before closing the connection.
func (n *NATS) Close() {
	if n.nc == nil {
		return
	}
	_ = n.nc.Drain()
	log.Printf("NATS connection closed")
}

// New returns a NATS publisher for url, or Nop when url is empty.
func New(url string) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	return Connect(url)
}
