package dashboard

import (
	"time"

	"salon-api/internal/model"
)

const topClientsShown = 3

type Input struct {
	UserID       string
	Points       int
	Appointments []model.Appointment
	Testimonials []model.Testimonial
	// Ranking is the full ordering from the store, not a truncated top list.
	Ranking []model.User
	Today   time.Time
}

type Summary struct {
	Points            int                 `json:"points"`
	TotalAppointments int                 `json:"totalAppointments"`
	Rank              int                 `json:"rank"`
	Ranked            bool                `json:"ranked"`
	Tier              model.Tier          `json:"tier"`
	NextTierPoints    int                 `json:"nextTierPoints"`
	Progress          float64             `json:"progress"`
	Rewards           []model.Reward      `json:"rewards"`
	Upcoming          []model.Appointment `json:"upcoming"`
	History           []model.Appointment `json:"history"`
	Testimonials      []model.Testimonial `json:"testimonials"`
	TopClients        []Standing          `json:"topClients"`
}

// Standing is the public view of a ranked client.
type Standing struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Visits int    `json:"visits"`
}

func Standings(users []model.User) []Standing {
	out := make([]Standing, len(users))
	for i, u := range users {
		out[i] = Standing{Rank: i + 1, Name: u.Name, Points: u.Points, Visits: u.Visits}
	}
	return out
}

func Build(in Input) Summary {
	upcoming, history := Partition(in.Appointments, in.Today)
	tier := TierFor(in.Points)
	rank, ranked := Rank(in.Ranking, in.UserID)

	top := in.Ranking
	if len(top) > topClientsShown {
		top = top[:topClientsShown]
	}
	testimonials := in.Testimonials
	if testimonials == nil {
		testimonials = []model.Testimonial{}
	}

	return Summary{
		Points:            in.Points,
		TotalAppointments: len(in.Appointments),
		Rank:              rank,
		Ranked:            ranked,
		Tier:              tier,
		NextTierPoints:    NextTierTarget(tier),
		Progress:          Progress(in.Points),
		Rewards:           AvailableRewards(in.Points),
		Upcoming:          upcoming,
		History:           history,
		Testimonials:      testimonials,
		TopClients:        Standings(top),
	}
}
