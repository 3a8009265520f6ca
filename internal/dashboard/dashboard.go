// Package dashboard computes the read-only views shown on the client
// dashboard. Everything here is a pure function of its inputs and is
// recomputed on every call, so a partition taken before midnight can differ
// from one taken after.
package dashboard

import (
	"cmp"
	"slices"
	"time"

	"salon-api/internal/model"
)

const (
	silverThreshold = 100
	goldThreshold   = 300
	goldTarget      = 500
)

type HistoryFilter string

const (
	FilterAll       HistoryFilter = "all"
	FilterCompleted HistoryFilter = "completed"
	FilterCancelled HistoryFilter = "cancelled"
)

// Day returns t's calendar date, read in t's location, as midnight UTC so it
// compares directly with parsed Appointment dates.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func appointmentDay(a model.Appointment) (time.Time, bool) {
	d, err := time.Parse(model.DateLayout, a.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsUpcoming reports whether a is dated today or later and not cancelled.
// Appointments with an unreadable date are never upcoming.
func IsUpcoming(a model.Appointment, today time.Time) bool {
	if a.Status == model.StatusCancelled {
		return false
	}
	d, ok := appointmentDay(a)
	return ok && !d.Before(Day(today))
}

// Partition splits appts into upcoming (ascending by date) and history
// (descending by date).
func Partition(appts []model.Appointment, today time.Time) (upcoming, history []model.Appointment) {
	upcoming = make([]model.Appointment, 0)
	history = make([]model.Appointment, 0)
	for _, a := range appts {
		if IsUpcoming(a, today) {
			upcoming = append(upcoming, a)
		} else {
			history = append(history, a)
		}
	}
	slices.SortStableFunc(upcoming, compareSchedule)
	slices.SortStableFunc(history, func(a, b model.Appointment) int { return compareSchedule(b, a) })
	return upcoming, history
}

// compareSchedule orders by date then time of day. Dates are fixed-width;
// times are compared as clock values so "9:30" sorts before "10:00".
func compareSchedule(a, b model.Appointment) int {
	if c := cmp.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	ta, errA := time.Parse(model.ClockLayout, a.Time)
	tb, errB := time.Parse(model.ClockLayout, b.Time)
	if errA != nil || errB != nil {
		return cmp.Compare(a.Time, b.Time)
	}
	return ta.Compare(tb)
}

// FilterHistory narrows a history list. Unknown filters behave like FilterAll.
func FilterHistory(history []model.Appointment, f HistoryFilter) []model.Appointment {
	var want model.Status
	switch f {
	case FilterCompleted:
		want = model.StatusCompleted
	case FilterCancelled:
		want = model.StatusCancelled
	default:
		return history
	}
	out := make([]model.Appointment, 0, len(history))
	for _, a := range history {
		if a.Status == want {
			out = append(out, a)
		}
	}
	return out
}

// TierFor uses inclusive lower bounds and no hysteresis.
func TierFor(points int) model.Tier {
	switch {
	case points >= goldThreshold:
		return model.TierGold
	case points >= silverThreshold:
		return model.TierSilver
	}
	return model.TierBronze
}

// NextTierTarget is the point total the progress bar fills toward. Gold has
// no higher tier and still gets a target.
func NextTierTarget(t model.Tier) int {
	switch t {
	case model.TierSilver:
		return goldThreshold
	case model.TierGold:
		return goldTarget
	}
	return silverThreshold
}

// Progress is points/target for the current tier, clamped to [0, 1].
func Progress(points int) float64 {
	if points <= 0 {
		return 0
	}
	target := NextTierTarget(TierFor(points))
	return min(float64(points)/float64(target), 1.0)
}

func AvailableRewards(points int) []model.Reward {
	out := make([]model.Reward, 0, len(model.Rewards))
	for _, r := range model.Rewards {
		if points >= r.Points {
			out = append(out, r)
		}
	}
	return out
}

// Rank is the 1-based position of userID in ranking; ok is false when the
// user is not ranked.
func Rank(ranking []model.User, userID string) (rank int, ok bool) {
	i := slices.IndexFunc(ranking, func(u model.User) bool { return u.ID == userID })
	if i < 0 {
		return 0, false
	}
	return i + 1, true
}
