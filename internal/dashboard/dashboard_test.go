package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-api/internal/model"
)

var today = time.Date(2026, 3, 14, 18, 45, 0, 0, time.UTC)

func appt(id, date string, st model.Status) model.Appointment {
	return model.Appointment{ID: id, Date: date, Status: st}
}

func ids(appts []model.Appointment) []string {
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = a.ID
	}
	return out
}

func TestIsUpcoming(t *testing.T) {
	tests := []struct {
		name string
		a    model.Appointment
		want bool
	}{
		{"today pending", appt("a", "2026-03-14", model.StatusPending), true},
		{"tomorrow confirmed", appt("a", "2026-03-15", model.StatusConfirmed), true},
		{"yesterday pending", appt("a", "2026-03-13", model.StatusPending), false},
		{"future cancelled", appt("a", "2027-01-01", model.StatusCancelled), false},
		{"today cancelled", appt("a", "2026-03-14", model.StatusCancelled), false},
		{"garbled date", appt("a", "14/03/2026", model.StatusPending), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUpcoming(tt.a, today))
		})
	}
}

func TestIsUpcomingUsesCallerLocation(t *testing.T) {
	// 00:30 on the 15th in Cotonou is still the 14th in UTC; the local date wins.
	cotonou := time.FixedZone("WAT", 3600)
	local := time.Date(2026, 3, 15, 0, 30, 0, 0, cotonou)
	assert.False(t, IsUpcoming(appt("a", "2026-03-14", model.StatusPending), local))
	assert.True(t, IsUpcoming(appt("a", "2026-03-15", model.StatusPending), local))
}

func TestPartitionOrdering(t *testing.T) {
	in := []model.Appointment{
		appt("late", "2026-04-02", model.StatusPending),
		appt("old", "2026-01-10", model.StatusCompleted),
		appt("soon", "2026-03-20", model.StatusConfirmed),
		appt("gone", "2026-05-01", model.StatusCancelled),
		appt("older", "2025-12-01", model.StatusCompleted),
	}
	up, hist := Partition(in, today)
	assert.Equal(t, []string{"soon", "late"}, ids(up))
	assert.Equal(t, []string{"gone", "old", "older"}, ids(hist))
}

func TestPartitionSameDayByTime(t *testing.T) {
	a := appt("pm", "2026-03-20", model.StatusPending)
	a.Time = "15:00"
	b := appt("am", "2026-03-20", model.StatusPending)
	b.Time = "09:30"
	up, _ := Partition([]model.Appointment{a, b}, today)
	assert.Equal(t, []string{"am", "pm"}, ids(up))
}

func TestPartitionUnpaddedTime(t *testing.T) {
	ten := appt("ten", "2026-03-20", model.StatusPending)
	ten.Time = "10:00"
	nine := appt("nine", "2026-03-20", model.StatusPending)
	nine.Time = "9:30"
	up, _ := Partition([]model.Appointment{ten, nine}, today)
	assert.Equal(t, []string{"nine", "ten"}, ids(up))
}

func TestFilterHistory(t *testing.T) {
	hist := []model.Appointment{
		appt("c1", "2026-01-01", model.StatusCompleted),
		appt("x1", "2026-02-01", model.StatusCancelled),
		appt("p1", "2026-01-05", model.StatusPending),
	}
	assert.Equal(t, []string{"c1"}, ids(FilterHistory(hist, FilterCompleted)))
	assert.Equal(t, []string{"x1"}, ids(FilterHistory(hist, FilterCancelled)))
	assert.Len(t, FilterHistory(hist, FilterAll), 3)
	assert.Len(t, FilterHistory(hist, "bogus"), 3)
}

func TestTierFor(t *testing.T) {
	cases := map[int]model.Tier{
		-5:  model.TierBronze,
		0:   model.TierBronze,
		99:  model.TierBronze,
		100: model.TierSilver,
		299: model.TierSilver,
		300: model.TierGold,
		900: model.TierGold,
	}
	for pts, want := range cases {
		assert.Equal(t, want, TierFor(pts), "points=%d", pts)
	}
}

func TestNextTierTargetAndProgress(t *testing.T) {
	assert.Equal(t, 100, NextTierTarget(model.TierBronze))
	assert.Equal(t, 300, NextTierTarget(model.TierSilver))
	assert.Equal(t, 500, NextTierTarget(model.TierGold))

	assert.Equal(t, 0.0, Progress(0))
	assert.Equal(t, 0.0, Progress(-40))
	assert.InDelta(t, 0.5, Progress(50), 1e-9)
	assert.InDelta(t, 0.5, Progress(150), 1e-9)
	assert.InDelta(t, 0.8, Progress(400), 1e-9)
	assert.Equal(t, 1.0, Progress(500))
	assert.Equal(t, 1.0, Progress(2000))
}

func TestAvailableRewards(t *testing.T) {
	assert.Empty(t, AvailableRewards(49))
	got := AvailableRewards(120)
	require.Len(t, got, 2)
	assert.Equal(t, "discount-10", got[0].ID)
	assert.Equal(t, "priority-booking", got[1].ID)
	assert.Len(t, AvailableRewards(200), 4)
}

func TestRank(t *testing.T) {
	ranking := []model.User{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	r, ok := Rank(ranking, "a")
	assert.True(t, ok)
	assert.Equal(t, 2, r)

	_, ok = Rank(ranking, "zz")
	assert.False(t, ok)
}

func TestBuild(t *testing.T) {
	ranking := []model.User{
		{ID: "b", Name: "B", Points: 320, Visits: 9},
		{ID: "me", Name: "Me", Points: 150, Visits: 4},
		{ID: "c", Name: "C", Points: 40},
		{ID: "d", Name: "D", Points: 0},
	}
	s := Build(Input{
		UserID: "me",
		Points: 150,
		Appointments: []model.Appointment{
			appt("next", "2026-03-20", model.StatusPending),
			appt("past", "2026-03-13", model.StatusPending),
		},
		Ranking: ranking,
		Today:   today,
	})

	assert.Equal(t, 150, s.Points)
	assert.Equal(t, 2, s.TotalAppointments)
	assert.True(t, s.Ranked)
	assert.Equal(t, 2, s.Rank)
	assert.Equal(t, model.TierSilver, s.Tier)
	assert.Equal(t, 300, s.NextTierPoints)
	assert.Len(t, s.Rewards, 3)
	assert.Equal(t, []string{"next"}, ids(s.Upcoming))
	assert.Equal(t, []string{"past"}, ids(s.History))
	require.Len(t, s.TopClients, 3)
	assert.Equal(t, Standing{Rank: 1, Name: "B", Points: 320, Visits: 9}, s.TopClients[0])
	assert.NotNil(t, s.Testimonials)
}
