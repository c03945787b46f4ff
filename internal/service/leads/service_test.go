package leads_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/service/leads"
)

// memRepo is an in-memory booking repository for unit testing.
type memRepo struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	counts   []leads.CountFilter
}

func newMemRepo(bs ...domain.Booking) *memRepo {
	m := &memRepo{bookings: make(map[string]*domain.Booking)}
	for i := range bs {
		b := bs[i]
		m.bookings[b.RequestID] = &b
	}
	return m
}

func (m *memRepo) ListBookings(_ context.Context, f leads.ListFilter) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if f.Location != "" && b.Location != f.Location {
			continue
		}
		if f.Tier != "" && b.LeadScore != f.Tier {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingTimestamp.After(out[j].BookingTimestamp) })
	return out, nil
}

func (m *memRepo) GetBooking(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, leads.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) UpdateBooking(_ context.Context, id string, u leads.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return leads.ErrNotFound
	}
	if u.ActionStatus != nil {
		b.ActionStatus = *u.ActionStatus
	}
	if u.SalesNotes != nil {
		b.SalesNotes = *u.SalesNotes
	}
	return nil
}

func (m *memRepo) CountBookings(_ context.Context, f leads.CountFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = append(m.counts, f)
	n := 0
	for _, b := range m.bookings {
		switch {
		case f.Location != "" && b.Location != f.Location:
		case f.Tier != "" && b.LeadScore != f.Tier:
		case f.ActionStatus != "" && b.ActionStatus != f.ActionStatus:
		case !f.Since.IsZero() && b.BookingTimestamp.Before(f.Since):
		case !f.Until.IsZero() && b.BookingTimestamp.After(f.Until):
		default:
			n++
		}
	}
	return n, nil
}

func (m *memRepo) ListLocations(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, b := range m.bookings {
		if b.Location != "" && !seen[b.Location] {
			seen[b.Location] = true
			out = append(out, b.Location)
		}
	}
	sort.Strings(out)
	return out, nil
}

var now = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func fixtures() []domain.Booking {
	return []domain.Booking{
		{RequestID: "a", Location: "Austin", LeadScore: "Hot", ActionStatus: domain.StatusNewLead, BookingTimestamp: now.Add(-2 * time.Hour)},
		{RequestID: "b", Location: "Austin", LeadScore: "Cold", ActionStatus: domain.StatusLost, BookingTimestamp: now.Add(-26 * time.Hour)},
		{RequestID: "c", Location: "Denver", LeadScore: "Warm", ActionStatus: domain.StatusFollowUp, BookingTimestamp: now.AddDate(0, 0, -10)},
		{RequestID: "d", Location: "Denver", LeadScore: "New", ActionStatus: domain.StatusNewLead, BookingTimestamp: now.AddDate(0, -3, 0)},
	}
}

func newService(t *testing.T) (*leads.Service, *memRepo) {
	t.Helper()
	repo := newMemRepo(fixtures()...)
	return leads.NewService(repo, leads.WithClock(func() time.Time { return now })), repo
}

func statusPtr(s domain.ActionStatus) *domain.ActionStatus { return &s }
func strPtr(s string) *string                              { return &s }

func TestList_NewestFirst(t *testing.T) {
	svc, _ := newService(t)
	out, err := svc.List(context.Background(), leads.ListFilter{Location: "Austin"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].RequestID)
	assert.Equal(t, "b", out[1].RequestID)
}

func TestLocations(t *testing.T) {
	svc, _ := newService(t)
	locs, err := svc.Locations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Austin", "Denver"}, locs)
}

func TestUpdate_StatusAndNotes(t *testing.T) {
	svc, _ := newService(t)
	b, err := svc.Update(context.Background(), "a", leads.Update{
		ActionStatus: statusPtr(domain.StatusCallScheduled),
		SalesNotes:   strPtr("call Tuesday"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCallScheduled, b.ActionStatus)
	assert.Equal(t, "call Tuesday", b.SalesNotes)
}

func TestUpdate_ColdLeadCannotScheduleCall(t *testing.T) {
	svc, repo := newService(t)
	_, err := svc.Update(context.Background(), "b", leads.Update{ActionStatus: statusPtr(domain.StatusCallScheduled)})
	assert.ErrorIs(t, err, leads.ErrStatusNotAllowed)

	stored, _ := repo.GetBooking(context.Background(), "b")
	assert.Equal(t, domain.StatusLost, stored.ActionStatus)
}

func TestUpdate_ColdLeadCanConvert(t *testing.T) {
	svc, _ := newService(t)
	b, err := svc.Update(context.Background(), "b", leads.Update{ActionStatus: statusPtr(domain.StatusConverted)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, b.ActionStatus)
}

func TestUpdate_NewLabelAllowsAll(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Update(context.Background(), "d", leads.Update{ActionStatus: statusPtr(domain.StatusFollowUp)})
	assert.NoError(t, err)
}

func TestUpdate_NotesOnlySkipsStatusCheck(t *testing.T) {
	svc, _ := newService(t)
	b, err := svc.Update(context.Background(), "b", leads.Update{SalesNotes: strPtr("moved away")})
	require.NoError(t, err)
	assert.Equal(t, "moved away", b.SalesNotes)
}

func TestUpdate_Empty(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Update(context.Background(), "a", leads.Update{})
	assert.ErrorIs(t, err, leads.ErrEmptyUpdate)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Update(context.Background(), "zzz", leads.Update{ActionStatus: statusPtr(domain.StatusLost)})
	assert.ErrorIs(t, err, leads.ErrNotFound)
}

func TestAsk(t *testing.T) {
	tests := []struct {
		question string
		location string
		want     string
	}{
		{"how many leads?", "", "You have 4 leads of all time."},
		{"hot leads today", "", "You have 1 hot leads today."},
		{"how many lost yesterday", "", "You have 1 lost leads yesterday."},
		{"follow up in the last 2 weeks", "", "You have 1 leads requiring follow-up in the last 2 weeks."},
		{"leads in the last 3 days", "Austin", "You have 2 leads in the last 3 days."},
		{"leads in the last 1 months", "Denver", "You have 1 leads in the last 1 months."},
		{"converted", "", "You have 0 converted leads of all time."},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			svc, _ := newService(t)
			res, err := svc.Ask(context.Background(), tt.question, tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Answer)
		})
	}
}

func TestAsk_Empty(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Ask(context.Background(), "   ", "")
	assert.ErrorIs(t, err, leads.ErrEmptyQuestion)
}

func TestAsk_PassesFilter(t *testing.T) {
	svc, repo := newService(t)
	_, err := svc.Ask(context.Background(), "cold leads today", "Austin")
	require.NoError(t, err)
	require.Len(t, repo.counts, 1)
	f := repo.counts[0]
	assert.Equal(t, "Austin", f.Location)
	assert.Equal(t, "Cold", f.Tier)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), f.Since)
	assert.Equal(t, now, f.Until)
}
