package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

// Service implements the dashboard's lead operations. It is safe for
// concurrent use if the repository is.
type Service struct {
	repo Repository
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to resolve relative ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a leads service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AskResult is the answer to an analytics question.
type AskResult struct {
	Question string `json:"question"`
	Metric   Metric `json:"metric"`
	Count    int    `json:"count"`
	Answer   string `json:"answer"`
}

// List returns bookings matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Booking, error) {
	return s.repo.ListBookings(ctx, f)
}

// Get returns a single booking.
func (s *Service) Get(ctx context.Context, requestID string) (*domain.Booking, error) {
	return s.repo.GetBooking(ctx, requestID)
}

// Locations returns the distinct booking locations for filtering.
func (s *Service) Locations(ctx context.Context) ([]string, error) {
	return s.repo.ListLocations(ctx)
}

// Update changes the workflow status and/or sales notes of a booking and
// returns the updated row. The status must be selectable for the lead's
// current tier.
func (s *Service) Update(ctx context.Context, requestID string, u Update) (*domain.Booking, error) {
	if u.ActionStatus == nil && u.SalesNotes == nil {
		return nil, ErrEmptyUpdate
	}
	if u.ActionStatus != nil {
		b, err := s.repo.GetBooking(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if !domain.StatusAllowed(b.LeadScore, *u.ActionStatus) {
			return nil, fmt.Errorf("%w: %q for %q", ErrStatusNotAllowed, *u.ActionStatus, b.LeadScore)
		}
	}

	if err := s.repo.UpdateBooking(ctx, requestID, u); err != nil {
		return nil, err
	}
	logger.Info("booking updated", "request_id", requestID, "status_changed", u.ActionStatus != nil, "notes_changed", u.SalesNotes != nil)
	return s.repo.GetBooking(ctx, requestID)
}

// Ask answers a keyword analytics question, optionally scoped to a location.
func (s *Service) Ask(ctx context.Context, question, location string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	q := ParseQuery(question, s.now())
	n, err := s.repo.CountBookings(ctx, q.Filter(CountFilter{Location: location}))
	if err != nil {
		return nil, err
	}
	return &AskResult{
		Question: question,
		Metric:   q.Metric,
		Count:    n,
		Answer:   Answer(q, n),
	}, nil
}
