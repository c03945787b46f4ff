package leads

import (
	"context"
	"time"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// ListFilter narrows the booking listing. Zero values do not filter.
// From and To are dates; To includes the whole day.
type ListFilter struct {
	Location string
	From     time.Time
	To       time.Time
	Tier     string
}

// CountFilter narrows a booking count. Since and Until are inclusive
// instants.
type CountFilter struct {
	Location     string
	Tier         string
	ActionStatus domain.ActionStatus
	Since        time.Time
	Until        time.Time
}

// Update holds the editable booking fields. Nil fields are left unchanged.
type Update struct {
	ActionStatus *domain.ActionStatus
	SalesNotes   *string
}

// Repository defines the data access contract for dashboard bookings.
type Repository interface {
	ListBookings(ctx context.Context, f ListFilter) ([]domain.Booking, error)
	GetBooking(ctx context.Context, requestID string) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, requestID string, u Update) error
	CountBookings(ctx context.Context, f CountFilter) (int, error)
	ListLocations(ctx context.Context) ([]string, error)
}
