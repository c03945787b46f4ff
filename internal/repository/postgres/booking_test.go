package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/service/leads"
)

var bookingRowColumns = []string{"request_id", "full_name", "email", "vehicle", "booking_date", "current_vehicle",
	"location", "time_frame", "action_status", "sales_notes", "lead_score", "numeric_lead_score", "booking_timestamp"}

func TestBookingRepo_ListBookings(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT request_id, .* FROM bookings WHERE location = \$1 AND booking_timestamp >= \$2 AND booking_timestamp <= \$3 AND lead_score = \$4 ORDER BY booking_timestamp DESC`).
		WithArgs("Seattle", sqlmock.AnyArg(), sqlmock.AnyArg(), "Hot").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow("req-1", "Ada Lovelace", "ada@example.com", "AOE Volt", "2024-06-10", "Tesla Model 3",
				"Seattle", "Next month", "Call Scheduled", "", "Hot", 12, ts))

	got, err := NewBookingRepo(db).ListBookings(context.Background(), leads.ListFilter{
		Location: "Seattle",
		From:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Tier:     "Hot",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada Lovelace", got[0].FullName)
	assert.Equal(t, domain.StatusCallScheduled, got[0].ActionStatus)
	assert.Equal(t, 12, got[0].NumericLeadScore)
	assert.Equal(t, ts, got[0].BookingTimestamp)
}

func TestBookingRepo_ListBookings_NoFilter(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT request_id, .* FROM bookings ORDER BY booking_timestamp DESC`).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	got, err := NewBookingRepo(db).ListBookings(context.Background(), leads.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBookingRepo_GetBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery(`FROM bookings WHERE request_id = \$1`).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow("req-1", "Grace", "g@example.com", "AOE Apex", "", "", "Austin", "", "New Lead", "", "Cold", 2, time.Now()))
	b, err := repo.GetBooking(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "Cold", b.LeadScore)

	mock.ExpectQuery(`FROM bookings WHERE request_id = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetBooking(context.Background(), "ghost")
	assert.ErrorIs(t, err, leads.ErrNotFound)
}

func TestBookingRepo_UpdateBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	status := domain.StatusLost
	notes := "went with a competitor"

	mock.ExpectExec(`UPDATE bookings SET action_status = \$1, sales_notes = \$2 WHERE request_id = \$3`).
		WithArgs("Lost", notes, "req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateBooking(context.Background(), "req-1", leads.Update{ActionStatus: &status, SalesNotes: &notes}))

	mock.ExpectExec(`UPDATE bookings SET sales_notes = \$1 WHERE request_id = \$2`).
		WithArgs(notes, "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateBooking(context.Background(), "ghost", leads.Update{SalesNotes: &notes}), leads.ErrNotFound)

	assert.ErrorIs(t, repo.UpdateBooking(context.Background(), "req-1", leads.Update{}), leads.ErrEmptyUpdate)
}

func TestBookingRepo_CountBookings(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE action_status = \$1 AND booking_timestamp >= \$2 AND booking_timestamp <= \$3`).
		WithArgs("Converted", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	now := time.Now()
	n, err := NewBookingRepo(db).CountBookings(context.Background(), leads.CountFilter{
		ActionStatus: domain.StatusConverted,
		Since:        now.AddDate(0, 0, -7),
		Until:        now,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestBookingRepo_ListLocations(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT DISTINCT location FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"location"}).AddRow("Austin").AddRow("Seattle"))

	got, err := NewBookingRepo(db).ListLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Austin", "Seattle"}, got)
}
