package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/service/leads"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var bookingColumns = []string{
	"request_id",
	"COALESCE(full_name, '')",
	"COALESCE(email, '')",
	"COALESCE(vehicle, '')",
	"COALESCE(booking_date, '')",
	"COALESCE(current_vehicle, '')",
	"COALESCE(location, '')",
	"COALESCE(time_frame, '')",
	"COALESCE(action_status, '')",
	"COALESCE(sales_notes, '')",
	"COALESCE(lead_score, '')",
	"COALESCE(numeric_lead_score, 0)",
	"booking_timestamp",
}

// BookingRepo implements leads.Repository against PostgreSQL.
type BookingRepo struct{ db *sql.DB }

// NewBookingRepo creates a Postgres-backed booking repository.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) ListBookings(ctx context.Context, f leads.ListFilter) ([]domain.Booking, error) {
	q := psql.Select(bookingColumns...).From("bookings").OrderBy("booking_timestamp DESC")
	if f.Location != "" {
		q = q.Where(sq.Eq{"location": f.Location})
	}
	if !f.From.IsZero() {
		q = q.Where(sq.GtOrEq{"booking_timestamp": f.From})
	}
	if !f.To.IsZero() {
		q = q.Where(sq.LtOrEq{"booking_timestamp": f.To.AddDate(0, 0, 1)})
	}
	if f.Tier != "" {
		q = q.Where(sq.Eq{"lead_score": f.Tier})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BookingRepo) GetBooking(ctx context.Context, requestID string) (*domain.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).From("bookings").Where(sq.Eq{"request_id": requestID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking: %w", err)
	}
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leads.ErrNotFound
	}
	return b, err
}

func (r *BookingRepo) UpdateBooking(ctx context.Context, requestID string, u leads.Update) error {
	q := psql.Update("bookings").Where(sq.Eq{"request_id": requestID})
	if u.ActionStatus != nil {
		q = q.Set("action_status", string(*u.ActionStatus))
	}
	if u.SalesNotes != nil {
		q = q.Set("sales_notes", *u.SalesNotes)
	}
	if u.ActionStatus == nil && u.SalesNotes == nil {
		return leads.ErrEmptyUpdate
	}

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update booking: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return leads.ErrNotFound
	}
	return nil
}

func (r *BookingRepo) CountBookings(ctx context.Context, f leads.CountFilter) (int, error) {
	q := psql.Select("COUNT(*)").From("bookings")
	if f.Location != "" {
		q = q.Where(sq.Eq{"location": f.Location})
	}
	if f.Tier != "" {
		q = q.Where(sq.Eq{"lead_score": f.Tier})
	}
	if f.ActionStatus != "" {
		q = q.Where(sq.Eq{"action_status": string(f.ActionStatus)})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"booking_timestamp": f.Since})
	}
	if !f.Until.IsZero() {
		q = q.Where(sq.LtOrEq{"booking_timestamp": f.Until})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (r *BookingRepo) ListLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT location FROM bookings WHERE location <> '' ORDER BY location`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var b domain.Booking
	var status string
	err := s.Scan(&b.RequestID, &b.FullName, &b.Email, &b.Vehicle, &b.BookingDate,
		&b.CurrentVehicle, &b.Location, &b.TimeFrame, &status, &b.SalesNotes,
		&b.LeadScore, &b.NumericLeadScore, &b.BookingTimestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	b.ActionStatus = domain.ActionStatus(status)
	return &b, nil
}
