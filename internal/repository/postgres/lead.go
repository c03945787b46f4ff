package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

// cappedScore is the incremented score clamped to the scoring bounds. It is
// evaluated against the row version the UPDATE locked.
const cappedScore = `LEAST(GREATEST(COALESCE(numeric_lead_score, 0), 0) + $2, $3)`

var incrementScoreSQL = `
	UPDATE bookings
	SET numeric_lead_score = ` + cappedScore + `,
	    lead_score = CASE
	        WHEN ` + cappedScore + ` >= $4 THEN 'Hot'
	        WHEN ` + cappedScore + ` >= $5 THEN 'Warm'
	        ELSE 'Cold'
	    END
	WHERE request_id = $1
	RETURNING request_id, numeric_lead_score, lead_score`

// LeadRepo implements scoring.LeadStore and scoring.ScoreIncrementer over
// the bookings table.
type LeadRepo struct{ db *sql.DB }

// NewLeadRepo creates a Postgres-backed lead score repository.
func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

func (r *LeadRepo) GetLead(ctx context.Context, requestID string) (*domain.LeadScore, error) {
	var l domain.LeadScore
	var tier string
	err := r.db.QueryRowContext(ctx,
		`SELECT request_id, COALESCE(numeric_lead_score, 0), COALESCE(lead_score, '') FROM bookings WHERE request_id = $1`,
		requestID,
	).Scan(&l.RequestID, &l.NumericScore, &tier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scoring.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	l.Tier = domain.Tier(tier)
	return &l, nil
}

func (r *LeadRepo) UpdateLead(ctx context.Context, requestID string, score int, tier domain.Tier) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET numeric_lead_score = $2, lead_score = $3 WHERE request_id = $1`,
		requestID, score, string(tier),
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return scoring.ErrLeadNotFound
	}
	return nil
}

// IncrementScore adds points, caps the score and derives the tier in a
// single statement, so concurrent increments never overwrite each other.
func (r *LeadRepo) IncrementScore(ctx context.Context, requestID string, points int) (*domain.LeadScore, error) {
	var l domain.LeadScore
	var tier string
	err := r.db.QueryRowContext(ctx, incrementScoreSQL,
		requestID, points, domain.MaxLeadScore, domain.HotThreshold, domain.WarmThreshold,
	).Scan(&l.RequestID, &l.NumericScore, &tier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, scoring.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("increment score: %w", err)
	}
	l.Tier = domain.Tier(tier)
	return &l, nil
}
