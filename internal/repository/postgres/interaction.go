package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// InteractionRepo implements the interaction log, the postgres first
// occurrence claim and the history reader used by rescoring.
type InteractionRepo struct{ db *sql.DB }

// NewInteractionRepo creates a Postgres-backed interaction log.
func NewInteractionRepo(db *sql.DB) *InteractionRepo { return &InteractionRepo{db: db} }

func (r *InteractionRepo) CountInteractions(ctx context.Context, requestID, eventType string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lead_interactions WHERE request_id = $1 AND event_type = $2`,
		requestID, eventType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}

func (r *InteractionRepo) AppendInteraction(ctx context.Context, in *domain.Interaction) error {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lead_interactions (id, request_id, event_type, occurred_at) VALUES ($1, $2, $3, $4)`,
		in.ID, in.RequestID, string(in.EventType), in.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// ClaimFirstOccurrence inserts the claim row unless the log already holds an
// entry for the pair (events recorded before claims existed) or another
// caller claimed it first. Exactly one caller sees a row inserted.
func (r *InteractionRepo) ClaimFirstOccurrence(ctx context.Context, requestID, eventType string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lead_first_occurrences (request_id, event_type, claimed_at)
		SELECT $1, $2, NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM lead_interactions WHERE request_id = $1 AND event_type = $2
		)
		ON CONFLICT (request_id, event_type) DO NOTHING
	`, requestID, eventType)
	if err != nil {
		return false, fmt.Errorf("claim first occurrence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim first occurrence: %w", err)
	}
	return n == 1, nil
}

func (r *InteractionRepo) ListInteractions(ctx context.Context, requestID string) ([]domain.Interaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, event_type, occurred_at
		FROM lead_interactions
		WHERE request_id = $1
		ORDER BY occurred_at, id
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var in domain.Interaction
		var et string
		if err := rows.Scan(&in.ID, &in.RequestID, &et, &in.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.EventType = domain.EventType(et)
		out = append(out, in)
	}
	return out, rows.Err()
}
