package scoring

import (
	"context"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// LeadStore reads and writes the score fields of existing leads. It never
// creates leads. GetLead returns ErrLeadNotFound for unknown request IDs.
type LeadStore interface {
	GetLead(ctx context.Context, requestID string) (*domain.LeadScore, error)
	UpdateLead(ctx context.Context, requestID string, score int, tier domain.Tier) error
}

// ScoreIncrementer is implemented by stores that can add points, cap the
// result and derive the tier in one statement. It returns the stored record
// after the update, or ErrLeadNotFound.
type ScoreIncrementer interface {
	IncrementScore(ctx context.Context, requestID string, points int) (*domain.LeadScore, error)
}

// InteractionLog is the append-only record of every received event.
type InteractionLog interface {
	CountInteractions(ctx context.Context, requestID, eventType string) (int, error)
	AppendInteraction(ctx context.Context, in *domain.Interaction) error
}

// HistoryReader lists a lead's interactions oldest first.
type HistoryReader interface {
	ListInteractions(ctx context.Context, requestID string) ([]domain.Interaction, error)
}

// FirstOccurrenceClaimer atomically records that (requestID, eventType) has
// occurred. It reports true only to the single caller that made the claim.
type FirstOccurrenceClaimer interface {
	ClaimFirstOccurrence(ctx context.Context, requestID, eventType string) (bool, error)
}

// Notifier is told about persisted updates that moved a lead across tiers.
type Notifier interface {
	NotifyTierChange(ctx context.Context, change domain.TierChange) error
}
