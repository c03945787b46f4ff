package scoring

import (
	"context"
	"fmt"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/pkg/distlock"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

// LockFactory returns a fresh lock for key.
type LockFactory func(key string) distlock.DistLock

// RescoreResult reports a replay of one lead's interaction log.
type RescoreResult struct {
	RequestID     string      `json:"request_id"`
	Events        int         `json:"events"`
	PreviousScore int         `json:"previous_score"`
	PreviousTier  domain.Tier `json:"previous_tier"`
	Score         int         `json:"numeric_lead_score"`
	Tier          domain.Tier `json:"lead_score"`
	Changed       bool        `json:"changed"`
	DryRun        bool        `json:"dry_run"`
}

// Rescorer recomputes cached scores from the interaction log.
type Rescorer struct {
	leads   LeadStore
	history HistoryReader
	locks   LockFactory
}

// NewRescorer creates a Rescorer. A nil LockFactory disables locking.
func NewRescorer(leads LeadStore, history HistoryReader, locks LockFactory) *Rescorer {
	return &Rescorer{leads: leads, history: history, locks: locks}
}

// Replay computes the score a log yields under the classifier rules.
func Replay(events []domain.Interaction) int {
	score := 0
	seen := make(map[domain.EventType]bool)
	for _, ev := range events {
		rule := Classify(string(ev.EventType))
		if rule.FirstOccurrenceOnly {
			if seen[ev.EventType] {
				continue
			}
			seen[ev.EventType] = true
		}
		score = domain.ClampScore(score + rule.Points)
	}
	return score
}

// Rescore replays requestID's log and, unless dryRun, writes the result
// back when it differs from the stored score.
func (r *Rescorer) Rescore(ctx context.Context, requestID string, dryRun bool) (*RescoreResult, error) {
	if requestID == "" {
		return nil, ErrMissingRequestID
	}
	if r.locks == nil {
		return r.rescore(ctx, requestID, dryRun)
	}

	var res *RescoreResult
	err := distlock.Run(ctx, r.locks(distlock.LeadKey(requestID)), func(ctx context.Context) error {
		var err error
		res, err = r.rescore(ctx, requestID, dryRun)
		return err
	})
	return res, err
}

func (r *Rescorer) rescore(ctx context.Context, requestID string, dryRun bool) (*RescoreResult, error) {
	lead, err := r.leads.GetLead(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get lead %s: %w", requestID, err)
	}
	events, err := r.history.ListInteractions(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list interactions %s: %w", requestID, err)
	}

	score := Replay(events)
	res := &RescoreResult{
		RequestID:     requestID,
		Events:        len(events),
		PreviousScore: lead.NumericScore,
		PreviousTier:  lead.Tier,
		Score:         score,
		Tier:          domain.TierForScore(score),
		DryRun:        dryRun,
	}
	res.Changed = res.Score != res.PreviousScore || res.Tier != res.PreviousTier
	if !res.Changed || dryRun {
		return res, nil
	}

	if err := r.leads.UpdateLead(ctx, requestID, res.Score, res.Tier); err != nil {
		return nil, fmt.Errorf("update lead %s: %w", requestID, err)
	}
	logger.Info("lead rescored", "request_id", requestID, "from", res.PreviousScore, "to", res.Score, "tier", res.Tier)
	return res, nil
}
