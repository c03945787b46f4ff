package scoring

import (
	"context"
	"fmt"
)

// Deduper decides whether a first-occurrence event has been seen before.
type Deduper interface {
	IsDuplicate(ctx context.Context, requestID, eventType string) (bool, error)
}

// CountDeduper treats any existing log entry as a prior occurrence.
// Concurrent first events can all observe a count of zero.
type CountDeduper struct {
	Log InteractionLog
}

// IsDuplicate implements Deduper.
func (d CountDeduper) IsDuplicate(ctx context.Context, requestID, eventType string) (bool, error) {
	n, err := d.Log.CountInteractions(ctx, requestID, eventType)
	if err != nil {
		return false, fmt.Errorf("count interactions: %w", err)
	}
	return n > 0, nil
}

// ClaimDeduper uses an atomic claim: losing the claim means a duplicate.
type ClaimDeduper struct {
	Claimer FirstOccurrenceClaimer
}

// IsDuplicate implements Deduper.
func (d ClaimDeduper) IsDuplicate(ctx context.Context, requestID, eventType string) (bool, error) {
	first, err := d.Claimer.ClaimFirstOccurrence(ctx, requestID, eventType)
	if err != nil {
		return false, fmt.Errorf("claim first occurrence: %w", err)
	}
	return !first, nil
}
