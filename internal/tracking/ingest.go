package tracking

import (
	"context"

	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

// EventRecorder is the scoring entry point shared by the sync Ingester and
// the SQS consumer. *scoring.Engine implements it.
type EventRecorder interface {
	RecordEvent(ctx context.Context, requestID, eventType string) (*scoring.Outcome, error)
}

// SyncIngester scores events inside the request.
type SyncIngester struct {
	Recorder EventRecorder
}

// Ingest implements Ingester.
func (s SyncIngester) Ingest(ctx context.Context, ev Event) {
	record(ctx, s.Recorder, ev)
}

func record(ctx context.Context, rec EventRecorder, ev Event) *scoring.Outcome {
	out, err := rec.RecordEvent(ctx, ev.RequestID, ev.EventType)
	if err != nil {
		logger.Warn("tracking event rejected", "request_id", ev.RequestID, "event_type", ev.EventType, "error", err)
		return nil
	}
	logger.Debug("tracking event recorded",
		"request_id", out.RequestID,
		"event_type", out.EventType,
		"points", out.PointsAwarded,
		"score", out.Score,
		"tier", out.Tier,
		"persisted", out.Persisted,
		"soft_errors", len(out.SoftErrors),
	)
	return out
}
