package scoring

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/pkg/metrics"
)

const defaultStoreTimeout = 2 * time.Second

// Outcome describes what RecordEvent did. Score and Tier are the values
// computed for the lead; Persisted reports whether they were written.
type Outcome struct {
	RequestID     string        `json:"request_id"`
	EventType     string        `json:"event_type"`
	Rule          Rule          `json:"rule"`
	LeadFound     bool          `json:"lead_found"`
	Duplicate     bool          `json:"duplicate"`
	PointsAwarded int           `json:"points_awarded"`
	PreviousScore int           `json:"previous_score"`
	Score         int           `json:"numeric_lead_score"`
	Tier          domain.Tier   `json:"lead_score"`
	Persisted     bool          `json:"persisted"`
	Logged        bool          `json:"logged"`
	SoftErrors    []*StageError `json:"-"`
}

// Err joins the soft errors, or returns nil when there were none.
func (o *Outcome) Err() error {
	if len(o.SoftErrors) == 0 {
		return nil
	}
	errs := make([]error, len(o.SoftErrors))
	for i, se := range o.SoftErrors {
		errs[i] = se
	}
	return errors.Join(errs...)
}

// Engine applies interaction events to lead scores. It is safe for
// concurrent use; all shared state lives in the injected collaborators.
type Engine struct {
	leads    LeadStore
	log      InteractionLog
	dedupe   Deduper
	atomic   bool
	notifier Notifier
	metrics  *metrics.Recorder
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDeduper replaces the default count-based Deduper.
func WithDeduper(d Deduper) Option {
	return func(e *Engine) { e.dedupe = d }
}

// WithAtomicUpdates enables the single-statement increment when the
// LeadStore implements ScoreIncrementer.
func WithAtomicUpdates(on bool) Option {
	return func(e *Engine) { e.atomic = on }
}

// WithNotifier publishes tier changes after persisted updates.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithMetrics records event counters.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithStoreTimeout bounds every collaborator call.
func WithStoreTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClock overrides time.Now for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over the given store and log.
func New(leads LeadStore, log InteractionLog, opts ...Option) *Engine {
	e := &Engine{
		leads:   leads,
		log:     log,
		dedupe:  CountDeduper{Log: log},
		timeout: defaultStoreTimeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordEvent scores one event for a lead and appends it to the log.
// It returns an error only for missing arguments, in which case no
// collaborator has been called.
func (e *Engine) RecordEvent(ctx context.Context, requestID, eventType string) (*Outcome, error) {
	requestID = strings.TrimSpace(requestID)
	eventType = strings.TrimSpace(eventType)
	if requestID == "" {
		return nil, ErrMissingRequestID
	}
	if eventType == "" {
		return nil, ErrMissingEventType
	}

	out := &Outcome{RequestID: requestID, EventType: eventType}

	lead, err := e.fetchLead(ctx, requestID)
	switch {
	case errors.Is(err, ErrLeadNotFound):
		logger.Warn("interaction for unknown lead, score not persisted", "request_id", requestID, "event_type", eventType)
	case err != nil:
		e.soft(out, StageLeadFetch, err)
	default:
		out.LeadFound = true
		out.PreviousScore = lead.NumericScore
	}

	out.Rule = Classify(eventType)
	if !out.Rule.Scored() {
		logger.Info("event type carries no score", "request_id", requestID, "event_type", eventType)
	}

	points := out.Rule.Points
	if out.Rule.FirstOccurrenceOnly {
		dup, err := e.isDuplicate(ctx, requestID, eventType)
		if err != nil {
			// Fail open: an unreachable dedupe backend must not cost the lead points.
			e.soft(out, StageDedupe, err)
		} else if dup {
			out.Duplicate = true
			points = 0
		}
	}
	out.PointsAwarded = points
	out.Score = domain.ClampScore(out.PreviousScore + points)
	out.Tier = domain.TierForScore(out.Score)

	// A 0-point event leaves a consistent record alone; a stale label such
	// as "New" is rewritten from the score.
	if out.LeadFound && (points > 0 || !lead.Consistent()) {
		e.persist(ctx, out, lead)
	}

	e.appendInteraction(ctx, out)

	if out.Persisted && lead.Tier != out.Tier {
		e.metrics.TierTransition(string(lead.Tier), string(out.Tier))
		e.notify(ctx, out, lead.Tier)
	}

	e.record(out)
	return out, nil
}

func (e *Engine) fetchLead(ctx context.Context, requestID string) (*domain.LeadScore, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.leads.GetLead(ctx, requestID)
}

func (e *Engine) isDuplicate(ctx context.Context, requestID, eventType string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.dedupe.IsDuplicate(ctx, requestID, eventType)
}

func (e *Engine) persist(ctx context.Context, out *Outcome, lead *domain.LeadScore) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if inc, ok := e.leads.(ScoreIncrementer); ok && e.atomic {
		updated, err := inc.IncrementScore(ctx, out.RequestID, out.PointsAwarded)
		if err != nil {
			e.soft(out, StageScoreWrite, err)
			return
		}
		// The stored row wins over the local computation under concurrency.
		out.Score = updated.NumericScore
		out.Tier = updated.Tier
		out.Persisted = true
		return
	}

	if err := e.leads.UpdateLead(ctx, out.RequestID, out.Score, out.Tier); err != nil {
		e.soft(out, StageScoreWrite, err)
		return
	}
	out.Persisted = true
}

// appendInteraction runs on a context detached from the caller so that a
// disconnecting client cannot drop the log entry.
func (e *Engine) appendInteraction(ctx context.Context, out *Outcome) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	in := &domain.Interaction{
		ID:         e.newID(),
		RequestID:  out.RequestID,
		EventType:  domain.EventType(out.EventType),
		OccurredAt: e.now().UTC(),
	}
	if err := e.log.AppendInteraction(ctx, in); err != nil {
		e.soft(out, StageLogAppend, err)
		return
	}
	out.Logged = true
}

func (e *Engine) notify(ctx context.Context, out *Outcome, from domain.Tier) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	change := domain.TierChange{
		RequestID: out.RequestID,
		From:      from,
		To:        out.Tier,
		Score:     out.Score,
		ChangedAt: e.now().UTC(),
	}
	if err := e.notifier.NotifyTierChange(ctx, change); err != nil {
		e.soft(out, StageNotify, err)
	}
}

func (e *Engine) soft(out *Outcome, stage string, err error) {
	out.SoftErrors = append(out.SoftErrors, &StageError{Stage: stage, Err: err})
	e.metrics.SoftError(stage)
	logger.Warn("scoring stage failed", "stage", stage, "request_id", out.RequestID, "event_type", out.EventType, "error", err)
}

func (e *Engine) record(out *Outcome) {
	result := metrics.ResultIgnored
	switch {
	case out.Duplicate:
		result = metrics.ResultDuplicate
	case out.PointsAwarded > 0:
		result = metrics.ResultScored
	}
	e.metrics.Event(out.EventType, result, out.Rule.Scored())
	e.metrics.Points(out.PointsAwarded)
}
