package scoring

import "errors"

// Sentinel errors for the scoring service layer.
var (
	ErrMissingRequestID = errors.New("request_id is required")
	ErrMissingEventType = errors.New("event_type is required")
	ErrLeadNotFound     = errors.New("lead not found")
)

// Stages at which a collaborator failure can be absorbed.
const (
	StageLeadFetch  = "lead_fetch"
	StageDedupe     = "dedupe"
	StageScoreWrite = "score_write"
	StageLogAppend  = "log_append"
	StageNotify     = "notify"
)

// StageError records a collaborator failure the engine recovered from.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }
