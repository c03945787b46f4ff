package domain

import "time"

// EventType tags an email engagement signal. The set is open: values outside
// the known constants are recorded but carry no score.
type EventType string

const (
	EventOpened       EventType = "opened"
	EventClickedVideo EventType = "clicked_video"
	EventClickedPDF   EventType = "clicked_pdf"
)

// Interaction is one append-only entry of the interaction log.
type Interaction struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	EventType  EventType `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TierChange describes a persisted score update that moved a lead across a
// tier boundary.
type TierChange struct {
	RequestID string    `json:"request_id"`
	From      Tier      `json:"from"`
	To        Tier      `json:"to"`
	Score     int       `json:"numeric_lead_score"`
	ChangedAt time.Time `json:"changed_at"`
}
