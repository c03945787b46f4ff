package domain

import "time"

// ActionStatus is the sales workflow state of a booking.
type ActionStatus string

const (
	StatusNewLead       ActionStatus = "New Lead"
	StatusCallScheduled ActionStatus = "Call Scheduled"
	StatusFollowUp      ActionStatus = "Follow Up Required"
	StatusLost          ActionStatus = "Lost"
	StatusConverted     ActionStatus = "Converted"
)

// Booking is a test-drive request as stored by the upstream booking process.
// LeadScore is kept as the raw stored label because rows that were never
// scored may carry "New".
type Booking struct {
	RequestID        string       `json:"request_id"`
	FullName         string       `json:"full_name"`
	Email            string       `json:"email"`
	Vehicle          string       `json:"vehicle"`
	BookingDate      string       `json:"booking_date,omitempty"`
	CurrentVehicle   string       `json:"current_vehicle,omitempty"`
	Location         string       `json:"location"`
	TimeFrame        string       `json:"time_frame,omitempty"`
	ActionStatus     ActionStatus `json:"action_status"`
	SalesNotes       string       `json:"sales_notes,omitempty"`
	LeadScore        string       `json:"lead_score"`
	NumericLeadScore int          `json:"numeric_lead_score"`
	BookingTimestamp time.Time    `json:"booking_timestamp"`
}

var allStatuses = []ActionStatus{StatusNewLead, StatusCallScheduled, StatusFollowUp, StatusLost, StatusConverted}

// AllowedStatuses returns the action statuses a salesperson may pick for a
// lead with the given stored tier label. Cold leads skip the call workflow.
func AllowedStatuses(tierLabel string) []ActionStatus {
	if Tier(tierLabel) == TierCold {
		return []ActionStatus{StatusNewLead, StatusLost, StatusConverted}
	}
	out := make([]ActionStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// StatusAllowed reports whether status is selectable for the tier label.
func StatusAllowed(tierLabel string, status ActionStatus) bool {
	for _, s := range AllowedStatuses(tierLabel) {
		if s == status {
			return true
		}
	}
	return false
}
