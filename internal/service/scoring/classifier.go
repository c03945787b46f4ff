package scoring

import (
	"strings"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// Rule is the scoring treatment of one event type.
type Rule struct {
	Points              int  `json:"points"`
	FirstOccurrenceOnly bool `json:"first_occurrence_only"`
	// Click marks link-click events, which may carry a redirect target.
	Click bool `json:"click"`
}

// Scored reports whether the rule can award points.
func (r Rule) Scored() bool { return r.Points > 0 }

var rules = map[domain.EventType]Rule{
	domain.EventOpened:       {Points: 1, FirstOccurrenceOnly: true},
	domain.EventClickedVideo: {Points: 2, Click: true},
	domain.EventClickedPDF:   {Points: 2, Click: true},
}

// Classify maps an event type to its rule. Unknown types score nothing;
// any type starting with "clicked" is still treated as a click.
func Classify(eventType string) Rule {
	if r, ok := rules[domain.EventType(eventType)]; ok {
		return r
	}
	return Rule{Click: strings.HasPrefix(eventType, "clicked")}
}
