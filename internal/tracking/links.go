package tracking

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// LinkBuilder produces tracked URLs for outgoing email.
type LinkBuilder struct {
	base *url.URL
}

// NewLinkBuilder creates a LinkBuilder for the tracking host at baseURL.
func NewLinkBuilder(baseURL string) (*LinkBuilder, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tracking base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("tracking base url %q must be absolute", baseURL)
	}
	return &LinkBuilder{base: u}, nil
}

// Pixel returns the open-tracking URL for a lead.
func (b *LinkBuilder) Pixel(requestID string) string {
	return b.build(requestID, domain.EventOpened, "")
}

// Click returns a tracked link that records eventType and redirects to
// target.
func (b *LinkBuilder) Click(requestID string, eventType domain.EventType, target string) string {
	return b.build(requestID, eventType, target)
}

func (b *LinkBuilder) build(requestID string, eventType domain.EventType, target string) string {
	u := *b.base
	u.Path = strings.TrimRight(u.Path, "/") + "/track"
	q := url.Values{}
	q.Set("request_id", requestID)
	q.Set("event_type", string(eventType))
	if target != "" {
		q.Set("redirect_to", target)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
