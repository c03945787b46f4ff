package mailing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/tracking"
)

// ErrNoTemplate is returned when no email exists for a booking's status.
var ErrNoTemplate = errors.New("no email for this action status")

// Mailer renders customer emails with tracked links and hands them to a
// Sender.
type Mailer struct {
	templates   *TemplateService
	links       *tracking.LinkBuilder
	sender      Sender
	brochureURL string
	videoURL    string
}

// NewMailer creates a Mailer. brochureURL and videoURL are Liquid templates
// evaluated with the booking's vehicle. sender may be nil, in which case
// Send returns ErrSendingDisabled.
func NewMailer(templates *TemplateService, links *tracking.LinkBuilder, sender Sender, brochureURL, videoURL string) (*Mailer, error) {
	if err := templates.Parse(brochureURL); err != nil {
		return nil, fmt.Errorf("brochure url template: %w", err)
	}
	if err := templates.Parse(videoURL); err != nil {
		return nil, fmt.Errorf("video url template: %w", err)
	}
	return &Mailer{
		templates:   templates,
		links:       links,
		sender:      sender,
		brochureURL: brochureURL,
		videoURL:    videoURL,
	}, nil
}

// Preview renders the email of the given kind without sending it.
func (m *Mailer) Preview(b domain.Booking, kind Kind) (*Message, error) {
	tpl, ok := emailTemplates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTemplate, kind)
	}
	bindings, err := m.bindings(b)
	if err != nil {
		return nil, err
	}

	msg := &Message{RequestID: b.RequestID, Kind: kind, To: b.Email, ToName: b.FullName}
	prefix := string(kind) + "."
	if msg.Subject, err = m.templates.Render(prefix+"subject", tpl.subject, bindings); err != nil {
		return nil, err
	}
	if msg.Text, err = m.templates.Render(prefix+"text", tpl.text, bindings); err != nil {
		return nil, err
	}
	if msg.HTML, err = m.templates.Render(prefix+"html", tpl.html, bindings); err != nil {
		return nil, err
	}
	return msg, nil
}

// Send renders and delivers the email of the given kind.
func (m *Mailer) Send(ctx context.Context, b domain.Booking, kind Kind) (*Message, string, error) {
	if m.sender == nil {
		return nil, "", ErrSendingDisabled
	}
	msg, err := m.Preview(b, kind)
	if err != nil {
		return nil, "", err
	}
	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		return msg, "", err
	}
	return msg, id, nil
}

// SendForBooking sends the email matching the booking's action status.
func (m *Mailer) SendForBooking(ctx context.Context, b domain.Booking) (*Message, string, error) {
	kind, ok := KindForStatus(b.ActionStatus)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrNoTemplate, b.ActionStatus)
	}
	return m.Send(ctx, b, kind)
}

func (m *Mailer) bindings(b domain.Booking) (map[string]interface{}, error) {
	base := map[string]interface{}{"vehicle": b.Vehicle}
	brochure, err := m.templates.Render("url.brochure", m.brochureURL, base)
	if err != nil {
		return nil, err
	}
	video, err := m.templates.Render("url.video", m.videoURL, base)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{
		"name":          b.FullName,
		"vehicle":       b.Vehicle,
		"features":      domain.Vehicles[b.Vehicle].Features,
		"pixel_url":     m.links.Pixel(b.RequestID),
		"brochure_link": m.links.Click(b.RequestID, domain.EventClickedPDF, brochure),
		"video_link":    m.links.Click(b.RequestID, domain.EventClickedVideo, video),
	}
	if brand, _, _ := strings.Cut(strings.TrimSpace(b.CurrentVehicle), " "); brand != "" {
		if c, ok := domain.Competitor(brand, b.Vehicle); ok {
			out["competitor"] = c.ModelName
			out["competitor_features"] = c.Features
		}
	}
	return out, nil
}
