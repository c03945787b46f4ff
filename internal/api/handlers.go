// Package api serves the sales dashboard's HTTP API.
package api

import (
	"context"
	"net/http"

	"github.com/aoe-motors/lead-tracker/internal/advisor"
	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/mailing"
	"github.com/aoe-motors/lead-tracker/internal/pkg/httputil"
	"github.com/aoe-motors/lead-tracker/internal/service/leads"
)

// LeadService is the dashboard's view of the leads service.
type LeadService interface {
	List(ctx context.Context, f leads.ListFilter) ([]domain.Booking, error)
	Get(ctx context.Context, requestID string) (*domain.Booking, error)
	Update(ctx context.Context, requestID string, u leads.Update) (*domain.Booking, error)
	Ask(ctx context.Context, question, location string) (*leads.AskResult, error)
	Locations(ctx context.Context) ([]string, error)
}

// Advisor produces sales guidance for a lead.
type Advisor interface {
	Suggestions(ctx context.Context, lc advisor.LeadContext) (string, error)
	TalkingPoints(ctx context.Context, lc advisor.LeadContext) (string, error)
	Sentiment(ctx context.Context, notes string) (advisor.Sentiment, error)
}

// Mailer renders and sends customer emails.
type Mailer interface {
	Preview(b domain.Booking, kind mailing.Kind) (*mailing.Message, error)
	Send(ctx context.Context, b domain.Booking, kind mailing.Kind) (*mailing.Message, string, error)
}

// Handlers contains all HTTP handlers. Advisor and Mailer may be nil when
// the corresponding integration is disabled.
type Handlers struct {
	leads   LeadService
	advisor Advisor
	mailer  Mailer
}

// NewHandlers creates a new handlers instance
func NewHandlers(leadSvc LeadService, adv Advisor, mailer Mailer) *Handlers {
	return &Handlers{leads: leadSvc, advisor: adv, mailer: mailer}
}

// vehicleEntry is a catalog item as returned by GET /api/vehicles.
type vehicleEntry struct {
	domain.Vehicle
}

// ListVehicles returns the AOE vehicle catalog.
//
//	GET /api/vehicles
func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	out := make([]vehicleEntry, 0, len(domain.Vehicles))
	for _, name := range []string{"AOE Apex", "AOE Volt", "AOE Thunder"} {
		if v, ok := domain.Vehicles[name]; ok {
			out = append(out, vehicleEntry{v})
		}
	}
	httputil.OK(w, map[string]interface{}{"vehicles": out})
}
