package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/pkg/httputil"
	"github.com/aoe-motors/lead-tracker/internal/service/leads"
)

const dateLayout = "2006-01-02"

// leadView is a booking plus the workflow statuses selectable for it.
type leadView struct {
	domain.Booking
	AllowedStatuses []domain.ActionStatus `json:"allowed_statuses"`
}

func viewOf(b domain.Booking) leadView {
	return leadView{Booking: b, AllowedStatuses: domain.AllowedStatuses(b.LeadScore)}
}

// updateLeadRequest is the PATCH /api/leads/{requestID} body.
type updateLeadRequest struct {
	ActionStatus *string `json:"action_status" validate:"omitempty,oneof='New Lead' 'Call Scheduled' 'Follow Up Required' 'Lost' 'Converted'"`
	SalesNotes   *string `json:"sales_notes" validate:"omitempty,max=4000"`
}

// ListLeads returns bookings newest first.
//
//	GET /api/leads?location=&start=YYYY-MM-DD&end=YYYY-MM-DD&tier=
func (h *Handlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := leads.ListFilter{
		Location: strings.TrimSpace(q.Get("location")),
		Tier:     strings.TrimSpace(q.Get("tier")),
	}
	if f.Tier != "" {
		if _, ok := domain.ParseTier(f.Tier); !ok && f.Tier != "New" {
			httputil.BadRequest(w, "tier must be Hot, Warm, Cold or New")
			return
		}
	}
	var err error
	if f.From, err = parseDate(q.Get("start")); err != nil {
		httputil.BadRequest(w, "start must be YYYY-MM-DD")
		return
	}
	if f.To, err = parseDate(q.Get("end")); err != nil {
		httputil.BadRequest(w, "end must be YYYY-MM-DD")
		return
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		httputil.BadRequest(w, "end must not be before start")
		return
	}

	bookings, err := h.leads.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	out := make([]leadView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, viewOf(b))
	}
	httputil.OK(w, map[string]interface{}{"leads": out, "count": len(out)})
}

// GetLead returns a single booking.
//
//	GET /api/leads/{requestID}
func (h *Handlers) GetLead(w http.ResponseWriter, r *http.Request) {
	b, err := h.leads.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, viewOf(*b))
}

// UpdateLead edits the workflow status and/or sales notes.
//
//	PATCH /api/leads/{requestID}
func (h *Handlers) UpdateLead(w http.ResponseWriter, r *http.Request) {
	var req updateLeadRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, validationMessage(err))
		return
	}

	var u leads.Update
	if req.ActionStatus != nil {
		s := domain.ActionStatus(*req.ActionStatus)
		u.ActionStatus = &s
	}
	u.SalesNotes = req.SalesNotes

	b, err := h.leads.Update(r.Context(), chi.URLParam(r, "requestID"), u)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, viewOf(*b))
}

// AskLeads answers a keyword analytics question.
//
//	GET /api/leads/ask?q=how+many+hot+leads+today&location=
func (h *Handlers) AskLeads(w http.ResponseWriter, r *http.Request) {
	res, err := h.leads.Ask(r.Context(), r.URL.Query().Get("q"), strings.TrimSpace(r.URL.Query().Get("location")))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.OK(w, res)
}

// ListLocations returns the distinct booking locations.
//
//	GET /api/locations
func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.leads.Locations(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if locs == nil {
		locs = []string{}
	}
	httputil.OK(w, map[string]interface{}{"locations": locs})
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
