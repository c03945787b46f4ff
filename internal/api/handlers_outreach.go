package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aoe-motors/lead-tracker/internal/advisor"
	"github.com/aoe-motors/lead-tracker/internal/mailing"
	"github.com/aoe-motors/lead-tracker/internal/pkg/httputil"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

// adviceResponse is returned by POST /api/leads/{requestID}/advice.
type adviceResponse struct {
	RequestID     string `json:"request_id"`
	Suggestions   string `json:"suggestions"`
	TalkingPoints string `json:"talking_points"`

	// NotesSentiment classifies the salesperson's notes on the lead.
	NotesSentiment advisor.Sentiment `json:"notes_sentiment"`
}

// sendEmailRequest is the optional POST /api/leads/{requestID}/email body.
// Kind defaults to the email matching the lead's action status.
type sendEmailRequest struct {
	Kind    string `json:"kind" validate:"omitempty,oneof=follow_up welcome lost"`
	Preview bool   `json:"preview"`
}

type sendEmailResponse struct {
	Sent      bool             `json:"sent"`
	MessageID string           `json:"message_id,omitempty"`
	Message   *mailing.Message `json:"message"`
}

// LeadAdvice asks the LLM for offer suggestions and call talking points.
//
//	POST /api/leads/{requestID}/advice
func (h *Handlers) LeadAdvice(w http.ResponseWriter, r *http.Request) {
	if h.advisor == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "AI advisor is not configured")
		return
	}
	id := chi.URLParam(r, "requestID")
	b, err := h.leads.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	lc := advisor.ContextForBooking(*b)
	suggestions, err := h.advisor.Suggestions(r.Context(), lc)
	if err != nil {
		respondSafeError(w, http.StatusBadGateway, err)
		return
	}
	points, err := h.advisor.TalkingPoints(r.Context(), lc)
	if err != nil {
		respondSafeError(w, http.StatusBadGateway, err)
		return
	}
	sentiment, err := h.advisor.Sentiment(r.Context(), b.SalesNotes)
	if err != nil {
		logger.Warn("notes sentiment unavailable", "request_id", id, "error", err)
	}
	httputil.OK(w, adviceResponse{
		RequestID:      id,
		Suggestions:    suggestions,
		TalkingPoints:  points,
		NotesSentiment: sentiment,
	})
}

// SendLeadEmail renders and sends (or previews) a customer email.
//
//	POST /api/leads/{requestID}/email
func (h *Handlers) SendLeadEmail(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		respondServiceError(w, mailing.ErrSendingDisabled)
		return
	}

	var req sendEmailRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, validationMessage(err))
		return
	}

	b, err := h.leads.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	kind := mailing.Kind(req.Kind)
	if kind == "" {
		var ok bool
		if kind, ok = mailing.KindForStatus(b.ActionStatus); !ok {
			httputil.BadRequest(w, "no email for action status "+string(b.ActionStatus))
			return
		}
	}

	if req.Preview {
		msg, err := h.mailer.Preview(*b, kind)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		httputil.OK(w, sendEmailResponse{Message: msg})
		return
	}

	msg, id, err := h.mailer.Send(r.Context(), *b, kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	logger.Info("lead email sent", "request_id", b.RequestID, "kind", string(kind))
	httputil.OK(w, sendEmailResponse{Sent: true, MessageID: id, Message: msg})
}

// decodeOptional is httputil.Decode that treats an empty body as no input.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httputil.BadRequest(w, "invalid request body")
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
