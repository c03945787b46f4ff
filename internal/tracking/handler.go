package tracking

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aoe-motors/lead-tracker/internal/pkg/httputil"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/pkg/metrics"
	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

const (
	msgMissingParams = "Missing request_id or event_type"
	msgBadRedirect   = "Invalid redirect_to"
	msgInternal      = "Internal server error"
)

// Handler serves the tracking endpoint.
type Handler struct {
	ingest   Ingester
	resolver *Resolver
	metrics  *metrics.Recorder
	now      func() time.Time
}

// NewHandler creates a Handler. m may be nil.
func NewHandler(ingest Ingester, resolver *Resolver, m *metrics.Recorder) *Handler {
	return &Handler{ingest: ingest, resolver: resolver, metrics: m, now: time.Now}
}

// Routes mounts /track, /health and /metrics with request logging and panic recovery.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(h.recoverText)

	r.Get("/track", h.HandleTrack)
	r.Head("/track", h.HandleTrack)
	r.Get("/health", h.HandleHealth)
	r.Handle("/metrics", h.metrics.Handler())
	return r
}

// HandleTrack records an email interaction and answers with a redirect for
// click links carrying redirect_to, 204 otherwise.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requestID := strings.TrimSpace(q.Get("request_id"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	if requestID == "" || eventType == "" {
		h.text(w, http.StatusBadRequest, msgMissingParams)
		return
	}

	h.ingest.Ingest(r.Context(), Event{
		RequestID:  requestID,
		EventType:  eventType,
		ReceivedAt: h.now().UTC(),
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})

	resp := h.resolver.Resolve(scoring.Classify(eventType), q.Get("redirect_to"))
	switch resp.Kind {
	case Redirect:
		h.metrics.TrackResponse(strconv.Itoa(http.StatusFound))
		http.Redirect(w, r, resp.Location, http.StatusFound)
	case BadRequest:
		logger.Warn("rejected redirect target", "request_id", requestID, "error", resp.Err)
		h.text(w, http.StatusBadRequest, msgBadRedirect)
	default:
		h.metrics.TrackResponse(strconv.Itoa(http.StatusNoContent))
		httputil.NoContent(w)
	}
}

// HandleHealth is a liveness probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

func (h *Handler) text(w http.ResponseWriter, status int, msg string) {
	h.metrics.TrackResponse(strconv.Itoa(status))
	httputil.Text(w, status, msg)
}

// recoverText turns panics into a plain-text 500 without a stack trace in
// the body.
func (h *Handler) recoverText(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic in tracking handler", "path", r.URL.Path, "panic", rec, "request_id", middleware.GetReqID(r.Context()))
				h.text(w, http.StatusInternalServerError, msgInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
