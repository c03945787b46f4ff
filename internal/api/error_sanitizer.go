package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aoe-motors/lead-tracker/internal/mailing"
	"github.com/aoe-motors/lead-tracker/internal/pkg/httputil"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
	"github.com/aoe-motors/lead-tracker/internal/service/leads"
)

// respondSafeError answers with the public form of err. Server errors are
// logged in full and never echoed.
func respondSafeError(w http.ResponseWriter, code int, err error) {
	msg := safeErrorMessage(code, err)
	if code >= 500 && err != nil {
		logger.Error("api error", "status", code, "public", msg, "error", err)
	}
	httputil.Error(w, code, msg)
}

// respondServiceError maps service-layer sentinels to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leads.ErrNotFound):
		respondSafeError(w, http.StatusNotFound, err)
	case errors.Is(err, leads.ErrStatusNotAllowed),
		errors.Is(err, leads.ErrEmptyUpdate),
		errors.Is(err, leads.ErrEmptyQuestion),
		errors.Is(err, mailing.ErrNoTemplate):
		respondSafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, mailing.ErrSendingDisabled):
		respondSafeError(w, http.StatusServiceUnavailable, err)
	default:
		respondSafeError(w, http.StatusInternalServerError, err)
	}
}

// publicMessages maps substrings of lowercased internal errors to the text
// a 5xx response may show. The first match wins.
var publicMessages = []struct {
	needles []string
	message string
}{
	{[]string{"connection refused", "connection reset", "no such host", "dial tcp"}, "Service temporarily unavailable"},
	{[]string{"timeout", "deadline exceeded", "context canceled"}, "Request timed out"},
	{[]string{"sql", "pq:", "query", "scan", "bookings"}, "A database error occurred"},
	{[]string{"bedrock", "invoke model", "model returned"}, "AI service unavailable"},
	{[]string{"ses send"}, "Email delivery failed"},
}

// safeErrorMessage returns the client-facing text for err. 4xx errors are
// caused by the request and are shown as is.
func safeErrorMessage(code int, err error) string {
	switch {
	case err == nil && code < 500:
		return "Bad request"
	case err == nil:
		return "An internal error occurred"
	case code < 500:
		return err.Error()
	case errors.Is(err, mailing.ErrSendingDisabled):
		return "Email sending is disabled"
	}

	lower := strings.ToLower(err.Error())
	for _, pm := range publicMessages {
		for _, n := range pm.needles {
			if strings.Contains(lower, n) {
				return pm.message
			}
		}
	}
	return "An internal error occurred"
}
