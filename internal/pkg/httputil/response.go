package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies accepted by Decode.
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON envelope of every dashboard API error.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON encodes data with the given status. Headers are gone by the time
// encoding can fail, so a failure is only logged.
func JSON(w http.ResponseWriter, status int, data any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("httputil: encode response", "status", status, "error", err)
	}
}

// OK is JSON with 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Text writes message as text/plain. The tracking endpoint answers this way.
func Text(w http.ResponseWriter, status int, message string) {
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// Error writes message inside an ErrorBody. Callers own the wording, so
// nothing internal should reach message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// BadRequest is Error with 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Decode strictly decodes the JSON body into dst, answering 400 and
// returning false when the body is malformed or carries unknown fields.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
