// Package httputil provides shared HTTP response/request utilities for handlers.
//
// The tracking endpoint answers in plain text (mail clients and browsers are
// the callers), the dashboard API in JSON. Both go through these helpers so
// status codes, content types and error logging stay consistent.
package httputil
