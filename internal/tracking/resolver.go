package tracking

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

// ErrInvalidRedirect is returned for redirect targets that fail to decode
// or are not allowed.
var ErrInvalidRedirect = errors.New("invalid redirect target")

// ResponseKind is the HTTP answer chosen for a tracking request.
type ResponseKind int

const (
	NoContent ResponseKind = iota
	Redirect
	BadRequest
)

// Response is the resolved answer. Location is set for Redirect, Err for
// BadRequest.
type Response struct {
	Kind     ResponseKind
	Location string
	Err      error
}

// Resolver turns a classified event and its redirect_to value into a
// response.
type Resolver struct {
	allowed map[string]bool
}

// NewResolver creates a Resolver. An empty allowlist accepts any host.
func NewResolver(allowlist []string) *Resolver {
	r := &Resolver{}
	if len(allowlist) > 0 {
		r.allowed = make(map[string]bool, len(allowlist))
		for _, h := range allowlist {
			r.allowed[strings.ToLower(strings.TrimSpace(h))] = true
		}
	}
	return r
}

// Resolve redirects click events that carry a target and answers 204 for
// everything else. redirectTo is the already-decoded query value and is
// not unescaped again, so escapes inside the target (%25, %2B) survive.
func (r *Resolver) Resolve(rule scoring.Rule, redirectTo string) Response {
	if !rule.Click || redirectTo == "" {
		return Response{Kind: NoContent}
	}
	target, err := r.validate(redirectTo)
	if err != nil {
		return Response{Kind: BadRequest, Err: err}
	}
	return Response{Kind: Redirect, Location: target}
}

func (r *Resolver) validate(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRedirect, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidRedirect, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidRedirect)
	}
	if r.allowed != nil && !r.allowed[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("%w: host %q not allowed", ErrInvalidRedirect, u.Hostname())
	}
	return raw, nil
}
